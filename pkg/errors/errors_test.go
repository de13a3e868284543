package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := New(ErrCodeInvalidModel, "duplicate body name: %s", "torso")
	want := "INVALID_MODEL: duplicate body name: torso"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("unexpected EOF")
	err := Wrap(ErrCodeInvalidXML, cause, "parse model.xml")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should match cause via errors.Is")
	}
	want := "INVALID_XML: parse model.xml: unexpected EOF"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIsMatchesCode(t *testing.T) {
	err := New(ErrCodeBodyNotFound, "no body %q", "thorax")

	if !Is(err, ErrCodeBodyNotFound) {
		t.Error("Is should match the error's code")
	}
	if Is(err, ErrCodeJointNotFound) {
		t.Error("Is should not match a different code")
	}

	// Match through wrapping layers
	wrapped := fmt.Errorf("inspect: %w", err)
	if !Is(wrapped, ErrCodeBodyNotFound) {
		t.Error("Is should unwrap to find the code")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeAttachConflict, "x")); got != ErrCodeAttachConflict {
		t.Errorf("GetCode = %q", got)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode for plain error = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeInvalidFrame, "quat must have 4 components")
	if got := UserMessage(err); got != "quat must have 4 components" {
		t.Errorf("UserMessage = %q", got)
	}
	plain := stderrors.New("boom")
	if got := UserMessage(plain); got != "boom" {
		t.Errorf("UserMessage for plain error = %q", got)
	}
}

func TestValidateElementName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "torso", false},
		{"with_digits", "finger_3", false},
		{"with_dash", "left-knee", false},
		{"empty", "", true},
		{"whitespace", "upper arm", true},
		{"slash", "arm/hand", true},
		{"control", "bad\x00name", true},
		{"too_long", string(make([]byte, 300)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateElementName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateElementName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateModelPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "models/arm.xml", false},
		{"absolute", "/opt/models/arm.xml", false},
		{"empty", "", true},
		{"traversal", "../secrets.xml", true},
		{"backslash", "models\\arm.xml", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateModelPath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateModelPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
