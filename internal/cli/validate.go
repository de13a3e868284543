package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/janelia-anibody/mjcfutil/pkg/mjcf"
)

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	var warningsAsErrors bool

	cmd := &cobra.Command{
		Use:   "validate <model.xml>",
		Short: "Check a model for constructs MuJoCo would reject",
		Long: `Validate checks for duplicate names, dangling references, malformed
frame attributes, misplaced free joints, and worldbody attributes. The
command exits non-zero when any error-severity finding is reported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(args[0], warningsAsErrors)
		},
	}

	cmd.Flags().BoolVar(&warningsAsErrors, "strict", false, "treat warnings as errors")

	return cmd
}

func (c *CLI) runValidate(input string, strict bool) error {
	m, err := c.loadModel(input)
	if err != nil {
		return err
	}

	findings := mjcf.Validate(m)
	if len(findings) == 0 {
		printSuccess("%s is valid", input)
		return nil
	}

	nErrors, nWarnings := 0, 0
	for _, f := range findings {
		switch f.Severity {
		case mjcf.SeverityError:
			nErrors++
			printError("%s: %s", StyleValue.Render(f.Element), f.Message)
		default:
			nWarnings++
			printWarning("%s: %s", StyleValue.Render(f.Element), f.Message)
		}
	}
	printDetail("%d error(s), %d warning(s)", nErrors, nWarnings)

	if nErrors > 0 || (strict && nWarnings > 0) {
		return fmt.Errorf("validation failed for %s", input)
	}
	return nil
}
