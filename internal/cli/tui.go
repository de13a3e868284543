package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/janelia-anibody/mjcfutil/pkg/ktree"
)

// browseTree runs the interactive kinematic tree browser.
func (c *CLI) browseTree(title string, tr *ktree.Tree) error {
	model := newTreeBrowser(title, tr)
	p := tea.NewProgram(model)
	_, err := p.Run()
	return err
}

// treeItem is one flattened row of the browser: a node with the
// box-drawing prefix it renders under.
type treeItem struct {
	node   *ktree.Node
	prefix string
}

// treeBrowser is the bubbletea model for interactive tree navigation.
type treeBrowser struct {
	title  string
	tree   *ktree.Tree
	items  []treeItem
	cursor int
	height int
}

var (
	browserTitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Padding(0, 1)
	browserSelectedStyle = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	browserNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	browserTreeStyle     = lipgloss.NewStyle().Foreground(colorDim)
	browserMetaStyle     = lipgloss.NewStyle().Foreground(colorGray).PaddingLeft(2)
	browserHelpStyle     = lipgloss.NewStyle().Foreground(colorDim).PaddingTop(1)
)

func newTreeBrowser(title string, tr *ktree.Tree) *treeBrowser {
	b := &treeBrowser{title: title, tree: tr, height: 24}
	b.flatten()
	return b
}

// flatten walks the tree in document order collecting rows with their
// box-drawing prefixes, mirroring the static text rendering.
func (b *treeBrowser) flatten() {
	var walk func(n *ktree.Node, prefix string, last bool)
	walk = func(n *ktree.Node, prefix string, last bool) {
		connector := "├─── "
		indent := "│    "
		if last {
			connector = "└─── "
			indent = "     "
		}
		b.items = append(b.items, treeItem{node: n, prefix: prefix + connector})
		kids := b.tree.Children(n.ID)
		for i, id := range kids {
			child, ok := b.tree.Node(id)
			if !ok {
				continue
			}
			walk(child, prefix+indent, i == len(kids)-1)
		}
	}
	roots := b.tree.Roots()
	for i, r := range roots {
		walk(r, "", i == len(roots)-1)
	}
}

func (b *treeBrowser) Init() tea.Cmd {
	return nil
}

func (b *treeBrowser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return b, tea.Quit
		case "up", "k":
			if b.cursor > 0 {
				b.cursor--
			}
		case "down", "j":
			if b.cursor < len(b.items)-1 {
				b.cursor++
			}
		case "home", "g":
			b.cursor = 0
		case "end", "G":
			b.cursor = len(b.items) - 1
		}
	}
	return b, nil
}

func (b *treeBrowser) View() string {
	var sb strings.Builder
	sb.WriteString(browserTitleStyle.Render(b.title))
	sb.WriteString("\n\n")

	// Keep the cursor inside the visible window.
	visible := b.height - 8
	if visible < 5 {
		visible = 5
	}
	start := 0
	if b.cursor >= visible {
		start = b.cursor - visible + 1
	}
	end := start + visible
	if end > len(b.items) {
		end = len(b.items)
	}

	for i := start; i < end; i++ {
		item := b.items[i]
		label := fmt.Sprintf("%s: %s", item.node.Tag, item.node.ID)
		line := browserTreeStyle.Render(item.prefix)
		if i == b.cursor {
			line += browserSelectedStyle.Render(label)
		} else {
			line += browserNormalStyle.Render(label)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	if b.cursor < len(b.items) {
		sb.WriteString("\n")
		sb.WriteString(browserMetaStyle.Render(b.describe(b.items[b.cursor].node)))
		sb.WriteString("\n")
	}

	sb.WriteString(browserHelpStyle.Render("↑/k up · ↓/j down · g/G top/bottom · q quit"))
	return sb.String()
}

// describe summarizes the selected node for the detail line.
func (b *treeBrowser) describe(n *ktree.Node) string {
	parts := []string{fmt.Sprintf("depth %d", n.Depth)}
	if p, ok := b.tree.Parent(n.ID); ok {
		parts = append(parts, "parent "+p)
	}
	if kids := b.tree.Children(n.ID); len(kids) > 0 {
		parts = append(parts, fmt.Sprintf("%d children", len(kids)))
	}
	if meta := metaSummary(n.Meta); meta != "" {
		parts = append(parts, meta)
	}
	return strings.Join(parts, " · ")
}
