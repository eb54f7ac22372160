package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"oakview/internal/api"
)

// browseAction is what a key press in the browser asks the root model to do.
type browseAction int

const (
	browseNone browseAction = iota
	browseDescend
	browseUp
	browseOpen
)

var (
	browseTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	browseFolderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	browseFileStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	browseCursorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("12"))
	browseDimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	browseErrStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// browseModel is the remote store browser: folders descend, a .mcap file
// opens its containing prefix as the recording.
type browseModel struct {
	prefix  string
	stack   []string
	listing *api.Listing
	cursor  int
	loading bool
	errText string

	width, height int
}

func newBrowseModel() browseModel {
	return browseModel{loading: true}
}

func (b *browseModel) layout(w, h int) {
	b.width, b.height = w, h
}

func (b *browseModel) setListing(prefix string, l *api.Listing, err error) {
	b.loading = false
	if err != nil {
		b.errText = err.Error()
		return
	}
	b.errText = ""
	b.prefix = prefix
	b.listing = l
	b.cursor = 0
}

func (b *browseModel) itemCount() int {
	if b.listing == nil {
		return 0
	}
	return len(b.listing.Folders) + len(b.listing.Files)
}

func (b *browseModel) moveUp() {
	if b.cursor > 0 {
		b.cursor--
	}
}

func (b *browseModel) moveDown() {
	if b.cursor < b.itemCount()-1 {
		b.cursor++
	}
}

// enter resolves the cursor into an action: descend into a folder, or open
// the current prefix as a recording when a .mcap file is selected.
func (b *browseModel) enter() (browseAction, string) {
	if b.listing == nil || b.itemCount() == 0 {
		return browseNone, ""
	}
	if b.cursor < len(b.listing.Folders) {
		return browseDescend, b.listing.Folders[b.cursor].Prefix
	}
	f := b.listing.Files[b.cursor-len(b.listing.Folders)]
	if strings.HasSuffix(f.Name, ".mcap") {
		return browseOpen, strings.TrimSuffix(b.prefix, "/")
	}
	return browseNone, ""
}

// push records the current prefix before descending so Back can return.
func (b *browseModel) push() {
	b.stack = append(b.stack, b.prefix)
	b.loading = true
}

// pop returns the parent prefix, if any.
func (b *browseModel) pop() (string, bool) {
	if len(b.stack) == 0 {
		return "", false
	}
	parent := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	b.loading = true
	return parent, true
}

func (b *browseModel) view() string {
	var lines []string

	title := b.prefix
	if title == "" {
		title = "/"
	}
	lines = append(lines, browseTitleStyle.Render("oakview · "+title), "")

	switch {
	case b.loading:
		lines = append(lines, browseDimStyle.Render("loading…"))
	case b.errText != "":
		lines = append(lines, browseErrStyle.Render("browse failed: "+b.errText))
	case b.itemCount() == 0:
		lines = append(lines, browseDimStyle.Render("empty folder"))
	default:
		lines = append(lines, b.itemLines()...)
	}

	lines = append(lines, "", browseDimStyle.Render("↑/↓ move · enter open · backspace parent · q quit"))
	return strings.Join(lines, "\n")
}

func (b *browseModel) itemLines() []string {
	// Keep the cursor visible when the listing is taller than the window.
	visible := b.height - 5
	if visible < 1 {
		visible = 1
	}
	first := 0
	if b.cursor >= visible {
		first = b.cursor - visible + 1
	}

	var lines []string
	for i := first; i < b.itemCount() && i < first+visible; i++ {
		var label string
		var style lipgloss.Style
		if i < len(b.listing.Folders) {
			label = b.listing.Folders[i].Name + "/"
			style = browseFolderStyle
		} else {
			f := b.listing.Files[i-len(b.listing.Folders)]
			label = fmt.Sprintf("%s  %s", f.Name, humanSize(f.Size))
			style = browseFileStyle
			if strings.HasSuffix(f.Name, ".mcap") {
				label += "  (enter to open recording)"
			}
		}
		if i == b.cursor {
			lines = append(lines, browseCursorStyle.Render("> "+label))
		} else {
			lines = append(lines, style.Render("  "+label))
		}
	}
	return lines
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(n)/(1<<30))
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
