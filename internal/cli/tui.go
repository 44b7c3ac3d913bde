package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/photosheet/pkg/catalog"
	"github.com/matzehuels/photosheet/pkg/dims"
)

// List styles
var (
	listDimStyle  = lipgloss.NewStyle().Foreground(colorDim)
	tabStyle      = lipgloss.NewStyle().Foreground(colorGray).Padding(0, 1)
	tabActive     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Padding(0, 1).Underline(true)
	tableHeader   = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	tableBorder   = lipgloss.NewStyle().Foreground(colorDim)
	tableSelected = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
)

// Catalog browser tabs.
const (
	tabSizes = iota
	tabPapers
)

// =============================================================================
// CatalogModel - Interactive catalog browser
// =============================================================================

// CatalogModel is the bubbletea model for browsing photo and paper standards.
// Enter on a photo standard selects it and quits.
type CatalogModel struct {
	Sizes    []catalog.SizeStandard
	Papers   []catalog.PaperStandard
	DPI      int
	Tab      int
	Cursor   int
	Offset   int
	Height   int
	Selected *catalog.SizeStandard
}

// NewCatalogModel creates a browser over cat with pixel sizes at dpi.
func NewCatalogModel(cat *catalog.Catalog, dpi int) CatalogModel {
	return CatalogModel{
		Sizes:  cat.Sizes(),
		Papers: cat.Papers(),
		DPI:    dpi,
		Height: 15,
	}
}

func (m CatalogModel) rowCount() int {
	if m.Tab == tabPapers {
		return len(m.Papers)
	}
	return len(m.Sizes)
}

func (m CatalogModel) Init() tea.Cmd {
	return nil
}

func (m CatalogModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "left", "right", "h", "l":
			m.Tab = (m.Tab + 1) % 2
			m.Cursor, m.Offset = 0, 0
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < m.rowCount()-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "+":
			m.DPI = min(m.DPI*2, 1200)
		case "-":
			m.DPI = max(m.DPI/2, 72)
		case "enter":
			if m.Tab == tabSizes && len(m.Sizes) > 0 {
				s := m.Sizes[m.Cursor]
				m.Selected = &s
				return m, tea.Quit
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m CatalogModel) View() string {
	var b strings.Builder

	sizes, papers := tabStyle, tabStyle
	if m.Tab == tabSizes {
		sizes = tabActive
	} else {
		papers = tabActive
	}
	b.WriteString(sizes.Render("Photo sizes") + papers.Render("Papers"))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  @ %d dpi", m.DPI)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  tab switch  +/- dpi  ⏎ select  q quit"))
	b.WriteString("\n\n")

	var headers []string
	var rows [][]string
	if m.Tab == tabSizes {
		headers, rows = sizeRows(m.Sizes, m.DPI)
	} else {
		headers, rows = paperRows(m.Papers, m.DPI)
	}
	end := min(m.Offset+m.Height, len(rows))
	visible := rows[m.Offset:end]

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorder).
		Headers(headers...).
		Rows(visible...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return tableHeader
			}
			if m.Offset+row == m.Cursor {
				return tableSelected
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, m.rowCount())))

	return b.String()
}

// =============================================================================
// Table Rows
// =============================================================================

func sizeRows(sizes []catalog.SizeStandard, dpi int) ([]string, [][]string) {
	rows := make([][]string, len(sizes))
	for i, s := range sizes {
		head := "—"
		if r, ok := dims.Head(s, dpi); ok {
			head = fmt.Sprintf("%d-%d px", r.Min, r.Max)
		}
		rows[i] = []string{
			s.Code,
			s.Name,
			fmt.Sprintf("%g × %g", s.WidthMM, s.HeightMM),
			fmt.Sprintf("%d × %d", dims.MMToPx(s.WidthMM, dpi), dims.MMToPx(s.HeightMM, dpi)),
			head,
		}
	}
	return []string{"Code", "Name", "mm", "px", "Head"}, rows
}

func paperRows(papers []catalog.PaperStandard, dpi int) ([]string, [][]string) {
	rows := make([][]string, len(papers))
	for i, p := range papers {
		rows[i] = []string{
			p.Code,
			p.Name,
			fmt.Sprintf("%g × %g", p.WidthMM, p.HeightMM),
			fmt.Sprintf("%d × %d", dims.MMToPx(p.WidthMM, dpi), dims.MMToPx(p.HeightMM, dpi)),
		}
	}
	return []string{"Code", "Name", "mm", "px"}, rows
}

// renderTable renders rows as a static table for non-interactive output.
func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorder).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return tableHeader
			}
			return lipgloss.NewStyle()
		}).
		Render()
}
