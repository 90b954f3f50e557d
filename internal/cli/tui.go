package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/kinreport/pkg/kin"
	"github.com/matzehuels/kinreport/pkg/pipeline"
)

// List styles
var (
	tabActiveStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Underline(true)
	tabInactiveStyle = lipgloss.NewStyle().Foreground(colorGray)
	listDimStyle     = lipgloss.NewStyle().Foreground(colorDim)
	cursorStyle      = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
)

var personHeaders = []string{"Nombre", "Relación", "Sexo", "Edad", "DNI"}

// =============================================================================
// InspectModel - interactive browser over tree layers
// =============================================================================

// inspectTab is one page of the browser: a tree layer, or the relatives the
// tree leaves out.
type inspectTab struct {
	title  string
	color  string
	people []kin.Person
}

// InspectModel is the bubbletea model behind `kinreport inspect`.
type InspectModel struct {
	Inspection pipeline.Inspection
	Now        time.Time
	Tab        int
	Cursor     int
	Offset     int
	Height     int

	tabs []inspectTab
}

// NewInspectModel builds one tab per layer plus an "unclassified" tab when
// relatives were dropped.
func NewInspectModel(in pipeline.Inspection, now time.Time) InspectModel {
	m := InspectModel{Inspection: in, Now: now, Height: 12}
	for _, l := range in.Layers {
		m.tabs = append(m.tabs, inspectTab{title: l.Name(), color: l.Category.Color(), people: l.People})
	}
	if len(in.Dropped) > 0 {
		m.tabs = append(m.tabs, inspectTab{title: "Sin clasificar", color: "#6C757D", people: in.Dropped})
	}
	return m
}

func (m InspectModel) Init() tea.Cmd {
	return nil
}

func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "right", "l", "tab":
			if len(m.tabs) > 0 {
				m.Tab = (m.Tab + 1) % len(m.tabs)
				m.Cursor, m.Offset = 0, 0
			}
		case "left", "h", "shift+tab":
			if len(m.tabs) > 0 {
				m.Tab = (m.Tab + len(m.tabs) - 1) % len(m.tabs)
				m.Cursor, m.Offset = 0, 0
			}
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.current())-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 12
		if m.Height < 3 {
			m.Height = 3
		}
	}
	return m, nil
}

func (m InspectModel) current() []kin.Person {
	if m.Tab < 0 || m.Tab >= len(m.tabs) {
		return nil
	}
	return m.tabs[m.Tab].people
}

func (m InspectModel) View() string {
	var b strings.Builder
	in := m.Inspection

	b.WriteString(StyleTitle.Render(in.Lookup.Principal.DisplayName()))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  DNI %s · %d relatives", kin.OrNA(in.Lookup.Principal.DNI), len(in.Lookup.Relatives))))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("←/→ layer  ↑/↓ scroll  q quit"))
	b.WriteString("\n\n")

	if len(m.tabs) == 0 {
		b.WriteString(listDimStyle.Render("no relatives"))
		return b.String()
	}

	tabs := make([]string, len(m.tabs))
	for i, t := range m.tabs {
		label := fmt.Sprintf("%s (%d)", t.title, len(t.people))
		if i == m.Tab {
			tabs[i] = tabActiveStyle.Foreground(lipgloss.Color(t.color)).Render(label)
		} else {
			tabs[i] = tabInactiveStyle.Render(label)
		}
	}
	b.WriteString(strings.Join(tabs, listDimStyle.Render(" │ ")))
	b.WriteString("\n")

	people := m.current()
	end := min(m.Offset+m.Height, len(people))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		rows = append(rows, personRow(people[i], m.Now))
	}
	t := newTable(personHeaders, rows, func(row int) lipgloss.Style {
		if m.Offset+row == m.Cursor {
			return cursorStyle
		}
		return lipgloss.NewStyle()
	})
	b.WriteString(t.Render())
	b.WriteString("\n")

	s := in.Stats
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  ♂ %d  ♀ %d  ? %d  · canvas %.0fpx",
		min(m.Cursor+1, len(people)), len(people), s.Male, s.Female, s.UnknownSex, in.Height)))
	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

// personRow formats a person for the inspect tables.
func personRow(p kin.Person, now time.Time) []string {
	age := kin.NA
	if a, ok := p.AgeAt(now); ok {
		age = strconv.Itoa(a)
	}
	sex := p.Sex.String()
	if sex == "" {
		sex = "-"
	}
	return []string{truncate(p.DisplayName(), 36), truncate(kin.OrNA(p.Relation), 20), sex, age, kin.OrNA(p.DNI)}
}
