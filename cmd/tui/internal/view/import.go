package view

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/budgetwise/internal/bill"
	"github.com/MrJamesThe3rd/budgetwise/internal/engine"
	"github.com/MrJamesThe3rd/budgetwise/internal/importer"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateFilePick importState = iota
	importStateReview
	importStateImporting
	importStateResult
)

type ImportModel struct {
	CommonModel
	engine   *engine.Engine
	importer importer.Importer

	state      importState
	filePicker filepicker.Model

	drafts    []bill.Draft
	draftList list.Model
	selected  map[int]bool

	status string
	err    error
}

func NewImportModel(e *engine.Engine, imp importer.Importer) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		engine:     e,
		importer:   imp,
		filePicker: fp,
		selected:   make(map[int]bool),
	}
}

func (m ImportModel) Title() string { return "Import Bills" }

func (m ImportModel) ShortHelp() string {
	if m.state == importStateReview {
		return "Space: toggle | a: all | n: none | Enter: import | Esc: cancel"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == importStateReview {
			return m.updateReview(msg)
		}

	case parseResultMsg:
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		if len(msg.drafts) == 0 {
			m.state = importStateResult
			m.status = "No bills found in file."

			return m, nil
		}

		m.drafts = msg.drafts
		m.selected = make(map[int]bool, len(msg.drafts))
		m.state = importStateReview

		items := make([]list.Item, len(m.drafts))
		for i, d := range m.drafts {
			items[i] = draftItem{draft: d, index: i}
			m.selected[i] = true
		}

		delegate := draftDelegate{selected: &m.selected}
		m.draftList = list.New(items, delegate, 80, 20)
		m.draftList.Title = "Bills to import"
		m.draftList.SetShowStatusBar(false)
		m.draftList.SetFilteringEnabled(false)
		m.draftList.SetShowHelp(false)

		return m, nil

	case importResultMsg:
		m.state = importStateResult
		m.err = msg.err

		if msg.err != nil {
			m.status = fmt.Sprintf("Imported %d bills before failing: %v", msg.count, msg.err)
			return m, nil
		}

		m.status = fmt.Sprintf("Imported %d bills.", msg.count)

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Reading %s...", path)

		return m, m.parseCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateReview, importStateResult:
		m.state = importStateFilePick
		m.drafts = nil
		m.selected = make(map[int]bool)
		m.err = nil
		m.status = ""

		return m, nil
	}

	return m, Back
}

func (m ImportModel) updateReview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case " ":
		idx := m.draftList.Index()
		m.selected[idx] = !m.selected[idx]

		return m, nil
	case "a":
		for i := range m.drafts {
			m.selected[i] = true
		}

		return m, nil
	case "n":
		for i := range m.drafts {
			m.selected[i] = false
		}

		return m, nil
	case "enter":
		m.state = importStateImporting
		m.status = "Importing..."

		return m, m.importCmd()
	}

	var cmd tea.Cmd
	m.draftList, cmd = m.draftList.Update(msg)

	return m, cmd
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			"Select a CSV file with bills:\n\n" + m.filePicker.View(),
		)
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateReview:
		return lipgloss.NewStyle().Padding(1).Render(m.draftList.View())
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewResult() string {
	color := lipgloss.Color("46")
	if m.err != nil {
		color = lipgloss.Color("196")
	}

	return lipgloss.NewStyle().Padding(2).Render(
		lipgloss.NewStyle().Foreground(color).Render(m.status) + "\n\n(Esc to go back)",
	)
}

// Messages

type parseResultMsg struct {
	drafts []bill.Draft
	err    error
}

type importResultMsg struct {
	count int
	err   error
}

func (m ImportModel) parseCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return parseResultMsg{err: err}
		}
		defer f.Close()

		drafts, err := m.importer.Parse(f)
		if err != nil {
			return parseResultMsg{err: err}
		}

		return parseResultMsg{drafts: drafts}
	}
}

func (m ImportModel) importCmd() tea.Cmd {
	var drafts []bill.Draft

	for i, d := range m.drafts {
		if m.selected[i] {
			drafts = append(drafts, d)
		}
	}

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		for i, d := range drafts {
			if _, err := m.engine.AddBill(ctx, d); err != nil && !errors.Is(err, engine.ErrStale) {
				return importResultMsg{count: i, err: fmt.Errorf("%s: %w", d.Name, err)}
			}
		}

		return importResultMsg{count: len(drafts)}
	}
}

// Draft list item

type draftItem struct {
	draft bill.Draft
	index int
}

func (i draftItem) Title() string       { return i.draft.Name }
func (i draftItem) Description() string { return "" }
func (i draftItem) FilterValue() string { return i.draft.Name }

// Draft list delegate

type draftDelegate struct {
	selected *map[int]bool
}

func (d draftDelegate) Height() int                             { return 1 }
func (d draftDelegate) Spacing() int                            { return 0 }
func (d draftDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d draftDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(draftItem)
	if !ok {
		return
	}

	checkbox := "[ ]"
	if (*d.selected)[item.index] {
		checkbox = "[x]"
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	fmt.Fprintf(w, "%s%s %s  %10s  %-24s %-14s %s",
		cursor, checkbox,
		FormatDate(item.draft.DueDate),
		FormatAmount(item.draft.Amount),
		item.draft.Name,
		item.draft.Category,
		item.draft.Recurrence,
	)
}
