package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetwise/internal/bill"
	"github.com/MrJamesThe3rd/budgetwise/internal/engine"
)

type billsState int

const (
	billsStateBrowse billsState = iota
	billsStateAdd
	billsStateEdit
	billsStateDelete
)

var statusFilters = []*bill.Status{nil, new(bill.StatusOverdue), new(bill.StatusUpcoming), new(bill.StatusPaid)}

// billFields holds the add and edit form bindings. It lives on the heap so copies of
// the model share it with the running form.
type billFields struct {
	name       string
	amount     string
	category   string
	dueDate    string
	recurrence bill.Recurrence
	confirm    bool
}

func (f *billFields) draft() (bill.Draft, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(f.amount))
	if err != nil {
		return bill.Draft{}, fmt.Errorf("amount: %w", err)
	}

	due, err := time.Parse(time.DateOnly, strings.TrimSpace(f.dueDate))
	if err != nil {
		return bill.Draft{}, fmt.Errorf("due date: %w", err)
	}

	return bill.Draft{
		Name:       strings.TrimSpace(f.name),
		Amount:     amount,
		Category:   strings.TrimSpace(f.category),
		DueDate:    due,
		Recurrence: f.recurrence,
	}, nil
}

// patch returns only the fields that differ from b.
func (f *billFields) patch(b *bill.Bill) (bill.Patch, error) {
	d, err := f.draft()
	if err != nil {
		return bill.Patch{}, err
	}

	var p bill.Patch

	if d.Name != b.Name {
		p.Name = &d.Name
	}

	if !d.Amount.Equal(b.Amount) {
		p.Amount = &d.Amount
	}

	if d.Category != b.Category {
		p.Category = &d.Category
	}

	if !d.DueDate.Equal(b.DueDate) {
		p.DueDate = &d.DueDate
	}

	if d.Recurrence != b.Recurrence {
		p.Recurrence = &d.Recurrence
	}

	return p, nil
}

func fieldsOf(b *bill.Bill) billFields {
	return billFields{
		name:       b.Name,
		amount:     b.Amount.StringFixed(2),
		category:   b.Category,
		dueDate:    FormatDate(b.DueDate),
		recurrence: b.Recurrence,
	}
}

type BillsModel struct {
	CommonModel
	engine *engine.Engine

	state     billsState
	table     table.Model
	snapshot  engine.Snapshot
	visible   []*bill.Bill
	filterIdx int
	form      *huh.Form
	fields    *billFields
	editing   *bill.Bill

	status string
	err    error
}

func NewBillsModel(e *engine.Engine) BillsModel {
	columns := []table.Column{
		{Title: "Due", Width: 12},
		{Title: "Name", Width: 24},
		{Title: "Amount", Width: 10},
		{Title: "Category", Width: 14},
		{Title: "Repeats", Width: 10},
		{Title: "Status", Width: 10},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	t.SetStyles(tableStyles())

	m := BillsModel{
		engine: e,
		table:  t,
		fields: &billFields{},
	}
	m.setSnapshot(e.Snapshot())

	return m
}

func (m BillsModel) Title() string { return "Bills" }

func (m BillsModel) ShortHelp() string {
	switch m.state {
	case billsStateAdd, billsStateEdit, billsStateDelete:
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | a: add | e: edit | p: pay | x: delete | s: status filter | r: refresh"
}

func (m BillsModel) Init() tea.Cmd {
	return nil
}

func (m BillsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SnapshotMsg:
		m.setSnapshot(msg.Snapshot)
		return m, nil

	case opMsg:
		m.err = msg.err
		m.status = msg.status

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-12, 5))
		return m, nil
	}

	switch m.state {
	case billsStateAdd, billsStateEdit, billsStateDelete:
		return m.updateForm(msg)
	}

	return m.updateBrowse(msg)
}

func (m BillsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "a":
			return m.enterAdd()
		case "e":
			return m.enterEdit()
		case "p", "enter":
			return m, m.payCmd()
		case "x":
			return m.enterDelete()
		case "s":
			m.filterIdx = (m.filterIdx + 1) % len(statusFilters)
			m.setSnapshot(m.snapshot)

			return m, nil
		case "r":
			return m, m.refreshCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m BillsModel) enterAdd() (tea.Model, tea.Cmd) {
	*m.fields = billFields{
		dueDate:    FormatDate(time.Now()),
		recurrence: bill.RecurMonthly,
	}

	m.form = m.billForm()
	m.state = billsStateAdd
	m.table.Blur()

	return m, m.form.Init()
}

func (m BillsModel) enterEdit() (tea.Model, tea.Cmd) {
	b, ok := m.selected()
	if !ok {
		return m, nil
	}

	*m.fields = fieldsOf(b)
	m.editing = b
	m.form = m.billForm()
	m.state = billsStateEdit
	m.table.Blur()

	return m, m.form.Init()
}

func (m BillsModel) billForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&m.fields.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("name cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Title("Amount").
				Placeholder("0.00").
				Value(&m.fields.amount).
				Validate(validateAmount),

			huh.NewInput().
				Title("Category").
				Placeholder("Utilities").
				Value(&m.fields.category),

			huh.NewInput().
				Title("Due date").
				Placeholder("YYYY-MM-DD").
				Value(&m.fields.dueDate).
				Validate(validateDate),

			huh.NewSelect[bill.Recurrence]().
				Title("Repeats").
				Options(huh.NewOptions(bill.Recurrences...)...).
				Value(&m.fields.recurrence),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m BillsModel) enterDelete() (tea.Model, tea.Cmd) {
	b, ok := m.selected()
	if !ok {
		return m, nil
	}

	m.fields.confirm = false
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %q?", b.Name)).
				Affirmative("Delete").
				Negative("Cancel").
				Value(&m.fields.confirm),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = billsStateDelete
	m.table.Blur()

	return m, m.form.Init()
}

func (m BillsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m.closeForm(), nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateAborted:
		return m.closeForm(), nil
	case huh.StateCompleted:
	default:
		return m, cmd
	}

	state, editing := m.state, m.editing
	m = m.closeForm()

	switch state {
	case billsStateAdd:
		return m, m.addCmd()
	case billsStateEdit:
		return m, m.editCmd(editing)
	}

	if !m.fields.confirm {
		return m, nil
	}

	return m, m.deleteCmd()
}

func (m BillsModel) closeForm() BillsModel {
	m.state = billsStateBrowse
	m.form = nil
	m.editing = nil
	m.table.Focus()

	return m
}

func (m BillsModel) View() string {
	header := fmt.Sprintf(
		"Unpaid: %s | Overdue: %d | Upcoming: %d | [s] Status: %s",
		activeStyle(FormatAmount(m.snapshot.Total())),
		countStatus(m.snapshot.Bills, bill.StatusOverdue),
		countStatus(m.snapshot.Bills, bill.StatusUpcoming),
		activeStyle(filterLabel(statusFilters[m.filterIdx])),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
		recentView(m.engine.RecentPayments(engine.DefaultRecent)),
	)

	if m.form != nil {
		title := "New Bill"

		switch m.state {
		case billsStateEdit:
			title = "Edit Bill"
		case billsStateDelete:
			title = "Delete Bill"
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(title + "\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if line := statusLine(m.status, m.err); line != "" {
		content = line + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *BillsModel) setSnapshot(snap engine.Snapshot) {
	m.snapshot = snap

	filter := statusFilters[m.filterIdx]
	m.visible = make([]*bill.Bill, 0, len(snap.Bills))

	for _, b := range snap.Bills {
		if filter != nil && b.Status != *filter {
			continue
		}

		m.visible = append(m.visible, b)
	}

	rows := make([]table.Row, 0, len(m.visible))
	for _, b := range m.visible {
		rows = append(rows, table.Row{
			FormatDate(b.DueDate),
			b.Name,
			FormatAmount(b.Amount),
			b.Category,
			string(b.Recurrence),
			string(b.Status),
		})
	}

	m.table.SetRows(rows)

	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (m BillsModel) selected() (*bill.Bill, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.visible) {
		return nil, false
	}

	return m.visible[idx], true
}

func (m BillsModel) payCmd() tea.Cmd {
	b, ok := m.selected()
	if !ok {
		return nil
	}

	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		p, err := m.engine.MarkAsPaid(ctx, b.ID, nil)
		if err != nil && !errors.Is(err, engine.ErrStale) {
			return opMsg{err: fmt.Errorf("pay %s: %w", b.Name, err)}
		}

		status := fmt.Sprintf("Paid %s (%s, due %s)", p.BillName, FormatAmount(p.Amount), FormatDate(p.OriginalDueDate))
		if p.Late() {
			status += ", late"
		}

		return committed(status, err)
	}
}

func (m BillsModel) addCmd() tea.Cmd {
	fields := *m.fields

	return func() tea.Msg {
		d, err := fields.draft()
		if err != nil {
			return opMsg{err: err}
		}

		ctx, cancel := OpCtx()
		defer cancel()

		b, err := m.engine.AddBill(ctx, d)
		if err != nil && !errors.Is(err, engine.ErrStale) {
			return opMsg{err: fmt.Errorf("add bill: %w", err)}
		}

		return committed(fmt.Sprintf("Added %s, due %s", b.Name, FormatDate(b.DueDate)), err)
	}
}

func (m BillsModel) editCmd(orig *bill.Bill) tea.Cmd {
	if orig == nil {
		return nil
	}

	fields := *m.fields

	return func() tea.Msg {
		p, err := fields.patch(orig)
		if err != nil {
			return opMsg{err: err}
		}

		if p.Empty() {
			return opMsg{status: "No changes to " + orig.Name}
		}

		ctx, cancel := OpCtx()
		defer cancel()

		b, err := m.engine.UpdateBill(ctx, orig.ID, p)
		if err != nil && !errors.Is(err, engine.ErrStale) {
			return opMsg{err: fmt.Errorf("edit %s: %w", orig.Name, err)}
		}

		return committed(fmt.Sprintf("Updated %s, due %s", b.Name, FormatDate(b.DueDate)), err)
	}
}

func (m BillsModel) deleteCmd() tea.Cmd {
	b, ok := m.selected()
	if !ok {
		return nil
	}

	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		err := m.engine.DeleteBill(ctx, b.ID)
		if err != nil && !errors.Is(err, engine.ErrStale) {
			return opMsg{err: fmt.Errorf("delete %s: %w", b.Name, err)}
		}

		return committed("Deleted "+b.Name, err)
	}
}

func (m BillsModel) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		if err := m.engine.Refresh(ctx); err != nil {
			return opMsg{err: fmt.Errorf("refresh: %w", err)}
		}

		return opMsg{status: "Statuses refreshed"}
	}
}

func validateAmount(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return errors.New("amount must be a number")
	}

	if !d.IsPositive() {
		return errors.New("amount must be positive")
	}

	return nil
}

func validateDate(s string) error {
	if _, err := time.Parse(time.DateOnly, strings.TrimSpace(s)); err != nil {
		return errors.New("use YYYY-MM-DD")
	}

	return nil
}

func recentView(payments []*bill.Payment) string {
	if len(payments) == 0 {
		return ""
	}

	var sb strings.Builder

	sb.WriteString(lipgloss.NewStyle().Bold(true).Render("Recent payments"))

	for _, p := range payments {
		fmt.Fprintf(&sb, "\n  %s  %-24s %10s", FormatDate(p.PaidDate), p.BillName, FormatAmount(p.Amount))

		if p.Late() {
			sb.WriteString(" " + lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("late"))
		}
	}

	return lipgloss.NewStyle().PaddingTop(1).Render(sb.String())
}

func countStatus(bills []*bill.Bill, s bill.Status) int {
	n := 0

	for _, b := range bills {
		if b.Status == s {
			n++
		}
	}

	return n
}

func filterLabel(s *bill.Status) string {
	if s == nil {
		return "All"
	}

	return strings.ToUpper(string(*s)[:1]) + string(*s)[1:]
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func statusLine(status string, err error) string {
	if err != nil {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("Error: " + err.Error())
	}

	if status == "" {
		return ""
	}

	return lipgloss.NewStyle().Faint(true).Render(status)
}

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)

	return s
}
