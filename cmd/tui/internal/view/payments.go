package view

import (
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/budgetwise/internal/bill"
	"github.com/MrJamesThe3rd/budgetwise/internal/engine"
)

type PaymentsModel struct {
	CommonModel

	now       func() time.Time
	table     table.Model
	payments  []*bill.Payment
	visible   []*bill.Payment
	timeframe Timeframe
}

func NewPaymentsModel(snap engine.Snapshot) PaymentsModel {
	columns := []table.Column{
		{Title: "Paid", Width: 12},
		{Title: "Due", Width: 12},
		{Title: "Name", Width: 24},
		{Title: "Amount", Width: 10},
		{Title: "Category", Width: 14},
		{Title: "Late", Width: 6},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	t.SetStyles(tableStyles())

	m := PaymentsModel{
		now:   time.Now,
		table: t,
	}
	m.setPayments(snap.Payments)

	return m
}

func (m PaymentsModel) Title() string { return "Payment History" }

func (m PaymentsModel) ShortHelp() string {
	return "Esc: back | t: timeframe"
}

func (m PaymentsModel) Init() tea.Cmd {
	return nil
}

func (m PaymentsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SnapshotMsg:
		m.setPayments(msg.Payments)
		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-12, 5))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "t":
			m.timeframe = m.timeframe.Next()
			m.setPayments(m.payments)

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m PaymentsModel) View() string {
	sum := bill.SummarizePayments(m.visible)

	header := fmt.Sprintf(
		"[t] Timeframe: %s | Payments: %d | Total: %s | Average: %s | Late: %d",
		activeStyle(m.timeframe.String()),
		sum.Count,
		FormatAmount(sum.Total),
		FormatAmount(sum.Average),
		sum.Late,
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().PaddingBottom(1).Render(header),
			tableView,
		),
	)
}

// setPayments takes the oldest-first log and shows it most recent first.
func (m *PaymentsModel) setPayments(payments []*bill.Payment) {
	m.payments = payments

	m.visible = slices.Clone(m.timeframe.Filter(payments, m.now()))
	slices.Reverse(m.visible)

	rows := make([]table.Row, 0, len(m.visible))
	for _, p := range m.visible {
		late := ""
		if p.Late() {
			late = "yes"
		}

		rows = append(rows, table.Row{
			FormatDate(p.PaidDate),
			FormatDate(p.OriginalDueDate),
			p.BillName,
			FormatAmount(p.Amount),
			p.Category,
			late,
		})
	}

	m.table.SetRows(rows)
	m.table.SetCursor(0)
}
