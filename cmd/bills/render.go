package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/MrJamesThe3rd/budgetwise/internal/bill"
)

var (
	colorBorder = lipgloss.Color("240")
	colorAccent = lipgloss.Color("#3AA99F")
	colorRed    = lipgloss.Color("#D14D41")

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	lateStyle   = cellStyle.Foreground(colorRed)
)

func renderTable(w io.Writer, headers []string, rows [][]string, late func(row int) bool) {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case late != nil && late(row):
				return lateStyle
			}

			return cellStyle
		})

	fmt.Fprintln(w, t.Render())
}

func renderBills(w io.Writer, bills []*bill.Bill) {
	rows := make([][]string, 0, len(bills))
	for _, b := range bills {
		rows = append(rows, []string{
			b.ID.String()[:8],
			b.DueDate.Format("2006-01-02"),
			b.Name,
			b.Amount.StringFixed(2),
			b.Category,
			string(b.Recurrence),
			string(b.Status),
		})
	}

	renderTable(w,
		[]string{"ID", "Due", "Name", "Amount", "Category", "Repeats", "Status"},
		rows,
		func(row int) bool { return bills[row].Status == bill.StatusOverdue },
	)
}

func renderPayments(w io.Writer, payments []*bill.Payment) {
	rows := make([][]string, 0, len(payments))
	for _, p := range payments {
		late := ""
		if p.Late() {
			late = "yes"
		}

		rows = append(rows, []string{
			p.PaidDate.Format("2006-01-02"),
			p.OriginalDueDate.Format("2006-01-02"),
			p.BillName,
			p.Amount.StringFixed(2),
			p.Category,
			late,
		})
	}

	renderTable(w,
		[]string{"Paid", "Due", "Name", "Amount", "Category", "Late"},
		rows,
		func(row int) bool { return payments[row].Late() },
	)
}
