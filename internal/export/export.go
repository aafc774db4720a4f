// Package export renders payment history for download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetwise/internal/bill"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatText Format = "txt"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV, "":
		return FormatCSV, nil
	case FormatText, "text":
		return FormatText, nil
	}

	return "", fmt.Errorf("unknown export format %q", s)
}

func (f Format) ContentType() string {
	if f == FormatText {
		return "text/plain; charset=utf-8"
	}

	return "text/csv; charset=utf-8"
}

// Filename is the attachment name for an export generated at now.
func (f Format) Filename(now time.Time) string {
	return fmt.Sprintf("payments_%s.%s", now.Format("20060102"), f)
}

// Write renders payments in the given format.
func Write(w io.Writer, f Format, payments []*bill.Payment) error {
	if f == FormatText {
		_, err := io.WriteString(w, Statement(payments))
		return err
	}

	return WriteCSV(w, payments)
}

var csvHeader = []string{"paid_date", "due_date", "name", "category", "amount", "late"}

func WriteCSV(w io.Writer, payments []*bill.Payment) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, p := range payments {
		record := []string{
			p.PaidDate.Format(time.DateOnly),
			p.OriginalDueDate.Format(time.DateOnly),
			p.BillName,
			p.Category,
			p.Amount.StringFixed(2),
			fmt.Sprint(p.Late()),
		}

		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing payment %s: %w", p.ID, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// Statement is a plain-text list of payments followed by a total line.
func Statement(payments []*bill.Payment) string {
	var sb strings.Builder

	total := decimal.Zero

	for _, p := range payments {
		note := "on time"
		if p.Late() {
			note = "late"
		}

		fmt.Fprintf(&sb, "* %s | %s | %s | %s\n",
			p.PaidDate.Format(time.DateOnly), p.BillName, p.Amount.StringFixed(2), note)

		total = total.Add(p.Amount)
	}

	fmt.Fprintf(&sb, "\n%d payments, total %s\n", len(payments), total.StringFixed(2))

	return sb.String()
}

// Between keeps payments whose paid date falls within [from, to]. Zero bounds are open.
func Between(payments []*bill.Payment, from, to time.Time) []*bill.Payment {
	out := make([]*bill.Payment, 0, len(payments))

	for _, p := range payments {
		d := bill.DateOf(p.PaidDate)

		if !from.IsZero() && d.Before(from) {
			continue
		}

		if !to.IsZero() && d.After(to) {
			continue
		}

		out = append(out, p)
	}

	return out
}
