package importer

import "strings"

// Profile describes the header vocabulary of one family of bill exports.
// Each field lists accepted header spellings, compared case-insensitively.
// Category and recurrence columns are optional.
type Profile struct {
	Name      string
	NameCols  []string
	AmountCol []string
	DueCols   []string
	Category  []string
	Recurring []string
}

// profiles is tried in order; the first whose required columns all appear in a row wins.
var profiles = []Profile{
	{
		Name:      "budgetwise",
		NameCols:  []string{"name", "bill", "bill name"},
		AmountCol: []string{"amount", "value"},
		DueCols:   []string{"due_date", "due date", "due"},
		Category:  []string{"category"},
		Recurring: []string{"recurring", "recurrence", "frequency"},
	},
	{
		Name:      "pt",
		NameCols:  []string{"nome", "descrição", "descricao"},
		AmountCol: []string{"montante", "valor"},
		DueCols:   []string{"data vencimento", "vencimento", "data limite"},
		Category:  []string{"categoria"},
		Recurring: []string{"recorrência", "recorrencia", "periodicidade"},
	},
}

func (p Profile) match(row []string) (colIndex, bool) {
	cols := colIndex{
		name:      find(row, p.NameCols),
		amount:    find(row, p.AmountCol),
		due:       find(row, p.DueCols),
		category:  find(row, p.Category),
		recurring: find(row, p.Recurring),
	}

	if cols.name < 0 || cols.amount < 0 || cols.due < 0 {
		return colIndex{}, false
	}

	return cols, true
}

func find(row []string, names []string) int {
	for i, cell := range row {
		cell = strings.ToLower(strings.TrimSpace(cell))
		for _, n := range names {
			if cell == n {
				return i
			}
		}
	}

	return -1
}
