package importer_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/budgetwise/internal/bill"
	"github.com/MrJamesThe3rd/budgetwise/internal/importer"
)

func TestParser_Parse(t *testing.T) {
	type args struct {
		csvContent string
	}

	type testCase struct {
		name    string
		args    args
		wantLen int
		verify  func(t *testing.T, drafts []bill.Draft)
		wantErr string
	}

	tests := []testCase{
		{
			name: "CommaSeparatedExport",
			args: args{
				csvContent: `name,amount,category,due_date,recurring
Rent,1200.00,Housing,2025-07-01,monthly
Electricity,"1,150.50",Utilities,2025-06-28,monthly
Car Repair,300,,2025-06-20,one-time
`,
			},
			wantLen: 3,
			verify: func(t *testing.T, drafts []bill.Draft) {
				assert.Equal(t, "Rent", drafts[0].Name)
				assert.Equal(t, "1200", drafts[0].Amount.String())
				assert.Equal(t, "Housing", drafts[0].Category)
				assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), drafts[0].DueDate)
				assert.Equal(t, bill.RecurMonthly, drafts[0].Recurrence)

				assert.Equal(t, "1150.5", drafts[1].Amount.String())

				assert.Equal(t, bill.RecurOneTime, drafts[2].Recurrence)
				assert.Empty(t, drafts[2].Category)
			},
		},
		{
			name: "PortugueseSemicolonExport",
			args: args{
				csvContent: `Lista de contas;exportada 31-01-2026

Nome;Montante;Categoria;Data vencimento;Periodicidade
Renda;1.200,00 €;Casa;01-07-2025;mensal
Seguro;-250,75;Carro;15/03/2026;yearly
`,
			},
			wantErr: `unknown recurrence "mensal"`,
		},
		{
			name: "PortugueseWithoutRecurrence",
			args: args{
				csvContent: `Lista de contas;exportada 31-01-2026

Nome;Montante;Categoria;Data vencimento
Renda;1.200,00 €;Casa;01-07-2025
Seguro;250,75;Carro;15/03/2026
Condomínio;1.250;Casa;08-07-2025
`,
			},
			wantLen: 3,
			verify: func(t *testing.T, drafts []bill.Draft) {
				assert.Equal(t, "Renda", drafts[0].Name)
				assert.Equal(t, "1200", drafts[0].Amount.String())
				assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), drafts[0].DueDate)
				assert.Equal(t, bill.RecurMonthly, drafts[0].Recurrence)

				assert.Equal(t, "250.75", drafts[1].Amount.String())
				assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), drafts[1].DueDate)

				assert.Equal(t, "1250", drafts[2].Amount.String())
			},
		},
		{
			name: "DifferentColumnOrder",
			args: args{
				csvContent: `Due Date,Frequency,Bill,Value
2025-06-25,weekly,Cleaner,25
`,
			},
			wantLen: 1,
			verify: func(t *testing.T, drafts []bill.Draft) {
				assert.Equal(t, "Cleaner", drafts[0].Name)
				assert.Equal(t, bill.RecurWeekly, drafts[0].Recurrence)
			},
		},
		{
			name:    "EmptyFile",
			args:    args{csvContent: ""},
			wantLen: 0,
		},
		{
			name:    "HeaderOnly",
			args:    args{csvContent: "name,amount,due_date\n"},
			wantLen: 0,
		},
		{
			name:    "NoKnownHeader",
			args:    args{csvContent: "foo,bar\n1,2\n"},
			wantErr: "no bill columns found",
		},
		{
			name: "ThousandsSeparatorOnly",
			args: args{
				csvContent: `name,amount,due_date
Rent,"1,200",2025-07-01
Deposit,1.500,2025-07-02
Loan,"2,500,000",2025-07-03
Gym,"29,90",2025-07-04
`,
			},
			wantLen: 4,
			verify: func(t *testing.T, drafts []bill.Draft) {
				assert.Equal(t, "1200", drafts[0].Amount.String())
				assert.Equal(t, "1500", drafts[1].Amount.String())
				assert.Equal(t, "2500000", drafts[2].Amount.String())
				assert.Equal(t, "29.9", drafts[3].Amount.String())
			},
		},
		{
			name:    "NegativeAmount",
			args:    args{csvContent: "name,amount,due_date\nRent,10,2025-07-01\nRefund,-50,2025-07-02\n"},
			wantErr: "row 3: amount: negative value",
		},
		{
			name:    "BadDate",
			args:    args{csvContent: "name,amount,due_date\nRent,10,someday\n"},
			wantErr: "row 2: due date",
		},
		{
			name:    "MissingName",
			args:    args{csvContent: "name,amount,due_date\n,10,2025-07-01\n"},
			wantErr: "row 2: missing name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := importer.NewParser().Parse(strings.NewReader(tt.args.csvContent))

			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Len(t, got, tt.wantLen)

			if tt.verify != nil {
				tt.verify(t, got)
			}
		})
	}
}

func TestParser_Latin1(t *testing.T) {
	// Windows-1252: ç = 0xE7, ã = 0xE3
	input := []byte("Nome;Montante;Data vencimento\nPresta")
	input = append(input, 0xE7, 0xE3, 'o')
	input = append(input, []byte(";500,00;01-08-2025\n")...)

	got, err := importer.NewParser().Parse(strings.NewReader(string(input)))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Prestação", got[0].Name)
}

func TestParser_UTF8BOM(t *testing.T) {
	input := "\xEF\xBB\xBFname,amount,due_date\nGym,30,2025-07-01\n"

	got, err := importer.NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Gym", got[0].Name)
}
