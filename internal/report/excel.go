package report

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/goldlab/assay-api/internal/domain"
)

// XLSXContentType is the media type of the workbooks written here.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type sheet struct {
	name   string
	header []interface{}
	rows   [][]interface{}
	footer []interface{}
}

func writeWorkbook(w io.Writer, s sheet) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), s.name); err != nil {
		return fmt.Errorf("f.SetSheetName -> %w", err)
	}

	if err := f.SetSheetRow(s.name, "A1", &s.header); err != nil {
		return fmt.Errorf("f.SetSheetRow header -> %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("f.NewStyle -> %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(s.header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(s.name, "A1", last, bold); err != nil {
		return fmt.Errorf("f.SetCellStyle -> %w", err)
	}

	row := 2
	for _, r := range s.rows {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.name, cell, &r); err != nil {
			return fmt.Errorf("f.SetSheetRow -> %w", err)
		}
		row++
	}

	if len(s.footer) > 0 {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.name, cell, &s.footer); err != nil {
			return fmt.Errorf("f.SetSheetRow footer -> %w", err)
		}
	}

	if err := f.SetPanes(s.name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("f.SetPanes -> %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("f.Write -> %w", err)
	}

	return nil
}

func num(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func paid(b bool) string {
	if b {
		return "Paid"
	}
	return "Unpaid"
}

func WriteTokens(w io.Writer, tokens []domain.Token) error {
	s := sheet{
		name:   "Tokens",
		header: []interface{}{"Token No", "Date", "Time", "Code", "Name", "Test", "Weight", "Sample", "Amount", "Status"},
	}

	total := decimal.Zero
	for _, t := range tokens {
		s.rows = append(s.rows, []interface{}{
			t.TokenNo, t.Date, t.Time, t.Code, t.CustomerName, t.Test.Label(),
			num(t.Weight), t.Sample, num(t.Amount), paid(t.IsPaid),
		})
		total = total.Add(t.Amount)
	}
	s.footer = []interface{}{"Total", "", "", "", "", "", "", "", num(total)}

	return writeWorkbook(w, s)
}

func WriteSkinTests(w io.Writer, tests []domain.SkinTest) error {
	header := []interface{}{"Token No", "Date", "Code", "Name", "Weight", "Sample"}
	for _, e := range (domain.Composition{}).Elements() {
		header = append(header, e.Name)
	}
	header = append(header, "Karat", "Remarks")

	s := sheet{name: "Skin Tests", header: header}
	for _, t := range tests {
		row := []interface{}{t.TokenNo, t.Date, t.Code, t.Name, num(t.Weight), t.Sample}
		for _, e := range t.Elements() {
			row = append(row, num(e.Value))
		}
		row = append(row, num(t.Karat), t.Remarks)
		s.rows = append(s.rows, row)
	}

	return writeWorkbook(w, s)
}

func WriteExpenses(w io.Writer, expenses []domain.Expense) error {
	s := sheet{
		name:   "Expenses",
		header: []interface{}{"Date", "Type", "Amount", "Paid To", "Pay Mode", "Remarks"},
	}

	total := decimal.Zero
	for _, e := range expenses {
		s.rows = append(s.rows, []interface{}{
			e.Date.Format(domain.DateLayout), e.TypeName, num(e.Amount), e.PaidTo, string(e.PayMode), e.Remarks,
		})
		total = total.Add(e.Amount)
	}
	s.footer = []interface{}{"Total", "", num(total)}

	return writeWorkbook(w, s)
}

func WriteStatement(w io.Writer, st domain.Statement) error {
	s := sheet{
		name:   "Statement",
		header: []interface{}{"Token No", "Date", "Time", "Test", "Weight", "Sample", "Amount", "Status"},
	}
	for _, t := range st.Tokens {
		s.rows = append(s.rows, []interface{}{
			t.TokenNo, t.Date, t.Time, t.Test.Label(), num(t.Weight), t.Sample, num(t.Amount), paid(t.IsPaid),
		})
	}
	s.footer = []interface{}{
		fmt.Sprintf("%s (%s)", st.Entry.Name, st.Entry.Code), "", "", fmt.Sprintf("%d tokens", st.Count),
		num(st.TotalWeight), "", num(st.TotalAmount), fmt.Sprintf("Unpaid %s", st.Unpaid.StringFixed(2)),
	}

	return writeWorkbook(w, s)
}
