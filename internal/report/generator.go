package report

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"farmpulse/internal/models"
)

// DataStore provides the farm records a report is built from.
type DataStore interface {
	ProductionRecords(ctx context.Context, farmID uint, start, end time.Time) ([]models.ProductionRecord, error)
	SaleRecords(ctx context.Context, farmID uint, start, end time.Time) ([]models.SaleRecord, error)
	ExpenseRecords(ctx context.Context, farmID uint, start, end time.Time) ([]models.ExpenseRecord, error)
}

// Generator renders farm reports as XLSX workbooks. It implements
// scheduler.Generator.
type Generator struct {
	store DataStore
}

func NewGenerator(store DataStore) *Generator {
	return &Generator{store: store}
}

func (g *Generator) Generate(ctx context.Context, farmID uint, reportType models.ReportType, windowStart, windowEnd time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	f.SetCellValue(sheet, "A1", fmt.Sprintf("FarmPulse %s report", reportType))
	f.SetCellValue(sheet, "A2", fmt.Sprintf("Farm %d, %s to %s",
		farmID, windowStart.Format("2006-01-02"), windowEnd.Format("2006-01-02")))

	var err error
	switch reportType {
	case models.ReportTypeProduction:
		err = g.writeProduction(ctx, f, sheet, farmID, windowStart, windowEnd)
	case models.ReportTypeSales:
		err = g.writeSales(ctx, f, sheet, farmID, windowStart, windowEnd)
	case models.ReportTypeFinancial:
		err = g.writeFinancial(ctx, f, sheet, farmID, windowStart, windowEnd)
	default:
		return nil, fmt.Errorf("unknown report type: %s", reportType)
	}
	if err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeProduction(ctx context.Context, f *excelize.File, sheet string, farmID uint, start, end time.Time) error {
	recs, err := g.store.ProductionRecords(ctx, farmID, start, end)
	if err != nil {
		return fmt.Errorf("collect production data: %w", err)
	}

	headers := []string{"Date", "Product", "Quantity", "Unit", "Notes"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 4)
		f.SetCellValue(sheet, cell, h)
	}

	totals := make(map[string]float64)
	for i, rec := range recs {
		row := i + 5
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), rec.RecordedAt.Format("2006-01-02"))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), rec.Product)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), rec.Quantity)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), rec.Unit)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), rec.Notes)
		totals[rec.Product] += rec.Quantity
	}

	row := len(recs) + 6
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Totals by product")
	for product, qty := range totals {
		row++
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), product)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), qty)
	}
	return nil
}

func (g *Generator) writeSales(ctx context.Context, f *excelize.File, sheet string, farmID uint, start, end time.Time) error {
	recs, err := g.store.SaleRecords(ctx, farmID, start, end)
	if err != nil {
		return fmt.Errorf("collect sales data: %w", err)
	}

	headers := []string{"Date", "Buyer", "Product", "Quantity", "Unit Price", "Total", "Paid"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 4)
		f.SetCellValue(sheet, cell, h)
	}

	var gross, paid float64
	for i, rec := range recs {
		row := i + 5
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), rec.SoldAt.Format("2006-01-02"))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), rec.Buyer)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), rec.Product)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), rec.Quantity)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), rec.PricePerUnit)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), rec.Total())
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), rec.AmountPaid)
		gross += rec.Total()
		paid += rec.AmountPaid
	}

	row := len(recs) + 6
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Gross sales")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", row), gross)
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row+1), "Collected")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", row+1), paid)
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row+2), "Outstanding")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", row+2), gross-paid)
	return nil
}

func (g *Generator) writeFinancial(ctx context.Context, f *excelize.File, sheet string, farmID uint, start, end time.Time) error {
	sales, err := g.store.SaleRecords(ctx, farmID, start, end)
	if err != nil {
		return fmt.Errorf("collect sales data: %w", err)
	}
	expenses, err := g.store.ExpenseRecords(ctx, farmID, start, end)
	if err != nil {
		return fmt.Errorf("collect expense data: %w", err)
	}

	var revenue float64
	for _, s := range sales {
		revenue += s.Total()
	}

	f.SetCellValue(sheet, "A4", "Expenses")
	headers := []string{"Date", "Category", "Amount", "Notes"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 5)
		f.SetCellValue(sheet, cell, h)
	}

	var spent float64
	for i, rec := range expenses {
		row := i + 6
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), rec.IncurredAt.Format("2006-01-02"))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), rec.Category)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), rec.Amount)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), rec.Notes)
		spent += rec.Amount
	}

	row := len(expenses) + 7
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Revenue")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", row), revenue)
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row+1), "Expenses")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", row+1), spent)
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row+2), "Net")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", row+2), revenue-spent)
	return nil
}
