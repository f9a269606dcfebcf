package services

import (
	"bytes"
	"fmt"

	"github.com/harentsoaR/esannidhi-api/internal/models"
	"github.com/xuri/excelize/v2"
)

const BillSheet = "Bills"

// BillExportHeader is the first row of a bill export.
var BillExportHeader = []string{
	"Bill ID",
	"Order ID",
	"Patient / Buyer",
	"Items",
	"Subtotal",
	"Discount",
	"Total",
	"Paid",
	"Created At",
}

var billColumnWidths = []float64{26, 26, 26, 48, 12, 12, 12, 8, 20}

// ExportBills renders bills as an xlsx workbook with a totals row.
func ExportBills(bills []models.Bill) ([]byte, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(BillSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetRow(BillSheet, "A1", &BillExportHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(BillExportHeader))
	if err := f.SetCellStyle(BillSheet, "A1", lastCol+"1", headerStyle); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}
	for i, width := range billColumnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(BillSheet, col, col, width); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	var subtotal, discount, total float64
	for i, b := range bills {
		row := []interface{}{
			b.ID.Hex(),
			b.OrderID,
			billedTo(b),
			describeItems(b.Items),
			b.Subtotal,
			b.Discount,
			b.Total,
			yesNo(b.Paid),
			b.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(BillSheet, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
		subtotal += b.Subtotal
		discount += b.Discount
		total += b.Total
	}

	totals := []interface{}{"Total", "", "", fmt.Sprintf("%d bills", len(bills)), subtotal, discount, total}
	totalsCell, _ := excelize.CoordinatesToCellName(1, len(bills)+2)
	if err := f.SetSheetRow(BillSheet, totalsCell, &totals); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write totals: %w", err)
	}

	if err := f.SetPanes(BillSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}
	return buf.Bytes(), nil
}

func describeItems(items []models.OrderItem) string {
	var buf bytes.Buffer
	for i, it := range items {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "%s x%d", it.Name, it.Quantity)
	}
	return buf.String()
}

// billedTo names the patient, or the ordering account for cart checkouts.
func billedTo(b models.Bill) string {
	if b.PatientID != "" {
		return b.PatientID
	}
	return string(b.OwnerRole) + ":" + b.OwnerID
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
