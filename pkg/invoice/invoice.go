package invoice

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

// Line is a single invoice row.
type Line struct {
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// Total returns quantity times unit price.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Data carries everything needed to render an order invoice.
type Data struct {
	StoreName     string
	OrderNumber   string
	IssuedAt      time.Time
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	DeliveryNotes string
	Lines         []Line
	DeliveryFee   decimal.Decimal
	Discount      decimal.Decimal
	AmountPaid    decimal.Decimal
}

// Subtotal sums the line totals before delivery and discount.
func (d Data) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, line := range d.Lines {
		sum = sum.Add(line.Total())
	}
	return sum
}

// GrandTotal is subtotal plus delivery fee minus discount, floored at zero.
func (d Data) GrandTotal() decimal.Decimal {
	total := d.Subtotal().Add(d.DeliveryFee).Sub(d.Discount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

// AmountOwing is the unpaid balance, floored at zero.
func (d Data) AmountOwing() decimal.Decimal {
	owing := d.GrandTotal().Sub(d.AmountPaid)
	if owing.IsNegative() {
		return decimal.Zero
	}
	return owing
}

// Render produces the invoice PDF.
func Render(data Data) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, data.StoreName)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Invoice for order %s", data.OrderNumber))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Issued %s", data.IssuedAt.Format("2 January 2006")))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 6, "Billed to")
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, data.CustomerName)
	pdf.Ln(6)
	if data.CustomerEmail != "" {
		pdf.Cell(0, 6, data.CustomerEmail)
		pdf.Ln(6)
	}
	if data.CustomerPhone != "" {
		pdf.Cell(0, 6, data.CustomerPhone)
		pdf.Ln(6)
	}
	pdf.Ln(4)

	const (
		descWidth  = 95.0
		qtyWidth   = 20.0
		priceWidth = 32.5
	)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(descWidth, 8, "Item", "1", 0, "L", true, 0, "")
	pdf.CellFormat(qtyWidth, 8, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(priceWidth, 8, "Unit", "1", 0, "R", true, 0, "")
	pdf.CellFormat(priceWidth, 8, "Total", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, line := range data.Lines {
		pdf.CellFormat(descWidth, 8, line.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(qtyWidth, 8, fmt.Sprintf("%d", line.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(priceWidth, 8, formatRand(line.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(priceWidth, 8, formatRand(line.Total()), "1", 1, "R", false, 0, "")
	}

	summary := []struct {
		label string
		value decimal.Decimal
	}{
		{"Subtotal", data.Subtotal()},
		{"Delivery", data.DeliveryFee},
		{"Discount", data.Discount.Neg()},
		{"Total", data.GrandTotal()},
		{"Paid", data.AmountPaid},
		{"Owing", data.AmountOwing()},
	}
	pdf.Ln(2)
	for _, row := range summary {
		if row.label == "Discount" && data.Discount.IsZero() {
			continue
		}
		pdf.CellFormat(descWidth+qtyWidth, 7, "", "", 0, "L", false, 0, "")
		if row.label == "Total" || row.label == "Owing" {
			pdf.SetFont("Helvetica", "B", 10)
		} else {
			pdf.SetFont("Helvetica", "", 10)
		}
		pdf.CellFormat(priceWidth, 7, row.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(priceWidth, 7, formatRand(row.value), "", 1, "R", false, 0, "")
	}

	if data.DeliveryNotes != "" {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.Cell(0, 6, "Delivery notes")
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, data.DeliveryNotes, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func formatRand(v decimal.Decimal) string {
	return "R " + v.StringFixed(2)
}
