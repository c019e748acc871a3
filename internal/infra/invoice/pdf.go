// Package invoice は注文の請求書PDFを作る（注文番号入りQRコード付き）。
package invoice

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/domain/model"
)

type PDFRenderer struct {
	shopName string
}

func NewPDFRenderer(shopName string) *PDFRenderer {
	if shopName == "" {
		shopName = "Last Piece"
	}
	return &PDFRenderer{shopName: shopName}
}

func (r *PDFRenderer) Render(order model.Order) ([]byte, error) {
	qrPNG, err := qrcode.Encode(order.OrderNumber, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("invoice: qr: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Invoice "+order.OrderNumber, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 20)
	pdf.Cell(0, 10, tr(r.shopName))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 6, "Invoice: "+order.OrderNumber)
	pdf.Ln(6)
	pdf.Cell(0, 6, "Date: "+order.CreatedAt.UTC().Format("2006-01-02"))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Status: "+string(order.Status))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Payment: "+string(order.Payment.Method)+" ("+string(order.Payment.Status)+")")
	pdf.Ln(10)

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 160, 12, 36, 36, false, opts, 0, "")

	top := pdf.GetY()
	addressBlock(pdf, tr, "Bill to", order.BillingAddress, 10, top)
	addressBlock(pdf, tr, "Ship to", order.ShippingAddress, 105, top)
	pdf.SetXY(10, top+40)

	//明細
	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(90, 8, "Item", "1", 0, "L", true, 0, "")
	pdf.CellFormat(35, 8, "SKU", "1", 0, "L", true, 0, "")
	pdf.CellFormat(15, 8, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 8, "Price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(25, 8, "Subtotal", "1", 1, "R", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, it := range order.Items {
		pdf.CellFormat(90, 7, tr(it.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 7, it.SKU, "1", 0, "L", false, 0, "")
		pdf.CellFormat(15, 7, fmt.Sprintf("%d", it.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 7, money(it.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 7, money(it.Subtotal), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	p := order.Pricing
	totalLine(pdf, "Subtotal", money(p.Subtotal), false)
	totalLine(pdf, "Tax", money(p.Tax), false)
	totalLine(pdf, "Shipping", money(p.Shipping), false)
	if p.Discount.IsPositive() {
		label := "Discount"
		if order.Coupon.Code != "" {
			label += " (" + order.Coupon.Code + ")"
		}
		totalLine(pdf, label, "-"+money(p.Discount), false)
	}
	totalLine(pdf, "Total", money(p.Total), true)

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("invoice: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("invoice: output: %w", err)
	}
	return buf.Bytes(), nil
}

// (x, y) から住所を縦に並べる。空の行は詰める。
func addressBlock(pdf *gofpdf.Fpdf, tr func(string) string, title string, a model.Address, x, y float64) {
	pdf.SetXY(x, y)
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(90, 6, title)

	pdf.SetFont("Arial", "", 10)
	lines := []string{a.FullName, a.Line1, a.Line2, strings.TrimSpace(a.City + " " + a.State + " " + a.PostalCode), a.Country, a.Phone}
	for _, l := range lines {
		if l == "" {
			continue
		}
		y += 5
		pdf.SetXY(x, y+1)
		pdf.Cell(90, 5, tr(l))
	}
}

func totalLine(pdf *gofpdf.Fpdf, label, value string, bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	pdf.SetFont("Arial", style, 11)
	pdf.CellFormat(140, 7, label, "", 0, "R", false, 0, "")
	pdf.CellFormat(50, 7, value, "", 1, "R", false, 0, "")
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
