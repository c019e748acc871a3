// Package export は管理画面の一覧を xlsx にする。
package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/domain/model"
)

const sheet = "Sheet1"

// XLSXExporter は usecase.SpreadsheetExporter の実装。
type XLSXExporter struct{}

func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

func (XLSXExporter) Products(products []model.Product) ([]byte, error) {
	rows := make([][]any, 0, len(products))
	for _, p := range products {
		category := ""
		if p.Category != nil {
			category = p.Category.Name
		}
		rows = append(rows, []any{
			p.ID, p.SKU, p.Name, p.Brand, p.Size, p.Condition, category,
			p.Price.InexactFloat64(), p.Stock, string(p.Status),
			p.RatingAverage.InexactFloat64(), p.RatingCount, p.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return write("Products", []string{
		"ID", "SKU", "Name", "Brand", "Size", "Condition", "Category",
		"Price", "Stock", "Status", "Rating", "Reviews", "Created At",
	}, rows)
}

func (XLSXExporter) Users(users []model.User) ([]byte, error) {
	rows := make([][]any, 0, len(users))
	for _, u := range users {
		lastLogin := ""
		if u.LastLoginAt != nil {
			lastLogin = u.LastLoginAt.UTC().Format(time.RFC3339)
		}
		rows = append(rows, []any{
			u.ID, u.Name, u.Email, u.Phone, string(u.Role), u.IsActive,
			u.Metadata.TotalOrders, u.Metadata.TotalSpent.InexactFloat64(), u.Metadata.AverageOrderValue.InexactFloat64(),
			lastLogin, u.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return write("Users", []string{
		"ID", "Name", "Email", "Phone", "Role", "Active",
		"Total Orders", "Total Spent", "Average Order", "Last Login", "Created At",
	}, rows)
}

func (XLSXExporter) Orders(orders []model.Order) ([]byte, error) {
	rows := make([][]any, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, []any{
			o.ID, o.OrderNumber, o.UserID, string(o.Status), len(o.Items),
			o.Pricing.Subtotal.InexactFloat64(), o.Pricing.Tax.InexactFloat64(),
			o.Pricing.Shipping.InexactFloat64(), o.Pricing.Discount.InexactFloat64(), o.Pricing.Total.InexactFloat64(),
			string(o.Payment.Method), string(o.Payment.Status), o.Shipping.TrackingNumber,
			o.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return write("Orders", []string{
		"ID", "Order Number", "User ID", "Status", "Items",
		"Subtotal", "Tax", "Shipping", "Discount", "Total",
		"Payment Method", "Payment Status", "Tracking Number", "Created At",
	}, rows)
}

func write(title string, header []string, rows [][]any) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(sheet, title); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(title, "A1", &header); err != nil {
		return nil, err
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(title, "A1", last, bold); err != nil {
		return nil, err
	}

	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(title, cell, &r); err != nil {
			return nil, fmt.Errorf("export: row %d: %w", i+2, err)
		}
	}

	//見出し行を固定
	if err := f.SetPanes(title, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
