package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/domain/model"
)

func open(t *testing.T, b []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestXLSXExporter_Products(t *testing.T) {
	b, err := NewXLSXExporter().Products([]model.Product{{
		ID:        10,
		SKU:       "LP-NIK-000001",
		Name:      "Air Jordan 1",
		Brand:     "Nike",
		Category:  &model.Category{Name: "Sneakers"},
		Price:     decimal.RequireFromString("150.00"),
		Stock:     1,
		Status:    model.ProductStatusActive,
		CreatedAt: time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC),
	}})
	require.NoError(t, err)

	f := open(t, b)
	rows, err := f.GetRows("Products")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "SKU", rows[0][1])
	assert.Equal(t, "LP-NIK-000001", rows[1][1])
	assert.Equal(t, "Sneakers", rows[1][6])
	assert.Equal(t, "150", rows[1][7])
	assert.Equal(t, "active", rows[1][9])
}

func TestXLSXExporter_OrdersEmpty(t *testing.T) {
	b, err := NewXLSXExporter().Orders(nil)
	require.NoError(t, err)

	rows, err := open(t, b).GetRows("Orders")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Order Number", rows[0][1])
}

func TestXLSXExporter_Users(t *testing.T) {
	b, err := NewXLSXExporter().Users([]model.User{{ID: 1, Name: "Dana", Email: "dana@example.com", Role: model.RoleAdmin, IsActive: true}})
	require.NoError(t, err)

	rows, err := open(t, b).GetRows("Users")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "dana@example.com", rows[1][2])
	assert.Equal(t, "admin", rows[1][4])
	assert.Equal(t, "TRUE", rows[1][5])
}
