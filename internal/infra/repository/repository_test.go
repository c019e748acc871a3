package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	repo "github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/repository"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestMapError(t *testing.T) {
	assert.NoError(t, mapError(nil))
	assert.ErrorIs(t, mapError(gorm.ErrRecordNotFound), repo.ErrNotFound)
	assert.ErrorIs(t, mapError(gorm.ErrDuplicatedKey), repo.ErrDuplicate)
	assert.ErrorIs(t, mapError(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})), repo.ErrDuplicate)

	other := errors.New("connection reset")
	assert.Equal(t, other, mapError(other))
}

func TestInventory_DecreaseStockIfEnough(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	r := NewInventoryGormRepository(db)

	q := regexp.QuoteMeta(`UPDATE "products" SET "stock"=stock - $1`)
	mock.ExpectExec(q).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := r.DecreaseStockIfEnough(ctx, 10, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	//在庫不足は更新0件
	ok, err = r.DecreaseStockIfEnough(ctx, 10, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInventory_SetStock_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewInventoryGormRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "products" SET "stock"=$1`)).WillReturnResult(sqlmock.NewResult(0, 0))

	err := r.SetStock(context.Background(), 99, 3)
	assert.ErrorIs(t, err, repo.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReview_RatingStats(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	r := NewReviewGormRepository(db)

	q := regexp.QuoteMeta(`SELECT AVG(rating) AS average, COUNT(*) AS count FROM "reviews"`)
	mock.ExpectQuery(q).WillReturnRows(sqlmock.NewRows([]string{"average", "count"}).AddRow("4.5", 2))
	mock.ExpectQuery(q).WillReturnRows(sqlmock.NewRows([]string{"average", "count"}).AddRow(nil, 0))

	avg, n, err := r.RatingStats(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "4.5", avg.String())
	assert.Equal(t, int64(2), n)

	//承認済みが無い商品
	avg, n, err = r.RatingStats(ctx, 11)
	require.NoError(t, err)
	assert.True(t, avg.IsZero())
	assert.Zero(t, n)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReport_CountOrders_Range(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewReportGormRepository(db)

	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 5, 8, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "orders" WHERE created_at >= $1 AND created_at < $2`)).
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	n, err := r.CountOrders(context.Background(), &from, &to)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrder_ListAdmin_ToIsExclusive(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewOrderGormRepository(db)

	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 5, 8, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "orders" WHERE created_at >= $1 AND created_at < $2`)).
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders" WHERE created_at >= $1 AND created_at < $2 ORDER BY created_at desc, id desc`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	orders, total, err := r.ListAdmin(context.Background(), repo.AdminOrderListFilter{Page: 1, Limit: 20, From: &from, To: &to})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, orders)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReport_Revenue_ExcludesCancelled(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewReportGormRepository(db)

	mock.ExpectQuery(`FROM "orders" WHERE status NOT IN \(\$1,\$2\)`).
		WithArgs("cancelled", "returned").
		WillReturnRows(sqlmock.NewRows([]string{"orders", "subtotal", "tax", "shipping", "discount", "revenue"}).
			AddRow(2, "300.00", "30.00", "0", "0", "330.00"))

	s, err := r.Revenue(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), s.Orders)
	assert.Equal(t, "330", s.Revenue.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}
