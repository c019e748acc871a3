package db

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mockOpener(t *testing.T) (opener, *[]string) {
	t.Helper()
	var seen []string
	return func(dsn string) (*gorm.DB, error) {
		seen = append(seen, dsn)
		if dsn != "postgres://fallback" {
			return nil, errors.New("dial tcp: connection refused")
		}
		sqlDB, _, err := sqlmock.New()
		require.NoError(t, err)
		t.Cleanup(func() { _ = sqlDB.Close() })
		return gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	}, &seen
}

func TestConnect_RetriesThenFallback(t *testing.T) {
	open, seen := mockOpener(t)
	cfg := config.Config{
		DatabaseURL:         "postgres://primary",
		DatabaseFallbackURL: "postgres://fallback",
		DBConnectAttempts:   3,
		DBConnectDelay:      time.Millisecond,
	}

	db, err := connect(context.Background(), cfg, discardLogger(), open)

	require.NoError(t, err)
	assert.NotNil(t, db)
	assert.Equal(t, []string{"postgres://primary", "postgres://primary", "postgres://primary", "postgres://fallback"}, *seen)
}

func TestConnect_NoFallback(t *testing.T) {
	open, seen := mockOpener(t)
	cfg := config.Config{
		DatabaseURL:       "postgres://primary",
		DBConnectAttempts: 2,
		DBConnectDelay:    time.Millisecond,
	}

	_, err := connect(context.Background(), cfg, discardLogger(), open)

	assert.ErrorContains(t, err, "connection refused")
	assert.Len(t, *seen, 2)
}

func TestConnect_ContextCanceled(t *testing.T) {
	open, _ := mockOpener(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := config.Config{DatabaseURL: "postgres://primary", DBConnectAttempts: 3, DBConnectDelay: time.Hour}
	_, err := connect(ctx, cfg, discardLogger(), open)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestPing_Nil(t *testing.T) {
	assert.Error(t, Ping(context.Background(), nil))
}
