package mail

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/config"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/domain/model"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/usecase"
)

type captureSender struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (s *captureSender) Send(_ context.Context, m Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, m)
	return s.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleOrder() model.Order {
	return model.Order{
		OrderNumber: "ORD-12345678-AB12",
		Status:      model.OrderStatusInTransit,
		Items: []model.OrderItem{
			{Name: "Air Jordan 1", SKU: "LP-NIK-000001", Quantity: 1, Price: decimal.RequireFromString("150"), Subtotal: decimal.RequireFromString("150")},
		},
		Shipping: model.ShippingInfo{Carrier: "DHL", TrackingNumber: "JD0001"},
		Pricing: model.Pricing{
			Subtotal: decimal.RequireFromString("150"),
			Tax:      decimal.RequireFromString("15"),
			Shipping: decimal.Zero,
			Discount: decimal.Zero,
			Total:    decimal.RequireFromString("165"),
		},
	}
}

func TestNotifier_SendsInBackground(t *testing.T) {
	s := &captureSender{}
	n := NewNotifier(s, quietLogger(), 4)
	to := usecase.Recipient{Name: "Dana", Email: "dana@example.com"}

	n.OrderPlaced(context.Background(), to, sampleOrder())
	n.OrderStatusChanged(context.Background(), to, sampleOrder())
	n.Welcome(context.Background(), usecase.Recipient{Name: "NoMail"})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, n.Close(ctx))

	require.Len(t, s.sent, 2)
	assert.Equal(t, "Order confirmation ORD-12345678-AB12", s.sent[0].Subject)
	assert.Contains(t, s.sent[0].HTML, "Total: $165.00")
	assert.Contains(t, s.sent[0].HTML, "Hi Dana")
	assert.Equal(t, "Order ORD-12345678-AB12 is In Transit", s.sent[1].Subject)
	assert.Contains(t, s.sent[1].HTML, "JD0001")
}

func TestNotifier_SendErrorIsSwallowed(t *testing.T) {
	s := &captureSender{err: errors.New("smtp down")}
	n := NewNotifier(s, quietLogger(), 1)

	n.OrderCancelled(context.Background(), usecase.Recipient{Email: "dana@example.com"}, sampleOrder())
	require.NoError(t, n.Close(context.Background()))
	assert.Len(t, s.sent, 1)

	//Close 後は捨てる（panic しない）
	n.Welcome(context.Background(), usecase.Recipient{Email: "dana@example.com"})
}

func TestNotifier_EnqueueRacingClose(t *testing.T) {
	s := &captureSender{}
	n := NewNotifier(s, quietLogger(), 256)
	to := usecase.Recipient{Email: "dana@example.com"}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				n.Welcome(context.Background(), to)
			}
		}()
	}
	require.NoError(t, n.Close(context.Background()))
	wg.Wait()

	s.mu.Lock()
	sent := len(s.sent)
	s.mu.Unlock()

	//閉じた後の分は捨てられ、送れた分は 100 通以下
	n.Welcome(context.Background(), to)
	s.mu.Lock()
	defer s.mu.Unlock()
	assert.LessOrEqual(t, sent, 100)
	assert.Len(t, s.sent, sent)
}

func TestBuildRaw(t *testing.T) {
	raw := string(buildRaw(config.SMTPConfig{From: "no-reply@lastpiece.local", FromName: "Last Piece"},
		Message{To: "dana@example.com", Subject: "Hi", HTML: "<p>x</p>"}))

	assert.True(t, strings.HasPrefix(raw, "From: Last Piece <no-reply@lastpiece.local>\r\n"))
	assert.Contains(t, raw, "Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n<p>x</p>")
}

func TestNewSender(t *testing.T) {
	assert.IsType(t, &LogSender{}, NewSender(config.SMTPConfig{}, quietLogger()))
	assert.IsType(t, &SMTPSender{}, NewSender(config.SMTPConfig{Host: "smtp.example.com"}, quietLogger()))
}
