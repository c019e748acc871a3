package mail

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/domain/model"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/usecase"
)

const shopName = "Last Piece"

// Notifier はメールをキューに積み、バックグラウンドで送る。
// 送信失敗はログに残すだけで呼び出し側には返さない。
type Notifier struct {
	sender Sender
	log    *slog.Logger
	queue  chan Message

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

var _ usecase.Notifier = (*Notifier)(nil)

func NewNotifier(sender Sender, log *slog.Logger, buffer int) *Notifier {
	if buffer <= 0 {
		buffer = 64
	}
	n := &Notifier{
		sender: sender,
		log:    log,
		queue:  make(chan Message, buffer),
		done:   make(chan struct{}),
	}
	go n.run()
	return n
}

func (n *Notifier) run() {
	defer close(n.done)
	for m := range n.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := n.sender.Send(ctx, m); err != nil {
			n.log.Error("send mail failed",
				slog.String("to", m.To),
				slog.String("subject", m.Subject),
				slog.Any("error", err),
			)
		}
		cancel()
	}
}

// Close はキューを閉じて、積まれた分を送り終えるまで待つ。
func (n *Notifier) Close(ctx context.Context) error {
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.queue)
	}
	n.mu.Unlock()

	select {
	case <-n.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (n *Notifier) OrderPlaced(ctx context.Context, to usecase.Recipient, order model.Order) {
	n.enqueue(ctx, to, "Order confirmation "+order.OrderNumber, "order_placed.html", order)
}

func (n *Notifier) OrderStatusChanged(ctx context.Context, to usecase.Recipient, order model.Order) {
	n.enqueue(ctx, to, "Order "+order.OrderNumber+" is "+statusLabel(order.Status), "order_status.html", order)
}

func (n *Notifier) OrderCancelled(ctx context.Context, to usecase.Recipient, order model.Order) {
	n.enqueue(ctx, to, "Order "+order.OrderNumber+" cancelled", "order_cancelled.html", order)
}

func (n *Notifier) Welcome(ctx context.Context, to usecase.Recipient) {
	n.enqueue(ctx, to, "Welcome to "+shopName, "welcome.html", model.Order{})
}

func (n *Notifier) enqueue(ctx context.Context, to usecase.Recipient, subject, tmpl string, order model.Order) {
	if to.Email == "" {
		return
	}
	body, err := render(tmpl, view{Name: to.Name, Order: order, ShopName: shopName})
	if err != nil {
		n.log.ErrorContext(ctx, "render mail failed", slog.String("template", tmpl), slog.Any("error", err))
		return
	}

	m := Message{To: to.Email, Subject: subject, HTML: body}

	//送信は読みロック中だけ。Close は書きロックで閉じる
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		n.log.WarnContext(ctx, "mail dropped (notifier closed)", slog.String("to", to.Email))
		return
	}
	select {
	case n.queue <- m:
	default:
		n.log.WarnContext(ctx, "mail dropped (queue full)", slog.String("to", to.Email), slog.String("subject", subject))
	}
}
