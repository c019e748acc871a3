package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/domain/model"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/pkg/pagination"
	repo "github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/repository"
)

type AdminOrderUsecase struct {
	tx       repo.TransactionManager
	orders   repo.OrderRepository
	users    repo.UserRepository
	notifier Notifier
	clock    Clock
	// true なら遷移表に無い変更を拒否する
	strict bool
	log    *slog.Logger
}

type AdminOrderDeps struct {
	Tx                repo.TransactionManager
	Orders            repo.OrderRepository
	Users             repo.UserRepository
	Notifier          Notifier
	Clock             Clock
	StrictTransitions bool
	Logger            *slog.Logger
}

func NewAdminOrderUsecase(d AdminOrderDeps) *AdminOrderUsecase {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &AdminOrderUsecase{
		tx:       d.Tx,
		orders:   d.Orders,
		users:    d.Users,
		notifier: d.Notifier,
		clock:    d.Clock,
		strict:   d.StrictTransitions,
		log:      d.Logger,
	}
}

type AdminUpdateOrderStatusInput struct {
	Status string
	Notes  string
}

type AdminUpdateTrackingInput struct {
	Carrier        string
	TrackingNumber string
	TrackingURL    string
}

type AdminUpdatePaymentInput struct {
	Status        string
	TransactionID string
}

// List は管理者向けの注文一覧。
func (u *AdminOrderUsecase) List(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, pagination.Meta, error) {
	if f.Status != "" && !model.OrderStatus(f.Status).Valid() {
		return nil, pagination.Meta{}, validationError("invalid status")
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return nil, pagination.Meta{}, validationError("from must be before to")
	}

	p := pagination.Normalize(f.Page, f.Limit)
	f.Page, f.Limit = p.Page, p.Limit

	orders, total, err := u.orders.ListAdmin(ctx, f)
	if err != nil {
		return nil, pagination.Meta{}, dbError(err)
	}
	return orders, pagination.NewMeta(p, total), nil
}

// Get は注文詳細（所有者チェックなし）。
func (u *AdminOrderUsecase) Get(ctx context.Context, orderID int64) (model.Order, error) {
	if orderID <= 0 {
		return model.Order{}, validationError("invalid id")
	}
	o, err := u.orders.FindByID(ctx, orderID)
	if err != nil {
		return model.Order{}, lookupError(err, "order not found")
	}
	return o, nil
}

// UpdateStatus はステータスを上書きしてタイムラインに必ず1件追記する。
// 既定では前の状態に関係なく受け付ける（スタッフによる訂正用）。
// cancelled / returned に入るときに在庫を戻し、そこから出るときは取り直す。
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actorID int64, orderID int64, in AdminUpdateOrderStatusInput) (model.Order, error) {
	if actorID <= 0 {
		return model.Order{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return model.Order{}, validationError("invalid id")
	}

	next := model.OrderStatus(strings.TrimSpace(in.Status))
	if !next.Valid() {
		return model.Order{}, validationError("invalid status")
	}

	var out model.Order

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return lookupError(err, "order not found")
		}

		before := o.Status
		if u.strict && !before.CanTransitionTo(next) {
			return invalidStateError("cannot change status from " + string(before) + " to " + string(next))
		}

		// 在庫は「戻していない状態」の注文だけが持つ
		switch {
		case next.ReleasesStock() && !before.ReleasesStock():
			for _, it := range o.Items {
				if err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.Quantity); err != nil {
					return dbError(err)
				}
			}
		case before.ReleasesStock() && !next.ReleasesStock():
			// 再開するときは在庫を取り直す。足りなければロールバック
			for _, it := range o.Items {
				ok, err := r.Inventory().DecreaseStockIfEnough(ctx, it.ProductID, it.Quantity)
				if err != nil {
					return dbError(err)
				}
				if !ok {
					return insufficientStockError("insufficient stock: " + it.Name)
				}
			}
		}

		actor := actorID
		ev := o.AppendStatus(next, strings.TrimSpace(in.Notes), &actor, u.clock.Now())
		if err := r.Orders().AppendStatus(ctx, o.ID, ev); err != nil {
			return lookupError(err, "order not found")
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   o.ID,
			BeforeJSON:   auditJSON(map[string]any{"status": before}),
			AfterJSON:    auditJSON(map[string]any{"status": next, "notes": ev.Notes}),
			CreatedAt:    ev.CreatedAt,
		}); err != nil {
			return dbError(err)
		}

		out = o
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}

	notifyOrderOwner(ctx, u.log, u.users, out, u.notifier.OrderStatusChanged)
	return out, nil
}

// UpdateTracking は配送業者と追跡番号だけを更新する。
func (u *AdminOrderUsecase) UpdateTracking(ctx context.Context, actorID int64, orderID int64, in AdminUpdateTrackingInput) (model.Order, error) {
	if actorID <= 0 {
		return model.Order{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return model.Order{}, validationError("invalid id")
	}
	in.Carrier = strings.TrimSpace(in.Carrier)
	in.TrackingNumber = strings.TrimSpace(in.TrackingNumber)
	in.TrackingURL = strings.TrimSpace(in.TrackingURL)
	if in.TrackingNumber == "" {
		return model.Order{}, validationError("trackingNumber is required")
	}

	var out model.Order

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return lookupError(err, "order not found")
		}

		before := o.Shipping
		if err := r.Orders().UpdateTracking(ctx, o.ID, in.Carrier, in.TrackingNumber, in.TrackingURL); err != nil {
			return lookupError(err, "order not found")
		}
		o.Shipping.Carrier = in.Carrier
		o.Shipping.TrackingNumber = in.TrackingNumber
		o.Shipping.TrackingURL = in.TrackingURL

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorID,
			Action:       model.AuditActionUpdateOrderTracking,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   o.ID,
			BeforeJSON:   auditJSON(before),
			AfterJSON:    auditJSON(o.Shipping),
			CreatedAt:    u.clock.Now(),
		}); err != nil {
			return dbError(err)
		}

		out = o
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}
	return out, nil
}

// UpdatePayment は決済ステータスを記録する（ゲートウェイ連携なし）。
func (u *AdminOrderUsecase) UpdatePayment(ctx context.Context, actorID int64, orderID int64, in AdminUpdatePaymentInput) (model.Order, error) {
	if actorID <= 0 {
		return model.Order{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return model.Order{}, validationError("invalid id")
	}
	status := model.PaymentStatus(strings.TrimSpace(in.Status))
	if !status.Valid() {
		return model.Order{}, validationError("invalid payment status")
	}
	txID := strings.TrimSpace(in.TransactionID)

	var out model.Order

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return lookupError(err, "order not found")
		}

		before := o.Payment
		if txID == "" {
			txID = o.Payment.TransactionID
		}
		if err := r.Orders().UpdatePayment(ctx, o.ID, status, txID); err != nil {
			return lookupError(err, "order not found")
		}
		o.Payment.Status = status
		o.Payment.TransactionID = txID

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorID,
			Action:       model.AuditActionUpdatePayment,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   o.ID,
			BeforeJSON:   auditJSON(before),
			AfterJSON:    auditJSON(o.Payment),
			CreatedAt:    u.clock.Now(),
		}); err != nil {
			return dbError(err)
		}

		out = o
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}
	return out, nil
}

// 監査ログ用。失敗したら空オブジェクト。
func auditJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
