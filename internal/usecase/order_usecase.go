package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/domain/model"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/pkg/pagination"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/pkg/pricing"
	repo "github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/repository"
)

type OrderUsecase struct {
	tx       repo.TransactionManager
	orders   repo.OrderRepository
	users    repo.UserRepository
	coupons  pricing.CouponPolicy
	numbers  OrderNumberer
	notifier Notifier
	invoices InvoiceRenderer
	clock    Clock
	log      *slog.Logger
}

type OrderDeps struct {
	Tx       repo.TransactionManager
	Orders   repo.OrderRepository
	Users    repo.UserRepository
	Coupons  pricing.CouponPolicy
	Numbers  OrderNumberer
	Notifier Notifier
	Invoices InvoiceRenderer
	Clock    Clock
	Logger   *slog.Logger
}

func NewOrderUsecase(d OrderDeps) *OrderUsecase {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &OrderUsecase{
		tx:       d.Tx,
		orders:   d.Orders,
		users:    d.Users,
		coupons:  d.Coupons,
		numbers:  d.Numbers,
		notifier: d.Notifier,
		invoices: d.Invoices,
		clock:    d.Clock,
		log:      d.Logger,
	}
}

type CreateOrderInput struct {
	BillingAddress  *model.Address
	ShippingAddress *model.Address
	PaymentMethod   string
	ShippingMethod  string
}

// CreateOrder はカートを注文に変換する。
// カートのロック・在庫減算・注文作成・カートクリア・ユーザー集計を1トランザクションで行い、
// メールは commit 後に送る。
func (u *OrderUsecase) CreateOrder(ctx context.Context, userID int64, in CreateOrderInput) (model.Order, error) {
	if userID <= 0 {
		return model.Order{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.BillingAddress == nil || in.ShippingAddress == nil || strings.TrimSpace(in.PaymentMethod) == "" {
		return model.Order{}, validationError("billingAddress, shippingAddress and paymentMethod are required")
	}
	if !in.BillingAddress.Complete() || !in.ShippingAddress.Complete() {
		return model.Order{}, validationError("address is incomplete")
	}
	method := model.PaymentMethod(strings.TrimSpace(in.PaymentMethod))
	if !method.Valid() {
		return model.Order{}, validationError("invalid paymentMethod")
	}
	shipMethod := strings.TrimSpace(in.ShippingMethod)
	if shipMethod == "" {
		shipMethod = "standard"
	}

	var created model.Order

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().FindByUserIDForUpdate(ctx, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return validationError("cart empty")
		}
		if err != nil {
			return dbError(err)
		}
		if cart.IsEmpty() {
			return validationError("cart empty")
		}

		now := u.clock.Now()
		items := make([]model.OrderItem, 0, len(cart.Items))
		lines := make([]pricing.Line, 0, len(cart.Items))

		for _, ci := range cart.Items {
			// 明細はいま読み込んだ商品から写す
			p, err := r.Products().FindByID(ctx, ci.ProductID)
			if errors.Is(err, repo.ErrNotFound) {
				return validationError("product is no longer available")
			}
			if err != nil {
				return dbError(err)
			}
			if !p.IsPurchasable() {
				return validationError("product is no longer available: " + p.Name)
			}

			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, p.ID, ci.Quantity)
			if err != nil {
				return dbError(err)
			}
			if !ok {
				return insufficientStockError("insufficient stock: " + p.Name)
			}

			line := pricing.Line{UnitPrice: p.Price, Quantity: ci.Quantity}
			lines = append(lines, line)
			items = append(items, model.OrderItem{
				ProductID: p.ID,
				Name:      p.Name,
				SKU:       p.SKU,
				Quantity:  ci.Quantity,
				Price:     p.Price,
				Subtotal:  pricing.LineTotal(line),
				CreatedAt: now,
			})
		}

		totals := pricing.Calculate(lines, cart.Shipping, cart.CouponCode, u.coupons)

		number, err := u.numbers.OrderNumber(now)
		if err != nil {
			return &HTTPError{Status: http.StatusInternalServerError, Message: "order number generation failed", Kind: ErrInternal, Err: err}
		}

		order := model.Order{
			OrderNumber:     number,
			UserID:          userID,
			Items:           items,
			BillingAddress:  *in.BillingAddress,
			ShippingAddress: *in.ShippingAddress,
			Shipping:        model.ShippingInfo{Method: shipMethod, Cost: totals.Shipping},
			Payment:         model.PaymentInfo{Method: method, Status: model.PaymentStatusPending},
			Pricing: model.Pricing{
				Subtotal: totals.Subtotal,
				Tax:      totals.Tax,
				Shipping: totals.Shipping,
				Discount: totals.Discount,
				Total:    totals.Total,
			},
			Coupon:    model.CouponSnapshot{Code: cart.CouponCode, Discount: totals.Discount},
			CreatedAt: now,
		}
		actor := userID
		order.AppendStatus(model.OrderStatusPending, "Order placed", &actor, now)

		// 番号衝突（unique違反）もここで 500 になる
		if err := r.Orders().Create(ctx, &order); err != nil {
			return dbError(err)
		}

		cart.Clear(now)
		if err := r.Carts().Save(ctx, &cart); err != nil {
			return dbError(err)
		}

		if err := r.Users().RecordOrder(ctx, userID, totals.Total); err != nil {
			return dbError(err)
		}

		created = order
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}

	u.notify(ctx, created, u.notifier.OrderPlaced)
	return created, nil
}

// ListMyOrders は自分の注文一覧（新しい順）。
func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64, f repo.OrderListFilter) ([]model.Order, pagination.Meta, error) {
	if userID <= 0 {
		return nil, pagination.Meta{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if f.Status != "" && !model.OrderStatus(f.Status).Valid() {
		return nil, pagination.Meta{}, validationError("invalid status")
	}

	p := pagination.Normalize(f.Page, f.Limit)
	f.Page, f.Limit = p.Page, p.Limit

	orders, total, err := u.orders.ListByUserID(ctx, userID, f)
	if err != nil {
		return nil, pagination.Meta{}, dbError(err)
	}
	return orders, pagination.NewMeta(p, total), nil
}

// GetMyOrder は自分の注文詳細。他人の注文は存在しない扱い。
func (u *OrderUsecase) GetMyOrder(ctx context.Context, userID int64, orderID int64) (model.Order, error) {
	if userID <= 0 {
		return model.Order{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return model.Order{}, validationError("invalid id")
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if err != nil {
		return model.Order{}, lookupError(err, "order not found")
	}
	if o.UserID != userID {
		return model.Order{}, notFoundError("order not found")
	}
	return o, nil
}

// CancelOrder は本人による取消（pending のときだけ）。在庫を戻す。
func (u *OrderUsecase) CancelOrder(ctx context.Context, userID int64, orderID int64) (model.Order, error) {
	if userID <= 0 {
		return model.Order{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return model.Order{}, validationError("invalid id")
	}

	var out model.Order

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return lookupError(err, "order not found")
		}
		if o.UserID != userID {
			return notFoundError("order not found")
		}
		if o.Status != model.OrderStatusPending {
			return invalidStateError("only pending orders can be cancelled")
		}

		for _, it := range o.Items {
			if err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.Quantity); err != nil {
				return dbError(err)
			}
		}

		actor := userID
		ev := o.AppendStatus(model.OrderStatusCancelled, "Cancelled by customer", &actor, u.clock.Now())
		if err := r.Orders().AppendStatus(ctx, o.ID, ev); err != nil {
			return lookupError(err, "order not found")
		}

		out = o
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}

	u.notify(ctx, out, u.notifier.OrderCancelled)
	return out, nil
}

// Invoice は本人の注文の請求書PDFを返す。
func (u *OrderUsecase) Invoice(ctx context.Context, userID int64, orderID int64) (model.Order, []byte, error) {
	o, err := u.GetMyOrder(ctx, userID, orderID)
	if err != nil {
		return model.Order{}, nil, err
	}

	pdf, err := u.invoices.Render(o)
	if err != nil {
		return model.Order{}, nil, &HTTPError{Status: http.StatusInternalServerError, Message: "invoice generation failed", Kind: ErrInternal, Err: err}
	}
	return o, pdf, nil
}

// notify は注文者を引いてメールを送る。失敗はログのみ。
func (u *OrderUsecase) notify(ctx context.Context, o model.Order, send func(context.Context, Recipient, model.Order)) {
	notifyOrderOwner(ctx, u.log, u.users, o, send)
}

func notifyOrderOwner(ctx context.Context, log *slog.Logger, users repo.UserRepository, o model.Order, send func(context.Context, Recipient, model.Order)) {
	user, err := users.FindByID(ctx, o.UserID)
	if err != nil {
		log.WarnContext(ctx, "notify: user lookup failed",
			slog.Int64("order_id", o.ID),
			slog.Int64("user_id", o.UserID),
			slog.Any("error", err),
		)
		return
	}
	send(ctx, Recipient{Name: user.Name, Email: user.Email}, o)
}
