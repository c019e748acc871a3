package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/domain/model"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/pkg/pricing"
	repo "github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/repository"
)

// 時刻の取得（テストで固定するため）
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// CartUsecase は /api/cart の業務ロジックです。
// 変更のたびに商品の現在価格から金額を再計算します。
type CartUsecase struct {
	carts    repo.CartRepository
	products repo.ProductRepository
	coupons  pricing.CouponPolicy
	clock    Clock
}

func NewCartUsecase(
	carts repo.CartRepository,
	products repo.ProductRepository,
	coupons pricing.CouponPolicy,
	clock Clock,
) *CartUsecase {
	return &CartUsecase{
		carts:    carts,
		products: products,
		coupons:  coupons,
		clock:    clock,
	}
}

type AddCartInput struct {
	ProductID int64
	Quantity  int64
}

type UpdateCartItemInput struct {
	ProductID int64
	Quantity  int64
}

// GetCart はカート取得（無ければ空で作る）。
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (model.Cart, error) {
	if userID <= 0 {
		return model.Cart{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cart, err := u.carts.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return model.Cart{}, dbError(err)
	}
	return cart, nil
}

// AddItem はカートに追加（同一商品は数量加算）。
func (u *CartUsecase) AddItem(ctx context.Context, userID int64, in AddCartInput) (model.Cart, error) {
	if userID <= 0 {
		return model.Cart{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 {
		return model.Cart{}, validationError("productId is required")
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	if in.Quantity < 0 {
		return model.Cart{}, validationError("quantity must be at least 1")
	}

	p, err := u.products.FindByID(ctx, in.ProductID)
	if err != nil {
		return model.Cart{}, lookupError(err, "product not found")
	}
	if !p.IsPurchasable() {
		return model.Cart{}, notFoundError("product not found")
	}
	// 今回の追加数だけを在庫と比べる。確保はチェックアウト時
	if p.Stock < in.Quantity {
		return model.Cart{}, insufficientStockError("insufficient stock")
	}

	cart, err := u.carts.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return model.Cart{}, dbError(err)
	}

	if idx := cart.FindItem(p.ID); idx >= 0 {
		cart.Items[idx].Quantity += in.Quantity
	} else {
		cart.Items = append(cart.Items, model.CartItem{
			CartID:    cart.ID,
			ProductID: p.ID,
			Quantity:  in.Quantity,
			Price:     p.Price,
		})
	}

	return u.recalculateAndSave(ctx, &cart)
}

// RemoveItem は明細削除。無い商品なら何もしない。
func (u *CartUsecase) RemoveItem(ctx context.Context, userID int64, productID int64) (model.Cart, error) {
	if userID <= 0 {
		return model.Cart{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return model.Cart{}, validationError("productId is required")
	}

	cart, err := u.carts.FindByUserID(ctx, userID)
	if err != nil {
		return model.Cart{}, lookupError(err, "cart not found")
	}

	kept := cart.Items[:0]
	for _, it := range cart.Items {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	cart.Items = kept

	return u.recalculateAndSave(ctx, &cart)
}

// UpdateItemQuantity は数量を上書きする（在庫の上限チェックはしない）。
func (u *CartUsecase) UpdateItemQuantity(ctx context.Context, userID int64, in UpdateCartItemInput) (model.Cart, error) {
	if userID <= 0 {
		return model.Cart{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 {
		return model.Cart{}, validationError("productId is required")
	}
	if in.Quantity < 1 {
		return model.Cart{}, validationError("quantity must be at least 1")
	}

	cart, err := u.carts.FindByUserID(ctx, userID)
	if err != nil {
		return model.Cart{}, lookupError(err, "cart not found")
	}

	idx := cart.FindItem(in.ProductID)
	if idx < 0 {
		return model.Cart{}, &HTTPError{Status: http.StatusNotFound, Message: "item not in cart", Kind: ErrItemNotInCart}
	}
	cart.Items[idx].Quantity = in.Quantity

	return u.recalculateAndSave(ctx, &cart)
}

// ClearCart は明細と金額を0にする（何度呼んでも同じ）。
func (u *CartUsecase) ClearCart(ctx context.Context, userID int64) (model.Cart, error) {
	if userID <= 0 {
		return model.Cart{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cart, err := u.carts.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return model.Cart{}, dbError(err)
	}

	cart.Clear(u.clock.Now())
	if err := u.carts.Save(ctx, &cart); err != nil {
		return model.Cart{}, dbError(err)
	}
	return cart, nil
}

// ApplyCoupon はクーポンコードを設定する。割引額は CouponPolicy が決める。
func (u *CartUsecase) ApplyCoupon(ctx context.Context, userID int64, code string) (model.Cart, error) {
	if userID <= 0 {
		return model.Cart{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return model.Cart{}, validationError("coupon code is required")
	}

	cart, err := u.carts.FindByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Cart{}, validationError("cart not found")
	}
	if err != nil {
		return model.Cart{}, dbError(err)
	}

	cart.CouponCode = code
	return u.recalculateAndSave(ctx, &cart)
}

// RemoveCoupon はクーポンを外す。
func (u *CartUsecase) RemoveCoupon(ctx context.Context, userID int64) (model.Cart, error) {
	if userID <= 0 {
		return model.Cart{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cart, err := u.carts.FindByUserID(ctx, userID)
	if err != nil {
		return model.Cart{}, lookupError(err, "cart not found")
	}

	cart.CouponCode = ""
	return u.recalculateAndSave(ctx, &cart)
}

func (u *CartUsecase) recalculateAndSave(ctx context.Context, cart *model.Cart) (model.Cart, error) {
	if err := u.recalculate(ctx, cart); err != nil {
		return model.Cart{}, err
	}
	if err := u.carts.Save(ctx, cart); err != nil {
		return model.Cart{}, dbError(err)
	}
	return *cart, nil
}

// recalculate は明細ごとに商品の現在価格を取り直して金額を組み立てる。
// 明細の Price も現在価格に揃え、変わっていれば PriceChanged を立てる。
// 商品が削除されていた明細は落とす。
func (u *CartUsecase) recalculate(ctx context.Context, cart *model.Cart) error {
	items := make([]model.CartItem, 0, len(cart.Items))
	lines := make([]pricing.Line, 0, len(cart.Items))

	for _, it := range cart.Items {
		p, err := u.products.FindByID(ctx, it.ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			continue
		}
		if err != nil {
			return dbError(err)
		}

		it.PriceChanged = !it.Price.IsZero() && !it.Price.Equal(p.Price)
		it.Price = p.Price
		product := p
		it.Product = &product

		items = append(items, it)
		lines = append(lines, pricing.Line{UnitPrice: p.Price, Quantity: it.Quantity})
	}

	totals := pricing.Calculate(lines, cart.Shipping, cart.CouponCode, u.coupons)

	cart.Items = items
	cart.Subtotal = totals.Subtotal
	cart.Tax = totals.Tax
	cart.Shipping = totals.Shipping
	cart.Discount = totals.Discount
	cart.Total = totals.Total
	cart.LastUpdated = u.clock.Now()
	return nil
}
