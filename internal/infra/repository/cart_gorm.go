package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/domain/model"
	repo "github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/repository"
)

type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

// ユーザーのカートを明細付きで取得
func (r *CartGormRepository) FindByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	return r.findByUserID(ctx, r.db.WithContext(ctx), userID)
}

// 注文作成時にカート行をロックして取得
func (r *CartGormRepository) FindByUserIDForUpdate(ctx context.Context, userID int64) (model.Cart, error) {
	return r.findByUserID(ctx, r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), userID)
}

func (r *CartGormRepository) findByUserID(ctx context.Context, q *gorm.DB, userID int64) (model.Cart, error) {
	var cart model.Cart
	if err := q.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return model.Cart{}, mapError(err)
	}
	items, err := r.listItems(ctx, cart.ID)
	if err != nil {
		return model.Cart{}, err
	}
	cart.Items = items
	return cart, nil
}

// 無ければ作る。同時作成で unique 違反になったら読み直す。
func (r *CartGormRepository) GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	cart, err := r.FindByUserID(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return model.Cart{}, err
	}

	newCart := model.Cart{UserID: userID, Items: []model.CartItem{}, LastUpdated: time.Now()}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&newCart).Error; err != nil {
		if errors.Is(mapError(err), repo.ErrDuplicate) {
			return r.FindByUserID(ctx, userID)
		}
		return model.Cart{}, err
	}
	return newCart, nil
}

// 金額列を更新し、明細を丸ごと置き換える
func (r *CartGormRepository) Save(ctx context.Context, cart *model.Cart) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Cart{}).
			Where("id = ?", cart.ID).
			Updates(map[string]any{
				"subtotal":     cart.Subtotal,
				"tax":          cart.Tax,
				"shipping":     cart.Shipping,
				"discount":     cart.Discount,
				"total":        cart.Total,
				"coupon_code":  cart.CouponCode,
				"last_updated": cart.LastUpdated,
			})
		if err := affected(res); err != nil {
			return err
		}

		//cart_itemsを全削除してから入れ直す
		if err := tx.Where("cart_id = ?", cart.ID).Delete(&model.CartItem{}).Error; err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return nil
		}

		for i := range cart.Items {
			cart.Items[i].ID = 0
			cart.Items[i].CartID = cart.ID
		}
		return tx.Omit("Product").Create(&cart.Items).Error
	})
}

// カート明細を商品付きで一覧取得
func (r *CartGormRepository) listItems(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	items := []model.CartItem{}
	if err := r.db.WithContext(ctx).
		Preload("Product").
		Where("cart_id = ?", cartID).
		Order("id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
