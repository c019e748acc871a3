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

type WishlistGormRepository struct {
	db *gorm.DB
}

func NewWishlistGormRepository(db *gorm.DB) *WishlistGormRepository {
	return &WishlistGormRepository{db: db}
}

func (r *WishlistGormRepository) GetOrCreateByUserID(ctx context.Context, userID int64) (model.Wishlist, error) {
	var w model.Wishlist
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("added_at desc") }).
		Preload("Items.Product").
		Where("user_id = ?", userID).
		First(&w).Error
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Wishlist{}, err
	}

	w = model.Wishlist{UserID: userID, Items: []model.WishlistItem{}}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&w).Error; err != nil {
		if errors.Is(mapError(err), repo.ErrDuplicate) {
			return r.GetOrCreateByUserID(ctx, userID)
		}
		return model.Wishlist{}, err
	}
	return w, nil
}

// 既にあれば何もしない（ON CONFLICT DO NOTHING）
func (r *WishlistGormRepository) AddItem(ctx context.Context, wishlistID int64, productID int64) error {
	item := model.WishlistItem{
		WishlistID: wishlistID,
		ProductID:  productID,
		AddedAt:    time.Now(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit("Product").
		Create(&item).Error
}

func (r *WishlistGormRepository) RemoveItem(ctx context.Context, wishlistID int64, productID int64) error {
	return r.db.WithContext(ctx).
		Where("wishlist_id = ? AND product_id = ?", wishlistID, productID).
		Delete(&model.WishlistItem{}).Error
}

func (r *WishlistGormRepository) Clear(ctx context.Context, wishlistID int64) error {
	return r.db.WithContext(ctx).
		Where("wishlist_id = ?", wishlistID).
		Delete(&model.WishlistItem{}).Error
}
