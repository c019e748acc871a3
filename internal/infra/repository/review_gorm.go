package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/domain/model"
	repo "github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/repository"
)

type ReviewGormRepository struct {
	db *gorm.DB
}

func NewReviewGormRepository(db *gorm.DB) *ReviewGormRepository {
	return &ReviewGormRepository{db: db}
}

func (r *ReviewGormRepository) Create(ctx context.Context, rv *model.Review) error {
	return mapError(r.db.WithContext(ctx).Create(rv).Error)
}

func (r *ReviewGormRepository) FindByID(ctx context.Context, id int64) (model.Review, error) {
	var rv model.Review
	if err := r.db.WithContext(ctx).First(&rv, id).Error; err != nil {
		return model.Review{}, mapError(err)
	}
	return rv, nil
}

// ステータスと featured のみ
func (r *ReviewGormRepository) Update(ctx context.Context, rv *model.Review) error {
	return affected(r.db.WithContext(ctx).Model(&model.Review{}).Where("id = ?", rv.ID).Updates(map[string]any{
		"status":      rv.Status,
		"is_featured": rv.IsFeatured,
	}))
}

func (r *ReviewGormRepository) Delete(ctx context.Context, id int64) error {
	return affected(r.db.WithContext(ctx).Delete(&model.Review{}, id))
}

func (r *ReviewGormRepository) List(ctx context.Context, f repo.ReviewListFilter) ([]model.Review, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Review{})
	if f.ProductID != nil {
		q = q.Where("product_id = ?", *f.ProductID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	reviews := []model.Review{}
	offset := (f.Page - 1) * f.Limit
	if err := q.Order("created_at desc, id desc").Limit(f.Limit).Offset(offset).Find(&reviews).Error; err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

// 承認済みかつ featured のもの
func (r *ReviewGormRepository) ListFeatured(ctx context.Context, limit int) ([]model.Review, error) {
	reviews := []model.Review{}
	err := r.db.WithContext(ctx).
		Where("is_featured = ? AND status = ?", true, model.ReviewStatusApproved).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

type ratingRow struct {
	Average decimal.NullDecimal
	Count   int64
}

// 承認済みレビューの平均と件数。0件なら (0, 0)。
func (r *ReviewGormRepository) RatingStats(ctx context.Context, productID int64) (decimal.Decimal, int64, error) {
	var row ratingRow
	err := r.db.WithContext(ctx).
		Model(&model.Review{}).
		Select("AVG(rating) AS average, COUNT(*) AS count").
		Where("product_id = ? AND status = ?", productID, model.ReviewStatusApproved).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, 0, err
	}
	if !row.Average.Valid {
		return decimal.Zero, row.Count, nil
	}
	return row.Average.Decimal, row.Count, nil
}
