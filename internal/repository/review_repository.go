package repository

import (
	"context"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/domain/model"
	"github.com/shopspring/decimal"
)

type ReviewListFilter struct {
	Page      int
	Limit     int
	ProductID *int64
	Status    string
}

type ReviewRepository interface {
	Create(ctx context.Context, r *model.Review) error
	FindByID(ctx context.Context, id int64) (model.Review, error)
	Update(ctx context.Context, r *model.Review) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f ReviewListFilter) ([]model.Review, int64, error)
	ListFeatured(ctx context.Context, limit int) ([]model.Review, error)
	// 承認済みレビューの平均と件数
	RatingStats(ctx context.Context, productID int64) (decimal.Decimal, int64, error)
}
