package repository

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/domain/model"
	repo "github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/repository"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// 検索/カテゴリ/価格帯/ソート/ページング付きで返す。
func (r *ProductGormRepository) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Product{})

	if len(q.Statuses) > 0 {
		tx = tx.Where("status IN ?", q.Statuses)
	}

	// q は name / brand を対象
	if s := strings.TrimSpace(q.Q); s != "" {
		like := "%" + s + "%"
		tx = tx.Where("name ILIKE ? OR brand ILIKE ?", like, like)
	}

	if q.CategoryID != nil {
		tx = tx.Where("category_id = ?", *q.CategoryID)
	}

	//価格帯
	if q.MinPrice != nil {
		tx = tx.Where("price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		tx = tx.Where("price <= ?", *q.MaxPrice)
	}

	//total（件数）
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	//sort
	switch q.Sort {
	case "price_asc":
		tx = tx.Order("price asc").Order("id asc")
	case "price_desc":
		tx = tx.Order("price desc").Order("id desc")
	case "rating":
		tx = tx.Order("rating_average desc").Order("rating_count desc").Order("id desc")
	default:
		tx = tx.Order("created_at desc").Order("id desc")
	}

	products := []model.Product{}
	offset := (q.Page - 1) * q.Limit
	if err := tx.Preload("Category").Offset(offset).Limit(q.Limit).Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// エクスポート用
func (r *ProductGormRepository) ListAll(ctx context.Context) ([]model.Product, error) {
	products := []model.Product{}
	if err := r.db.WithContext(ctx).Preload("Category").Order("id asc").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// IDで商品を取得
func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).Preload("Category").First(&p, id).Error; err != nil {
		return model.Product{}, mapError(err)
	}
	return p, nil
}

func (r *ProductGormRepository) FindBySlug(ctx context.Context, slug string) (model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).Preload("Category").Where("slug = ?", slug).First(&p).Error; err != nil {
		return model.Product{}, mapError(err)
	}
	return p, nil
}

// slug / sku 重複は ErrDuplicate
func (r *ProductGormRepository) Create(ctx context.Context, p *model.Product) error {
	return mapError(r.db.WithContext(ctx).Omit("Category").Create(p).Error)
}

// 商品の更新（在庫・評価・画像は専用メソッドで更新する）
func (r *ProductGormRepository) Update(ctx context.Context, p *model.Product) error {
	return affected(r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", p.ID).Updates(map[string]any{
		"category_id":      p.CategoryID,
		"name":             p.Name,
		"slug":             p.Slug,
		"brand":            p.Brand,
		"size":             p.Size,
		"condition":        p.Condition,
		"description":      p.Description,
		"price":            p.Price,
		"compare_at_price": p.CompareAtPrice,
		"status":           p.Status,
		"updated_at":       p.UpdatedAt,
	}))
}

// 商品削除（deleted_at を立てる）
func (r *ProductGormRepository) SoftDelete(ctx context.Context, id int64) error {
	return affected(r.db.WithContext(ctx).Delete(&model.Product{}, id))
}

func (r *ProductGormRepository) UpdateRating(ctx context.Context, productID int64, average decimal.Decimal, count int64) error {
	return affected(r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", productID).Updates(map[string]any{
		"rating_average": average,
		"rating_count":   count,
	}))
}

func (r *ProductGormRepository) UpdateImages(ctx context.Context, productID int64, imageURL, thumbnailURL string) error {
	return affected(r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", productID).Updates(map[string]any{
		"image_url":     imageURL,
		"thumbnail_url": thumbnailURL,
	}))
}
