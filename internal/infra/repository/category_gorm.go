package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/domain/model"
)

type CategoryGormRepository struct {
	db *gorm.DB
}

func NewCategoryGormRepository(db *gorm.DB) *CategoryGormRepository {
	return &CategoryGormRepository{db: db}
}

func (r *CategoryGormRepository) List(ctx context.Context, activeOnly bool) ([]model.Category, error) {
	q := r.db.WithContext(ctx).Model(&model.Category{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}

	categories := []model.Category{}
	if err := q.Order("name asc").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoryGormRepository) FindByID(ctx context.Context, id int64) (model.Category, error) {
	var c model.Category
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return model.Category{}, mapError(err)
	}
	return c, nil
}

// FindBySlug はシード時の存在確認に使う。
func (r *CategoryGormRepository) FindBySlug(ctx context.Context, slug string) (model.Category, error) {
	var c model.Category
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&c).Error; err != nil {
		return model.Category{}, mapError(err)
	}
	return c, nil
}

// name / slug 重複は ErrDuplicate
func (r *CategoryGormRepository) Create(ctx context.Context, c *model.Category) error {
	return mapError(r.db.WithContext(ctx).Create(c).Error)
}

func (r *CategoryGormRepository) Update(ctx context.Context, c *model.Category) error {
	return affected(r.db.WithContext(ctx).Model(&model.Category{}).Where("id = ?", c.ID).Updates(map[string]any{
		"name":        c.Name,
		"slug":        c.Slug,
		"description": c.Description,
		"is_active":   c.IsActive,
	}))
}
