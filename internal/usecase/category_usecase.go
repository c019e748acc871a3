package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/domain/model"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/pkg/slug"
	repo "github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/repository"
)

type CategoryUsecase struct {
	categories repo.CategoryRepository
}

func NewCategoryUsecase(categories repo.CategoryRepository) *CategoryUsecase {
	return &CategoryUsecase{categories: categories}
}

type CategoryInput struct {
	Name        string
	Description string
	IsActive    *bool
}

// List は公開用なら有効なものだけ。
func (u *CategoryUsecase) List(ctx context.Context, activeOnly bool) ([]model.Category, error) {
	cs, err := u.categories.List(ctx, activeOnly)
	if err != nil {
		return nil, dbError(err)
	}
	return cs, nil
}

func (u *CategoryUsecase) Create(ctx context.Context, in CategoryInput) (model.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Category{}, validationError("name required")
	}
	s := slug.Make(name)
	if s == "" {
		return model.Category{}, validationError("invalid name")
	}

	c := model.Category{
		Name:        name,
		Slug:        s,
		Description: strings.TrimSpace(in.Description),
		IsActive:    true,
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}

	if err := u.categories.Create(ctx, &c); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return model.Category{}, conflictError("category already exists")
		}
		return model.Category{}, dbError(err)
	}
	return c, nil
}

func (u *CategoryUsecase) Update(ctx context.Context, id int64, in CategoryInput) (model.Category, error) {
	if id <= 0 {
		return model.Category{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	c, err := u.categories.FindByID(ctx, id)
	if err != nil {
		return model.Category{}, lookupError(err, "category not found")
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		c.Name = name
		c.Slug = slug.Make(name)
	}
	if in.Description != "" {
		c.Description = strings.TrimSpace(in.Description)
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}

	if err := u.categories.Update(ctx, &c); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return model.Category{}, conflictError("category already exists")
		}
		return model.Category{}, lookupError(err, "category not found")
	}
	return c, nil
}
