package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/domain/model"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/pkg/pagination"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/pkg/slug"
	repo "github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/repository"
)

// サムネイル幅(px)
const thumbnailWidth = 400

// 画像アップロードの上限
const maxImageBytes = 10 << 20

type ProductUsecase struct {
	productRepo   repo.ProductRepository
	categoryRepo  repo.CategoryRepository
	inventoryRepo repo.InventoryRepository
	auditRepo     repo.AuditLogRepository
	skus          SKUGenerator
	storage       Storage
	images        ImageProcessor
	clock         Clock
}

type ProductDeps struct {
	Products   repo.ProductRepository
	Categories repo.CategoryRepository
	Inventory  repo.InventoryRepository
	AuditLogs  repo.AuditLogRepository
	SKUs       SKUGenerator
	Storage    Storage
	Images     ImageProcessor
	Clock      Clock
}

// DI
func NewProductUsecase(d ProductDeps) *ProductUsecase {
	return &ProductUsecase{
		productRepo:   d.Products,
		categoryRepo:  d.Categories,
		inventoryRepo: d.Inventory,
		auditRepo:     d.AuditLogs,
		skus:          d.SKUs,
		storage:       d.Storage,
		images:        d.Images,
		clock:         d.Clock,
	}
}

// GET /products の入力DTO
type ListProductsInput struct {
	Page       int
	Limit      int
	Q          string
	CategoryID *int64
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Sort       string
	// 管理画面のみ使う。空なら active のみ
	Status string
}

func (in ListProductsInput) validate() error {
	if len(in.Q) > 100 {
		return validationError("q too long")
	}
	if in.MinPrice != nil && in.MinPrice.IsNegative() {
		return validationError("min_price must be >= 0")
	}
	if in.MaxPrice != nil && in.MaxPrice.IsNegative() {
		return validationError("max_price must be >= 0")
	}
	if in.MinPrice != nil && in.MaxPrice != nil && in.MinPrice.GreaterThan(*in.MaxPrice) {
		return validationError("min_price must be <= max_price")
	}
	switch in.Sort {
	case "", "new", "price_asc", "price_desc", "rating":
	default:
		return validationError("invalid sort")
	}
	return nil
}

// ListPublicProducts は公開中の商品だけを返す。
func (u *ProductUsecase) ListPublicProducts(ctx context.Context, in ListProductsInput) ([]model.Product, pagination.Meta, error) {
	in.Status = string(model.ProductStatusActive)
	return u.list(ctx, in)
}

// AdminListProducts は全ステータスを対象にする（status で絞り込み可）。
func (u *ProductUsecase) AdminListProducts(ctx context.Context, in ListProductsInput) ([]model.Product, pagination.Meta, error) {
	if in.Status != "" && !model.ProductStatus(in.Status).Valid() {
		return nil, pagination.Meta{}, validationError("invalid status")
	}
	return u.list(ctx, in)
}

func (u *ProductUsecase) list(ctx context.Context, in ListProductsInput) ([]model.Product, pagination.Meta, error) {
	if err := in.validate(); err != nil {
		return nil, pagination.Meta{}, err
	}

	p := pagination.Normalize(in.Page, in.Limit)
	q := repo.ProductListQuery{
		Page:       p.Page,
		Limit:      p.Limit,
		Q:          strings.TrimSpace(in.Q),
		CategoryID: in.CategoryID,
		MinPrice:   in.MinPrice,
		MaxPrice:   in.MaxPrice,
		Sort:       in.Sort,
	}
	if in.Status != "" {
		q.Statuses = []model.ProductStatus{model.ProductStatus(in.Status)}
	}

	items, total, err := u.productRepo.List(ctx, q)
	if err != nil {
		return nil, pagination.Meta{}, dbError(err)
	}
	return items, pagination.NewMeta(p, total), nil
}

// GetProductDetail は id でも slug でも引ける。非公開は 404。
func (u *ProductUsecase) GetProductDetail(ctx context.Context, idOrSlug string) (model.Product, error) {
	idOrSlug = strings.TrimSpace(idOrSlug)
	if idOrSlug == "" {
		return model.Product{}, validationError("invalid product id")
	}

	var (
		p   model.Product
		err error
	)
	if id, convErr := strconv.ParseInt(idOrSlug, 10, 64); convErr == nil {
		if id <= 0 {
			return model.Product{}, validationError("invalid product id")
		}
		p, err = u.productRepo.FindByID(ctx, id)
	} else {
		p, err = u.productRepo.FindBySlug(ctx, idOrSlug)
	}
	if err != nil {
		return model.Product{}, lookupError(err, "product not found")
	}

	if !p.IsPurchasable() {
		return model.Product{}, notFoundError("product not found")
	}
	return p, nil
}

type AdminCreateProductInput struct {
	CategoryID     int64
	Name           string
	Slug           string
	Brand          string
	Size           string
	Condition      string
	Description    string
	Price          decimal.Decimal
	CompareAtPrice decimal.Decimal
	// nil なら 1（一点物）
	Stock  *int64
	Status string
}

func (u *ProductUsecase) AdminCreateProduct(ctx context.Context, adminUserID int64, in AdminCreateProductInput) (model.Product, error) {
	if adminUserID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Product{}, validationError("name required")
	}
	if in.Price.IsNegative() || in.CompareAtPrice.IsNegative() {
		return model.Product{}, validationError("price must be >= 0")
	}
	stock := int64(1)
	if in.Stock != nil {
		stock = *in.Stock
	}
	if stock < 0 {
		return model.Product{}, validationError("stock must be >= 0")
	}
	status := model.ProductStatusDraft
	if in.Status != "" {
		status = model.ProductStatus(in.Status)
	}
	if !status.Valid() {
		return model.Product{}, validationError("invalid status")
	}
	if err := u.ensureCategory(ctx, in.CategoryID); err != nil {
		return model.Product{}, err
	}

	s := slug.Make(in.Slug)
	if s == "" {
		s = slug.Make(name)
	}
	if s == "" {
		return model.Product{}, validationError("slug cannot be generated from name")
	}

	now := u.clock.Now()
	sku, err := u.skus.SKU(in.Brand, now)
	if err != nil {
		return model.Product{}, &HTTPError{Status: http.StatusInternalServerError, Message: "sku generation failed", Kind: ErrInternal, Err: err}
	}

	p := model.Product{
		CategoryID:     in.CategoryID,
		Name:           name,
		Slug:           s,
		SKU:            sku,
		Brand:          strings.TrimSpace(in.Brand),
		Size:           strings.TrimSpace(in.Size),
		Condition:      strings.TrimSpace(in.Condition),
		Description:    in.Description,
		Price:          in.Price.Round(2),
		CompareAtPrice: in.CompareAtPrice.Round(2),
		Stock:          stock,
		Status:         status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := u.productRepo.Create(ctx, &p); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return model.Product{}, conflictError("product slug already exists")
		}
		return model.Product{}, dbError(err)
	}
	return p, nil
}

// 部分更新。nil の項目は変更しない。
type AdminUpdateProductInput struct {
	CategoryID     *int64
	Name           *string
	Slug           *string
	Brand          *string
	Size           *string
	Condition      *string
	Description    *string
	Price          *decimal.Decimal
	CompareAtPrice *decimal.Decimal
	Status         *string
}

func (u *ProductUsecase) AdminUpdateProduct(ctx context.Context, adminUserID int64, productID int64, in AdminUpdateProductInput) (model.Product, error) {
	if adminUserID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return model.Product{}, validationError("invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err != nil {
		return model.Product{}, lookupError(err, "product not found")
	}

	if in.CategoryID != nil && *in.CategoryID != p.CategoryID {
		if err := u.ensureCategory(ctx, *in.CategoryID); err != nil {
			return model.Product{}, err
		}
		p.CategoryID = *in.CategoryID
		p.Category = nil
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return model.Product{}, validationError("name required")
		}
		p.Name = name
	}
	if in.Slug != nil {
		s := slug.Make(*in.Slug)
		if s == "" {
			return model.Product{}, validationError("invalid slug")
		}
		p.Slug = s
	}
	if in.Brand != nil {
		p.Brand = strings.TrimSpace(*in.Brand)
	}
	if in.Size != nil {
		p.Size = strings.TrimSpace(*in.Size)
	}
	if in.Condition != nil {
		p.Condition = strings.TrimSpace(*in.Condition)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return model.Product{}, validationError("price must be >= 0")
		}
		p.Price = in.Price.Round(2)
	}
	if in.CompareAtPrice != nil {
		if in.CompareAtPrice.IsNegative() {
			return model.Product{}, validationError("price must be >= 0")
		}
		p.CompareAtPrice = in.CompareAtPrice.Round(2)
	}
	if in.Status != nil {
		s := model.ProductStatus(*in.Status)
		if !s.Valid() {
			return model.Product{}, validationError("invalid status")
		}
		p.Status = s
	}

	p.UpdatedAt = u.clock.Now()
	if err := u.productRepo.Update(ctx, &p); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return model.Product{}, conflictError("product slug already exists")
		}
		return model.Product{}, lookupError(err, "product not found")
	}
	return p, nil
}

func (u *ProductUsecase) AdminDeleteProduct(ctx context.Context, adminUserID int64, productID int64) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return validationError("invalid product id")
	}

	if err := u.productRepo.SoftDelete(ctx, productID); err != nil {
		return lookupError(err, "product not found")
	}

	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminUserID,
		Action:       model.AuditActionDeleteProduct,
		ResourceType: model.AuditResourceProduct,
		ResourceID:   productID,
		BeforeJSON:   "{}",
		AfterJSON:    `{"deleted":true}`,
		CreatedAt:    u.clock.Now(),
	}); err != nil {
		return dbError(err)
	}
	return nil
}

func (u *ProductUsecase) AdminUpdateInventory(ctx context.Context, adminUserID int64, productID int64, newStock int64) (model.Product, error) {
	if adminUserID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return model.Product{}, validationError("invalid product id")
	}
	if newStock < 0 {
		return model.Product{}, validationError("stock must be >= 0")
	}

	//変更前の在庫（before）
	p, err := u.productRepo.FindByID(ctx, productID)
	if err != nil {
		return model.Product{}, lookupError(err, "product not found")
	}

	beforeJSON := fmt.Sprintf(`{"stock":%d}`, p.Stock)
	afterJSON := fmt.Sprintf(`{"stock":%d}`, newStock)

	if err := u.inventoryRepo.SetStock(ctx, productID, newStock); err != nil {
		return model.Product{}, lookupError(err, "product not found")
	}

	//「誰が」「何を」「どの対象に」「どう変えたか」を残す
	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminUserID,
		Action:       model.AuditActionUpdateStock,
		ResourceType: model.AuditResourceProduct,
		ResourceID:   productID,
		BeforeJSON:   beforeJSON,
		AfterJSON:    afterJSON,
		CreatedAt:    u.clock.Now(),
	}); err != nil {
		return model.Product{}, dbError(err)
	}

	p.Stock = newStock
	return p, nil
}

type UploadImageInput struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// AdminUploadImage は元画像と幅400pxのサムネイルを保存して URL を商品に設定する。
func (u *ProductUsecase) AdminUploadImage(ctx context.Context, adminUserID int64, productID int64, in UploadImageInput) (model.Product, error) {
	if adminUserID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return model.Product{}, validationError("invalid product id")
	}
	if !strings.HasPrefix(in.ContentType, "image/") {
		return model.Product{}, validationError("file must be an image")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err != nil {
		return model.Product{}, lookupError(err, "product not found")
	}

	raw, err := io.ReadAll(io.LimitReader(in.Body, maxImageBytes+1))
	if err != nil {
		return model.Product{}, validationError("cannot read upload")
	}
	if len(raw) > maxImageBytes {
		return model.Product{}, validationError("image too large")
	}

	thumb, thumbType, err := u.images.Thumbnail(bytes.NewReader(raw), thumbnailWidth)
	if err != nil {
		return model.Product{}, validationError("unsupported image")
	}

	base := fmt.Sprintf("products/%d/%s", p.ID, uuid.NewString())
	ext := strings.ToLower(path.Ext(in.Filename))

	imageURL, err := u.storage.Put(ctx, base+ext, bytes.NewReader(raw), in.ContentType)
	if err != nil {
		return model.Product{}, &HTTPError{Status: http.StatusInternalServerError, Message: "upload failed", Kind: ErrInternal, Err: err}
	}
	thumbURL, err := u.storage.Put(ctx, base+"_thumb.jpg", bytes.NewReader(thumb), thumbType)
	if err != nil {
		return model.Product{}, &HTTPError{Status: http.StatusInternalServerError, Message: "upload failed", Kind: ErrInternal, Err: err}
	}

	if err := u.productRepo.UpdateImages(ctx, p.ID, imageURL, thumbURL); err != nil {
		return model.Product{}, lookupError(err, "product not found")
	}

	p.ImageURL = imageURL
	p.ThumbnailURL = thumbURL
	return p, nil
}

func (u *ProductUsecase) ensureCategory(ctx context.Context, categoryID int64) error {
	if categoryID <= 0 {
		return validationError("categoryId is required")
	}
	if _, err := u.categoryRepo.FindByID(ctx, categoryID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return validationError("category not found")
		}
		return dbError(err)
	}
	return nil
}
