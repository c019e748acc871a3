package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/domain/model"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/pkg/pagination"
	repo "github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/repository"
)

// トップページに出す件数の上限
const maxFeaturedReviews = 20

type ReviewUsecase struct {
	reviews  repo.ReviewRepository
	products repo.ProductRepository
	users    repo.UserRepository
	audit    repo.AuditLogRepository
	clock    Clock
	log      *slog.Logger
}

type ReviewDeps struct {
	Reviews   repo.ReviewRepository
	Products  repo.ProductRepository
	Users     repo.UserRepository
	AuditLogs repo.AuditLogRepository
	Clock     Clock
	Logger    *slog.Logger
}

func NewReviewUsecase(d ReviewDeps) *ReviewUsecase {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &ReviewUsecase{
		reviews:  d.Reviews,
		products: d.Products,
		users:    d.Users,
		audit:    d.AuditLogs,
		clock:    d.Clock,
		log:      d.Logger,
	}
}

type CreateReviewInput struct {
	// nil ならストアレビュー
	ProductID *int64
	Rating    int
	Title     string
	Comment   string
}

type ModerateReviewInput struct {
	Status     *string
	IsFeatured *bool
}

// ListForProduct は承認済みのレビューだけを返す。
func (u *ReviewUsecase) ListForProduct(ctx context.Context, productID int64, page, limit int) ([]model.Review, pagination.Meta, error) {
	if productID <= 0 {
		return nil, pagination.Meta{}, validationError("invalid product id")
	}
	p := pagination.Normalize(page, limit)

	items, total, err := u.reviews.List(ctx, repo.ReviewListFilter{
		Page:      p.Page,
		Limit:     p.Limit,
		ProductID: &productID,
		Status:    string(model.ReviewStatusApproved),
	})
	if err != nil {
		return nil, pagination.Meta{}, dbError(err)
	}
	return items, pagination.NewMeta(p, total), nil
}

func (u *ReviewUsecase) ListFeatured(ctx context.Context, limit int) ([]model.Review, error) {
	if limit <= 0 || limit > maxFeaturedReviews {
		limit = maxFeaturedReviews
	}
	items, err := u.reviews.ListFeatured(ctx, limit)
	if err != nil {
		return nil, dbError(err)
	}
	return items, nil
}

// AdminList は全ステータスのレビュー一覧。
func (u *ReviewUsecase) AdminList(ctx context.Context, f repo.ReviewListFilter) ([]model.Review, pagination.Meta, error) {
	if f.Status != "" && !model.ReviewStatus(f.Status).Valid() {
		return nil, pagination.Meta{}, validationError("invalid status")
	}
	p := pagination.Normalize(f.Page, f.Limit)
	f.Page, f.Limit = p.Page, p.Limit

	items, total, err := u.reviews.List(ctx, f)
	if err != nil {
		return nil, pagination.Meta{}, dbError(err)
	}
	return items, pagination.NewMeta(p, total), nil
}

func (u *ReviewUsecase) Create(ctx context.Context, userID int64, in CreateReviewInput) (model.Review, error) {
	if userID <= 0 {
		return model.Review{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.Rating < 1 || in.Rating > 5 {
		return model.Review{}, validationError("rating must be between 1 and 5")
	}
	comment := strings.TrimSpace(in.Comment)
	if comment == "" {
		return model.Review{}, validationError("comment required")
	}
	if in.ProductID != nil {
		if *in.ProductID <= 0 {
			return model.Review{}, validationError("invalid product id")
		}
		if _, err := u.products.FindByID(ctx, *in.ProductID); err != nil {
			return model.Review{}, lookupError(err, "product not found")
		}
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return model.Review{}, lookupError(err, "user not found")
	}

	r := model.Review{
		ProductID:  in.ProductID,
		UserID:     userID,
		AuthorName: user.Name,
		Rating:     in.Rating,
		Title:      strings.TrimSpace(in.Title),
		Comment:    comment,
		Status:     model.ReviewStatusApproved,
	}
	if err := u.reviews.Create(ctx, &r); err != nil {
		return model.Review{}, dbError(err)
	}

	u.refreshRating(ctx, r.ProductID)
	return r, nil
}

// Moderate はステータスと featured を変更する。
func (u *ReviewUsecase) Moderate(ctx context.Context, actorID int64, reviewID int64, in ModerateReviewInput) (model.Review, error) {
	if actorID <= 0 {
		return model.Review{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if reviewID <= 0 {
		return model.Review{}, validationError("invalid id")
	}

	r, err := u.reviews.FindByID(ctx, reviewID)
	if err != nil {
		return model.Review{}, lookupError(err, "review not found")
	}
	before := fmt.Sprintf(`{"status":%q,"isFeatured":%t}`, r.Status, r.IsFeatured)

	if in.Status != nil {
		s := model.ReviewStatus(*in.Status)
		if !s.Valid() {
			return model.Review{}, validationError("invalid status")
		}
		r.Status = s
	}
	if in.IsFeatured != nil {
		r.IsFeatured = *in.IsFeatured
	}

	if err := u.reviews.Update(ctx, &r); err != nil {
		return model.Review{}, lookupError(err, "review not found")
	}

	if err := u.audit.Create(ctx, model.AuditLog{
		ActorUserID:  actorID,
		Action:       model.AuditActionModerateReview,
		ResourceType: model.AuditResourceReview,
		ResourceID:   r.ID,
		BeforeJSON:   before,
		AfterJSON:    fmt.Sprintf(`{"status":%q,"isFeatured":%t}`, r.Status, r.IsFeatured),
		CreatedAt:    u.clock.Now(),
	}); err != nil {
		return model.Review{}, dbError(err)
	}

	u.refreshRating(ctx, r.ProductID)
	return r, nil
}

func (u *ReviewUsecase) Delete(ctx context.Context, actorID int64, reviewID int64) error {
	if actorID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if reviewID <= 0 {
		return validationError("invalid id")
	}

	r, err := u.reviews.FindByID(ctx, reviewID)
	if err != nil {
		return lookupError(err, "review not found")
	}
	if err := u.reviews.Delete(ctx, reviewID); err != nil {
		return lookupError(err, "review not found")
	}

	u.refreshRating(ctx, r.ProductID)
	return nil
}

// refreshRating は承認済みレビューから商品の平均・件数を再計算する。
// 失敗してもレビュー操作自体は成功扱い（次の操作で揃う）。
func (u *ReviewUsecase) refreshRating(ctx context.Context, productID *int64) {
	if productID == nil {
		return
	}
	avg, count, err := u.reviews.RatingStats(ctx, *productID)
	if err == nil {
		err = u.products.UpdateRating(ctx, *productID, avg.Round(2), count)
	}
	if err != nil {
		u.log.WarnContext(ctx, "rating refresh failed",
			slog.Int64("product_id", *productID),
			slog.Any("error", err),
		)
	}
}
