package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/domain/model"
	repo "github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/repository"
)

type reviewFixture struct {
	reviews  *MockReviewRepository
	products *MockProductRepository
	users    *MockUserRepository
	audit    *MockAuditLogRepository
	uc       *ReviewUsecase
}

func newReviewFixture() *reviewFixture {
	f := &reviewFixture{
		reviews:  new(MockReviewRepository),
		products: new(MockProductRepository),
		users:    new(MockUserRepository),
		audit:    new(MockAuditLogRepository),
	}
	f.uc = NewReviewUsecase(ReviewDeps{
		Reviews:   f.reviews,
		Products:  f.products,
		Users:     f.users,
		AuditLogs: f.audit,
		Clock:     fixedClock{t: testNow},
	})
	return f
}

func ptrInt64(v int64) *int64 { return &v }

func TestReviewUsecase_Create_RefreshesRating(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture()

	f.products.On("FindByID", ctx, int64(10)).Return(activeProduct(10, "150.00", 1), nil)
	f.users.On("FindByID", ctx, int64(1)).Return(&model.User{ID: 1, Name: "Dana"}, nil)
	f.reviews.On("Create", ctx, mock.MatchedBy(func(r *model.Review) bool {
		return r.AuthorName == "Dana" && r.Rating == 5 && r.Status == model.ReviewStatusApproved
	})).Return(nil)
	f.reviews.On("RatingStats", ctx, int64(10)).Return(dec("4.666"), int64(3), nil)
	f.products.On("UpdateRating", ctx, int64(10), decEq("4.67"), int64(3)).Return(nil)

	r, err := f.uc.Create(ctx, 1, CreateReviewInput{ProductID: ptrInt64(10), Rating: 5, Comment: " great pair "})

	require.NoError(t, err)
	assert.Equal(t, "great pair", r.Comment)
	f.products.AssertExpectations(t)
}

func TestReviewUsecase_Create_StoreReviewSkipsRating(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture()

	f.users.On("FindByID", ctx, int64(1)).Return(&model.User{ID: 1, Name: "Dana"}, nil)
	f.reviews.On("Create", ctx, mock.Anything).Return(nil)

	_, err := f.uc.Create(ctx, 1, CreateReviewInput{Rating: 4, Comment: "fast shipping"})

	require.NoError(t, err)
	f.reviews.AssertNotCalled(t, "RatingStats", mock.Anything, mock.Anything)
}

func TestReviewUsecase_Create_Validation(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture()

	_, err := f.uc.Create(ctx, 1, CreateReviewInput{Rating: 0, Comment: "x"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.uc.Create(ctx, 1, CreateReviewInput{Rating: 6, Comment: "x"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.uc.Create(ctx, 1, CreateReviewInput{Rating: 3, Comment: "  "})
	assert.ErrorIs(t, err, ErrValidation)

	f.products.On("FindByID", ctx, int64(99)).Return(model.Product{}, repo.ErrNotFound)
	_, err = f.uc.Create(ctx, 1, CreateReviewInput{ProductID: ptrInt64(99), Rating: 3, Comment: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.uc.Create(ctx, 0, CreateReviewInput{Rating: 3, Comment: "x"})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestReviewUsecase_Create_RatingFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture()

	f.products.On("FindByID", ctx, int64(10)).Return(activeProduct(10, "150.00", 1), nil)
	f.users.On("FindByID", ctx, int64(1)).Return(&model.User{ID: 1, Name: "Dana"}, nil)
	f.reviews.On("Create", ctx, mock.Anything).Return(nil)
	f.reviews.On("RatingStats", ctx, int64(10)).Return(decimal.Zero, int64(0), errors.New("timeout"))

	_, err := f.uc.Create(ctx, 1, CreateReviewInput{ProductID: ptrInt64(10), Rating: 5, Comment: "ok"})
	require.NoError(t, err)
}

func TestReviewUsecase_ListForProduct_ApprovedOnly(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture()

	f.reviews.On("List", ctx, mock.MatchedBy(func(rf repo.ReviewListFilter) bool {
		return rf.Status == "approved" && rf.ProductID != nil && *rf.ProductID == 10 && rf.Limit == 20
	})).Return([]model.Review{{ID: 1}}, int64(1), nil)

	items, meta, err := f.uc.ListForProduct(ctx, 10, 0, 0)

	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, meta.Page)
}

func TestReviewUsecase_ListFeatured_CapsLimit(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture()
	f.reviews.On("ListFeatured", ctx, 20).Return([]model.Review{}, nil).Twice()

	_, err := f.uc.ListFeatured(ctx, 500)
	require.NoError(t, err)
	_, err = f.uc.ListFeatured(ctx, 0)
	require.NoError(t, err)
	f.reviews.AssertExpectations(t)
}

func TestReviewUsecase_Moderate(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture()

	f.reviews.On("FindByID", ctx, int64(5)).Return(model.Review{ID: 5, ProductID: ptrInt64(10), Status: model.ReviewStatusApproved}, nil)
	f.reviews.On("Update", ctx, mock.Anything).Return(nil)
	f.audit.On("Create", ctx, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionModerateReview &&
			l.BeforeJSON == `{"status":"approved","isFeatured":false}` &&
			l.AfterJSON == `{"status":"rejected","isFeatured":true}`
	})).Return(nil)
	f.reviews.On("RatingStats", ctx, int64(10)).Return(decimal.Zero, int64(0), nil)
	f.products.On("UpdateRating", ctx, int64(10), mock.Anything, int64(0)).Return(nil)

	status := "rejected"
	featured := true
	r, err := f.uc.Moderate(ctx, 9, 5, ModerateReviewInput{Status: &status, IsFeatured: &featured})

	require.NoError(t, err)
	assert.Equal(t, model.ReviewStatusRejected, r.Status)
	assert.True(t, r.IsFeatured)
	f.audit.AssertExpectations(t)

	bad := "hidden"
	_, err = f.uc.Moderate(ctx, 9, 5, ModerateReviewInput{Status: &bad})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestReviewUsecase_Delete(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture()

	f.reviews.On("FindByID", ctx, int64(5)).Return(model.Review{ID: 5}, nil)
	f.reviews.On("Delete", ctx, int64(5)).Return(nil)
	f.reviews.On("FindByID", ctx, int64(6)).Return(model.Review{}, repo.ErrNotFound)

	require.NoError(t, f.uc.Delete(ctx, 9, 5))
	assert.ErrorIs(t, f.uc.Delete(ctx, 9, 6), ErrNotFound)
}
