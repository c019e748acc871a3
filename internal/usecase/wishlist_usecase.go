package usecase

import (
	"context"
	"net/http"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/domain/model"
	repo "github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/repository"
)

type WishlistUsecase struct {
	wishlists repo.WishlistRepository
	products  repo.ProductRepository
	carts     *CartUsecase
}

func NewWishlistUsecase(wishlists repo.WishlistRepository, products repo.ProductRepository, carts *CartUsecase) *WishlistUsecase {
	return &WishlistUsecase{wishlists: wishlists, products: products, carts: carts}
}

func (u *WishlistUsecase) Get(ctx context.Context, userID int64) (model.Wishlist, error) {
	if userID <= 0 {
		return model.Wishlist{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	w, err := u.wishlists.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return model.Wishlist{}, dbError(err)
	}
	return w, nil
}

// Add は商品の存在を確認して追加。既にあれば何もしない。
func (u *WishlistUsecase) Add(ctx context.Context, userID int64, productID int64) (model.Wishlist, error) {
	if userID <= 0 {
		return model.Wishlist{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return model.Wishlist{}, validationError("productId is required")
	}
	if _, err := u.products.FindByID(ctx, productID); err != nil {
		return model.Wishlist{}, lookupError(err, "product not found")
	}

	w, err := u.wishlists.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return model.Wishlist{}, dbError(err)
	}
	if !w.Has(productID) {
		if err := u.wishlists.AddItem(ctx, w.ID, productID); err != nil {
			return model.Wishlist{}, dbError(err)
		}
	}
	return u.Get(ctx, userID)
}

func (u *WishlistUsecase) Remove(ctx context.Context, userID int64, productID int64) (model.Wishlist, error) {
	if userID <= 0 {
		return model.Wishlist{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return model.Wishlist{}, validationError("productId is required")
	}

	w, err := u.wishlists.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return model.Wishlist{}, dbError(err)
	}
	if err := u.wishlists.RemoveItem(ctx, w.ID, productID); err != nil {
		return model.Wishlist{}, dbError(err)
	}
	return u.Get(ctx, userID)
}

func (u *WishlistUsecase) Clear(ctx context.Context, userID int64) (model.Wishlist, error) {
	if userID <= 0 {
		return model.Wishlist{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	w, err := u.wishlists.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return model.Wishlist{}, dbError(err)
	}
	if err := u.wishlists.Clear(ctx, w.ID); err != nil {
		return model.Wishlist{}, dbError(err)
	}
	w.Items = []model.WishlistItem{}
	return w, nil
}

// MoveToCart はカートに1点追加してからほしい物リストから外す。
// カート追加に失敗したらリストはそのまま。
func (u *WishlistUsecase) MoveToCart(ctx context.Context, userID int64, productID int64) (model.Cart, error) {
	cart, err := u.carts.AddItem(ctx, userID, AddCartInput{ProductID: productID, Quantity: 1})
	if err != nil {
		return model.Cart{}, err
	}

	if _, err := u.Remove(ctx, userID, productID); err != nil {
		return model.Cart{}, err
	}
	return cart, nil
}
