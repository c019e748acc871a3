package repository

import (
	"context"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/domain/model"
)

// カートは明細ごと1つの集約として読み書きする
type CartRepository interface {
	// 明細付きで取得。無ければ ErrNotFound
	FindByUserID(ctx context.Context, userID int64) (model.Cart, error)
	// トランザクション内で行ロックを取って取得
	FindByUserIDForUpdate(ctx context.Context, userID int64) (model.Cart, error)
	GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error)
	// 金額列を更新し、明細を丸ごと置き換える
	Save(ctx context.Context, cart *model.Cart) error
}

type WishlistRepository interface {
	GetOrCreateByUserID(ctx context.Context, userID int64) (model.Wishlist, error)
	// 既にあれば何もしない
	AddItem(ctx context.Context, wishlistID int64, productID int64) error
	RemoveItem(ctx context.Context, wishlistID int64, productID int64) error
	Clear(ctx context.Context, wishlistID int64) error
}
