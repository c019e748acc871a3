package model

import "time"

type Wishlist struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64          `gorm:"not null;uniqueIndex" json:"userId"`
	Items     []WishlistItem `gorm:"foreignKey:WishlistID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}

type WishlistItem struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	WishlistID int64     `gorm:"not null;uniqueIndex:ux_wishlist_product" json:"-"`
	ProductID  int64     `gorm:"not null;uniqueIndex:ux_wishlist_product" json:"productId"`
	Product    *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	AddedAt    time.Time `gorm:"not null" json:"addedAt"`
}

func (w *Wishlist) Has(productID int64) bool {
	for _, it := range w.Items {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}
