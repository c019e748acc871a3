package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductStatus string

const (
	ProductStatusDraft        ProductStatus = "draft"
	ProductStatusActive       ProductStatus = "active"
	ProductStatusInactive     ProductStatus = "inactive"
	ProductStatusDiscontinued ProductStatus = "discontinued"
)

func (s ProductStatus) Valid() bool {
	switch s {
	case ProductStatusDraft, ProductStatusActive, ProductStatusInactive, ProductStatusDiscontinued:
		return true
	}
	return false
}

type Category struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"type:varchar(120);uniqueIndex;not null" json:"name"`
	Slug        string    `gorm:"type:varchar(140);uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	IsActive    bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}

// 一点物なので stock は基本 0 か 1
type Product struct {
	ID             int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	CategoryID     int64           `gorm:"not null;index" json:"categoryId"`
	Category       *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Name           string          `gorm:"type:varchar(255);not null" json:"name"`
	Slug           string          `gorm:"type:varchar(280);uniqueIndex;not null" json:"slug"`
	SKU            string          `gorm:"column:sku;type:varchar(40);uniqueIndex;not null" json:"sku"`
	Brand          string          `gorm:"type:varchar(120)" json:"brand"`
	Size           string          `gorm:"type:varchar(20)" json:"size"`
	Condition      string          `gorm:"type:varchar(40)" json:"condition"`
	Description    string          `gorm:"type:text" json:"description"`
	Price          decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	CompareAtPrice decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"compareAtPrice"`
	Stock          int64           `gorm:"not null;default:1" json:"stock"`
	Status         ProductStatus   `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	ImageURL       string          `gorm:"type:varchar(500)" json:"imageUrl"`
	ThumbnailURL   string          `gorm:"type:varchar(500)" json:"thumbnailUrl"`
	RatingAverage  decimal.Decimal `gorm:"type:numeric(3,2);not null;default:0" json:"ratingAverage"`
	RatingCount    int64           `gorm:"not null;default:0" json:"ratingCount"`
	CreatedAt      time.Time       `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time       `gorm:"not null;autoUpdateTime" json:"updatedAt"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`
}

// 公開中（購入可能）か
func (p *Product) IsPurchasable() bool {
	return p.Status == ProductStatusActive
}
