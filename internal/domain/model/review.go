package model

import "time"

type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
)

func (s ReviewStatus) Valid() bool {
	switch s {
	case ReviewStatusPending, ReviewStatusApproved, ReviewStatusRejected:
		return true
	}
	return false
}

// ProductID が nil のレビューはストアレビュー（トップページ用）
type Review struct {
	ID         int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID  *int64       `gorm:"index" json:"productId"`
	UserID     int64        `gorm:"not null;index" json:"userId"`
	AuthorName string       `gorm:"type:varchar(120);not null" json:"authorName"`
	Rating     int          `gorm:"not null" json:"rating"`
	Title      string       `gorm:"type:varchar(200)" json:"title"`
	Comment    string       `gorm:"type:text;not null" json:"comment"`
	Status     ReviewStatus `gorm:"type:varchar(20);not null;default:'approved';index" json:"status"`
	IsFeatured bool         `gorm:"not null;default:false;index" json:"isFeatured"`
	CreatedAt  time.Time    `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time    `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}
