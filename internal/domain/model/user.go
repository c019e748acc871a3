package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleCustomer   Role = "customer"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super-admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// 管理画面を使えるロールか
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// 注文作成時に更新される集計値
type UserMetadata struct {
	TotalOrders       int64           `gorm:"not null;default:0" json:"totalOrders"`
	TotalSpent        decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"totalSpent"`
	AverageOrderValue decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"averageOrderValue"`
}

type User struct {
	ID            int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string       `gorm:"type:varchar(120);not null" json:"name"`
	Email         string       `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash  string       `gorm:"column:password_hash;not null" json:"-"`
	Phone         string       `gorm:"type:varchar(30)" json:"phone,omitempty"`
	Role          Role         `gorm:"type:varchar(20);not null;default:'customer';index" json:"role"`
	IsActive      bool         `gorm:"not null;default:true" json:"isActive"`
	TokenVersion  int          `gorm:"not null;default:0" json:"-"`
	LoginAttempts int          `gorm:"not null;default:0" json:"-"`
	LockUntil     *time.Time   `json:"-"`
	LastLoginAt   *time.Time   `json:"lastLoginAt,omitempty"`
	Metadata      UserMetadata `gorm:"embedded;embeddedPrefix:meta_" json:"metadata"`
	CreatedAt     time.Time    `gorm:"not null" json:"createdAt"`
	UpdatedAt     time.Time    `gorm:"not null" json:"updatedAt"`
}

// IsLocked はロック期間中かどうかを返す。
func (u *User) IsLocked(now time.Time) bool {
	return u.LockUntil != nil && u.LockUntil.After(now)
}

// RecordOrder は注文1件分を集計に足す。
func (m *UserMetadata) RecordOrder(total decimal.Decimal) {
	m.TotalOrders++
	m.TotalSpent = m.TotalSpent.Add(total)
	m.AverageOrderValue = m.TotalSpent.DivRound(decimal.NewFromInt(m.TotalOrders), 2)
}
