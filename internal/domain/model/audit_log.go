package model

import "time"

// 管理者操作の種類
type AuditAction string

const (
	AuditActionUpdateStock         AuditAction = "UPDATE_STOCK"
	AuditActionUpdateOrderStatus   AuditAction = "UPDATE_ORDER_STATUS"
	AuditActionUpdateOrderTracking AuditAction = "UPDATE_ORDER_TRACKING"
	AuditActionUpdatePayment       AuditAction = "UPDATE_PAYMENT"
	AuditActionUpdateUser          AuditAction = "UPDATE_USER"
	AuditActionDeleteProduct       AuditAction = "DELETE_PRODUCT"
	AuditActionModerateReview      AuditAction = "MODERATE_REVIEW"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceProduct AuditResourceType = "product"
	AuditResourceOrder   AuditResourceType = "order"
	AuditResourceUser    AuditResourceType = "user"
	AuditResourceReview  AuditResourceType = "review"
)

// 監査ログ（管理者操作ログ）。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID           int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorUserID  int64             `gorm:"not null;index" json:"actorUserId"`
	Action       AuditAction       `gorm:"type:varchar(50);not null;index" json:"action"`
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resourceType"`
	ResourceID   int64             `gorm:"not null;index" json:"resourceId"`
	BeforeJSON   string            `gorm:"type:text" json:"before"`
	AfterJSON    string            `gorm:"type:text" json:"after"`
	CreatedAt    time.Time         `gorm:"not null;index" json:"createdAt"`
}
