package repository

import (
	"gorm.io/gorm"
)

// 明細は登録順
func orderItemsScope(db *gorm.DB) *gorm.DB {
	return db.Order("order_items.id asc")
}

// タイムラインは古い順（同時刻は id 順）
func orderTimelineScope(db *gorm.DB) *gorm.DB {
	return db.Order("order_status_events.created_at asc, order_status_events.id asc")
}

// withOrderChildren は注文の明細とタイムラインをまとめて読み込む。
func withOrderChildren(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", orderItemsScope).
		Preload("StatusTimeline", orderTimelineScope)
}
