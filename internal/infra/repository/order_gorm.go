package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/domain/model"
	repo "github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/repository"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

// 明細・タイムラインも一緒に INSERT される
func (r *OrderGormRepository) Create(ctx context.Context, order *model.Order) error {
	return mapError(r.db.WithContext(ctx).Create(order).Error)
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Scopes(withOrderChildren).
		Where("id = ?", orderID).
		First(&o).Error
	if err != nil {
		return model.Order{}, mapError(err)
	}
	return o, nil
}

// 行ロック付き。ステータス変更・取消はこれで読む。
func (r *OrderGormRepository) FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(withOrderChildren).
		Where("id = ?", orderID).
		First(&o).Error
	if err != nil {
		return model.Order{}, mapError(err)
	}
	return o, nil
}

func (r *OrderGormRepository) ListByUserID(ctx context.Context, userID int64, f repo.OrderListFilter) ([]model.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Order{}).Where("user_id = ?", userID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	return r.page(q, f.Page, f.Limit)
}

func (r *OrderGormRepository) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Order{})

	//status 絞り込み
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	//user_id 絞り込み
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}

	//期間絞り込み
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}

	return r.page(q, f.Page, f.Limit)
}

// エクスポート用（期間指定は任意）
func (r *OrderGormRepository) ListAll(ctx context.Context, from, to *time.Time) ([]model.Order, error) {
	q := r.db.WithContext(ctx).Scopes(withOrderChildren)
	if from != nil {
		q = q.Where("created_at >= ?", *from)
	}
	if to != nil {
		q = q.Where("created_at < ?", *to)
	}

	orders := []model.Order{}
	if err := q.Order("created_at desc, id desc").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// AppendStatus は orders.status を上書きし、履歴を1行追加する。
func (r *OrderGormRepository) AppendStatus(ctx context.Context, orderID int64, ev model.OrderStatusEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Order{}).
			Where("id = ?", orderID).
			Updates(map[string]any{
				"status":     ev.Status,
				"updated_at": ev.CreatedAt,
			})
		if err := affected(res); err != nil {
			return err
		}

		ev.ID = 0
		ev.OrderID = orderID
		return tx.Create(&ev).Error
	})
}

// 明細・金額には触らない
func (r *OrderGormRepository) UpdateTracking(ctx context.Context, orderID int64, carrier, trackingNumber, trackingURL string) error {
	return affected(r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]any{
			"ship_carrier":         carrier,
			"ship_tracking_number": trackingNumber,
			"ship_tracking_url":    trackingURL,
			"updated_at":           time.Now(),
		}))
}

func (r *OrderGormRepository) UpdatePayment(ctx context.Context, orderID int64, status model.PaymentStatus, transactionID string) error {
	return affected(r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]any{
			"payment_status":         status,
			"payment_transaction_id": transactionID,
			"updated_at":             time.Now(),
		}))
}

// 件数を数えてから新しい順に1ページ分を読む
func (r *OrderGormRepository) page(q *gorm.DB, page, limit int) ([]model.Order, int64, error) {
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orders := []model.Order{}
	offset := (page - 1) * limit
	if err := q.Scopes(withOrderChildren).
		Order("created_at desc, id desc").
		Limit(limit).
		Offset(offset).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}
