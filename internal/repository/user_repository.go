package repository

import (
	"context"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/domain/model"
	"github.com/shopspring/decimal"
)

type UserListFilter struct {
	Page  int
	Limit int
	Role  string
	Q     string
}

// 保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成（email重複は ErrDuplicate）
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// ロール・有効フラグ・ログイン試行回数など
	Update(ctx context.Context, user *model.User) error
	List(ctx context.Context, f UserListFilter) ([]model.User, int64, error)
	ListAll(ctx context.Context) ([]model.User, error)
	//トークンのバージョンを＋１
	IncrementTokenVersion(ctx context.Context, userID int64) error
	// 注文件数・累計金額・平均単価を1件分進める
	RecordOrder(ctx context.Context, userID int64, total decimal.Decimal) error
}
