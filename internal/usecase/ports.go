package usecase

import (
	"context"
	"io"
	"time"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/domain/model"
)

// 注文番号の採番（numbering.Generator が実装）
type OrderNumberer interface {
	OrderNumber(now time.Time) (string, error)
}

// SKU の採番
type SKUGenerator interface {
	SKU(brand string, now time.Time) (string, error)
}

// 宛先
type Recipient struct {
	Name  string
	Email string
}

// メール通知。失敗しても呼び出し側には返さない（実装側でログ）。
type Notifier interface {
	OrderPlaced(ctx context.Context, to Recipient, order model.Order)
	OrderStatusChanged(ctx context.Context, to Recipient, order model.Order)
	OrderCancelled(ctx context.Context, to Recipient, order model.Order)
	Welcome(ctx context.Context, to Recipient)
}

// 請求書PDFの生成
type InvoiceRenderer interface {
	Render(order model.Order) ([]byte, error)
}

// 一覧をxlsxにする
type SpreadsheetExporter interface {
	Products(products []model.Product) ([]byte, error)
	Users(users []model.User) ([]byte, error)
	Orders(orders []model.Order) ([]byte, error)
}

// ファイル保存先（local / s3）
type Storage interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// 画像の縮小（サムネイル）
type ImageProcessor interface {
	Thumbnail(src io.Reader, width int) ([]byte, string, error)
}
