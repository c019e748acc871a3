package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/domain/model"
	repo "github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/repository"
)

// =====================
// Clock
// =====================

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var testNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// decEq は値として等しい decimal にマッチする（内部表現の差は無視）
func decEq(s string) any {
	want := dec(s)
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(want) })
}

// =====================
// Mock: CartRepository
// =====================

type MockCartRepository struct{ mock.Mock }

func (m *MockCartRepository) FindByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.Cart), args.Error(1)
}

func (m *MockCartRepository) FindByUserIDForUpdate(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.Cart), args.Error(1)
}

func (m *MockCartRepository) GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.Cart), args.Error(1)
}

func (m *MockCartRepository) Save(ctx context.Context, cart *model.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

// =====================
// Mock: WishlistRepository
// =====================

type MockWishlistRepository struct{ mock.Mock }

func (m *MockWishlistRepository) GetOrCreateByUserID(ctx context.Context, userID int64) (model.Wishlist, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.Wishlist), args.Error(1)
}

func (m *MockWishlistRepository) AddItem(ctx context.Context, wishlistID int64, productID int64) error {
	return m.Called(ctx, wishlistID, productID).Error(0)
}

func (m *MockWishlistRepository) RemoveItem(ctx context.Context, wishlistID int64, productID int64) error {
	return m.Called(ctx, wishlistID, productID).Error(0)
}

func (m *MockWishlistRepository) Clear(ctx context.Context, wishlistID int64) error {
	return m.Called(ctx, wishlistID).Error(0)
}

// =====================
// Mock: ProductRepository
// =====================

type MockProductRepository struct{ mock.Mock }

func (m *MockProductRepository) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) ListAll(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Product), args.Error(1)
}

func (m *MockProductRepository) FindBySlug(ctx context.Context, slug string) (model.Product, error) {
	args := m.Called(ctx, slug)
	return args.Get(0).(model.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, p *model.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, p *model.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProductRepository) SoftDelete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductRepository) UpdateRating(ctx context.Context, productID int64, average decimal.Decimal, count int64) error {
	return m.Called(ctx, productID, average, count).Error(0)
}

func (m *MockProductRepository) UpdateImages(ctx context.Context, productID int64, imageURL, thumbnailURL string) error {
	return m.Called(ctx, productID, imageURL, thumbnailURL).Error(0)
}

// =====================
// Mock: CategoryRepository
// =====================

type MockCategoryRepository struct{ mock.Mock }

func (m *MockCategoryRepository) List(ctx context.Context, activeOnly bool) ([]model.Category, error) {
	args := m.Called(ctx, activeOnly)
	items, _ := args.Get(0).([]model.Category)
	return items, args.Error(1)
}

func (m *MockCategoryRepository) FindByID(ctx context.Context, id int64) (model.Category, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Category), args.Error(1)
}

func (m *MockCategoryRepository) Create(ctx context.Context, c *model.Category) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCategoryRepository) Update(ctx context.Context, c *model.Category) error {
	return m.Called(ctx, c).Error(0)
}

// =====================
// Mock: InventoryRepository
// =====================

type MockInventoryRepository struct{ mock.Mock }

func (m *MockInventoryRepository) SetStock(ctx context.Context, productID int64, newStock int64) error {
	return m.Called(ctx, productID, newStock).Error(0)
}

func (m *MockInventoryRepository) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	args := m.Called(ctx, productID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *MockInventoryRepository) IncreaseStock(ctx context.Context, productID int64, qty int64) error {
	return m.Called(ctx, productID, qty).Error(0)
}

// =====================
// Mock: OrderRepository
// =====================

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Create(ctx context.Context, order *model.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(model.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(model.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByUserID(ctx context.Context, userID int64, f repo.OrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, userID, f)
	items, _ := args.Get(0).([]model.Order)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	items, _ := args.Get(0).([]model.Order)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) ListAll(ctx context.Context, from, to *time.Time) ([]model.Order, error) {
	args := m.Called(ctx, from, to)
	items, _ := args.Get(0).([]model.Order)
	return items, args.Error(1)
}

func (m *MockOrderRepository) AppendStatus(ctx context.Context, orderID int64, ev model.OrderStatusEvent) error {
	return m.Called(ctx, orderID, ev).Error(0)
}

func (m *MockOrderRepository) UpdateTracking(ctx context.Context, orderID int64, carrier, trackingNumber, trackingURL string) error {
	return m.Called(ctx, orderID, carrier, trackingNumber, trackingURL).Error(0)
}

func (m *MockOrderRepository) UpdatePayment(ctx context.Context, orderID int64, status model.PaymentStatus, transactionID string) error {
	return m.Called(ctx, orderID, status, transactionID).Error(0)
}

// =====================
// Mock: UserRepository
// =====================

type MockUserRepository struct{ mock.Mock }

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, f repo.UserListFilter) ([]model.User, int64, error) {
	args := m.Called(ctx, f)
	items, _ := args.Get(0).([]model.User)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) ListAll(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.User)
	return items, args.Error(1)
}

func (m *MockUserRepository) IncrementTokenVersion(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockUserRepository) RecordOrder(ctx context.Context, userID int64, total decimal.Decimal) error {
	return m.Called(ctx, userID, total).Error(0)
}

// =====================
// Mock: RefreshTokenRepository
// =====================

type MockRefreshTokenRepository struct{ mock.Mock }

func (m *MockRefreshTokenRepository) Create(ctx context.Context, token *model.RefreshToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockRefreshTokenRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	rt, _ := args.Get(0).(*model.RefreshToken)
	return rt, args.Error(1)
}

func (m *MockRefreshTokenRepository) MarkUsed(ctx context.Context, tokenID string, usedAt time.Time) error {
	return m.Called(ctx, tokenID, usedAt).Error(0)
}

func (m *MockRefreshTokenRepository) DeleteAllByUserID(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockRefreshTokenRepository) DeleteByID(ctx context.Context, tokenID string) error {
	return m.Called(ctx, tokenID).Error(0)
}

// =====================
// Mock: AuditLogRepository
// =====================

type MockAuditLogRepository struct{ mock.Mock }

func (m *MockAuditLogRepository) Create(ctx context.Context, log model.AuditLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *MockAuditLogRepository) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	items, _ := args.Get(0).([]model.AuditLog)
	return items, args.Error(1)
}

// =====================
// Mock: ReviewRepository
// =====================

type MockReviewRepository struct{ mock.Mock }

func (m *MockReviewRepository) Create(ctx context.Context, r *model.Review) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockReviewRepository) FindByID(ctx context.Context, id int64) (model.Review, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Review), args.Error(1)
}

func (m *MockReviewRepository) Update(ctx context.Context, r *model.Review) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockReviewRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockReviewRepository) List(ctx context.Context, f repo.ReviewListFilter) ([]model.Review, int64, error) {
	args := m.Called(ctx, f)
	items, _ := args.Get(0).([]model.Review)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *MockReviewRepository) ListFeatured(ctx context.Context, limit int) ([]model.Review, error) {
	args := m.Called(ctx, limit)
	items, _ := args.Get(0).([]model.Review)
	return items, args.Error(1)
}

func (m *MockReviewRepository) RatingStats(ctx context.Context, productID int64) (decimal.Decimal, int64, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(decimal.Decimal), args.Get(1).(int64), args.Error(2)
}

// =====================
// Mock: ReportRepository
// =====================

type MockReportRepository struct{ mock.Mock }

func (m *MockReportRepository) CountUsers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReportRepository) CountProducts(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReportRepository) CountOrders(ctx context.Context, from, to *time.Time) (int64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReportRepository) Revenue(ctx context.Context, from, to *time.Time) (repo.RevenueSummary, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(repo.RevenueSummary), args.Error(1)
}

func (m *MockReportRepository) OrdersByStatus(ctx context.Context, from, to *time.Time) ([]repo.StatusCount, error) {
	args := m.Called(ctx, from, to)
	items, _ := args.Get(0).([]repo.StatusCount)
	return items, args.Error(1)
}

func (m *MockReportRepository) UsersByRole(ctx context.Context) ([]repo.RoleCount, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]repo.RoleCount)
	return items, args.Error(1)
}

func (m *MockReportRepository) RevenueByPaymentMethod(ctx context.Context, from, to *time.Time) ([]repo.MethodRevenue, error) {
	args := m.Called(ctx, from, to)
	items, _ := args.Get(0).([]repo.MethodRevenue)
	return items, args.Error(1)
}

func (m *MockReportRepository) DailyRevenue(ctx context.Context, from, to time.Time) ([]repo.DailyRevenue, error) {
	args := m.Called(ctx, from, to)
	items, _ := args.Get(0).([]repo.DailyRevenue)
	return items, args.Error(1)
}

// =====================
// TxManager: fn をそのまま固定の repos で呼ぶ
// =====================

type fakeTxRepos struct {
	orders    repo.OrderRepository
	carts     repo.CartRepository
	products  repo.ProductRepository
	inventory repo.InventoryRepository
	users     repo.UserRepository
	audit     repo.AuditLogRepository
}

func (r fakeTxRepos) Orders() repo.OrderRepository        { return r.orders }
func (r fakeTxRepos) Carts() repo.CartRepository          { return r.carts }
func (r fakeTxRepos) Products() repo.ProductRepository    { return r.products }
func (r fakeTxRepos) Inventory() repo.InventoryRepository { return r.inventory }
func (r fakeTxRepos) Users() repo.UserRepository          { return r.users }
func (r fakeTxRepos) AuditLogs() repo.AuditLogRepository  { return r.audit }

type fakeTxManager struct {
	repos fakeTxRepos
	calls int
}

func (m *fakeTxManager) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.calls++
	return fn(m.repos)
}

// =====================
// Notifier: 送信内容を記録するだけ
// =====================

type sentMail struct {
	kind  string
	to    Recipient
	order model.Order
}

type recordingNotifier struct {
	sent []sentMail
}

func (n *recordingNotifier) OrderPlaced(ctx context.Context, to Recipient, order model.Order) {
	n.sent = append(n.sent, sentMail{kind: "placed", to: to, order: order})
}

func (n *recordingNotifier) OrderStatusChanged(ctx context.Context, to Recipient, order model.Order) {
	n.sent = append(n.sent, sentMail{kind: "status", to: to, order: order})
}

func (n *recordingNotifier) OrderCancelled(ctx context.Context, to Recipient, order model.Order) {
	n.sent = append(n.sent, sentMail{kind: "cancelled", to: to, order: order})
}

func (n *recordingNotifier) Welcome(ctx context.Context, to Recipient) {
	n.sent = append(n.sent, sentMail{kind: "welcome", to: to})
}

// =====================
// 採番
// =====================

type sequenceNumberer struct {
	numbers []string
	i       int
}

func (s *sequenceNumberer) OrderNumber(now time.Time) (string, error) {
	n := s.numbers[s.i%len(s.numbers)]
	s.i++
	return n, nil
}

func (s *sequenceNumberer) SKU(brand string, now time.Time) (string, error) {
	return "LP-NIK-123456", nil
}
