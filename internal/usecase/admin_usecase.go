package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/domain/model"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/pkg/pagination"
	repo "github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/repository"
)

const (
	reportDateLayout  = "2006-01-02"
	defaultReportDays = 30
	recentOrdersLimit = 10
)

// 管理画面で見せる実行時設定（秘密情報は含めない）
type Settings struct {
	Environment           string          `json:"environment"`
	TaxRate               decimal.Decimal `json:"taxRate"`
	CouponRate            decimal.Decimal `json:"couponRate"`
	RateLimitRequests     int             `json:"rateLimitRequests"`
	RateLimitWindow       string          `json:"rateLimitWindow"`
	AuthRateLimitRequests int             `json:"authRateLimitRequests"`
	RateLimitStore        string          `json:"rateLimitStore"`
	StrictTransitions     bool            `json:"strictOrderTransitions"`
	StorageDriver         string          `json:"storageDriver"`
	AccessTokenTTL        string          `json:"accessTokenTtl"`
	RefreshTokenTTL       string          `json:"refreshTokenTtl"`
	LockoutMaxAttempts    int             `json:"lockoutMaxAttempts"`
	LockoutDuration       string          `json:"lockoutDuration"`
	MailEnabled           bool            `json:"mailEnabled"`
}

type DashboardTotals struct {
	Users    int64           `json:"users"`
	Products int64           `json:"products"`
	Orders   int64           `json:"orders"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type Dashboard struct {
	Totals         DashboardTotals     `json:"totals"`
	OrdersByStatus []repo.StatusCount  `json:"ordersByStatus"`
	UsersByRole    []repo.RoleCount    `json:"usersByRole"`
	RecentOrders   []model.Order       `json:"recentOrders"`
	DailyRevenue   []repo.DailyRevenue `json:"dailyRevenue"`
}

type FinancialReport struct {
	StartDate         string               `json:"startDate"`
	EndDate           string               `json:"endDate"`
	Summary           repo.RevenueSummary  `json:"summary"`
	AverageOrderValue decimal.Decimal      `json:"averageOrderValue"`
	ByPaymentMethod   []repo.MethodRevenue `json:"byPaymentMethod"`
	ByStatus          []repo.StatusCount   `json:"byStatus"`
	Daily             []repo.DailyRevenue  `json:"daily"`
}

type AdminUpdateUserInput struct {
	Role     *string
	IsActive *bool
}

// 出力ファイル
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AdminUsecase はダッシュボード・ユーザー管理・財務レポート・エクスポート。
// 集計は毎回DBで計算する。
type AdminUsecase struct {
	reports  repo.ReportRepository
	orders   repo.OrderRepository
	users    repo.UserRepository
	products repo.ProductRepository
	audit    repo.AuditLogRepository
	exporter SpreadsheetExporter
	settings Settings
	clock    Clock
}

type AdminDeps struct {
	Reports   repo.ReportRepository
	Orders    repo.OrderRepository
	Users     repo.UserRepository
	Products  repo.ProductRepository
	AuditLogs repo.AuditLogRepository
	Exporter  SpreadsheetExporter
	Settings  Settings
	Clock     Clock
}

func NewAdminUsecase(d AdminDeps) *AdminUsecase {
	return &AdminUsecase{
		reports:  d.Reports,
		orders:   d.Orders,
		users:    d.Users,
		products: d.Products,
		audit:    d.AuditLogs,
		exporter: d.Exporter,
		settings: d.Settings,
		clock:    d.Clock,
	}
}

func (u *AdminUsecase) Dashboard(ctx context.Context) (Dashboard, error) {
	var (
		d   Dashboard
		err error
	)

	if d.Totals.Users, err = u.reports.CountUsers(ctx); err != nil {
		return Dashboard{}, dbError(err)
	}
	if d.Totals.Products, err = u.reports.CountProducts(ctx); err != nil {
		return Dashboard{}, dbError(err)
	}
	if d.Totals.Orders, err = u.reports.CountOrders(ctx, nil, nil); err != nil {
		return Dashboard{}, dbError(err)
	}
	rev, err := u.reports.Revenue(ctx, nil, nil)
	if err != nil {
		return Dashboard{}, dbError(err)
	}
	d.Totals.Revenue = rev.Revenue

	if d.OrdersByStatus, err = u.reports.OrdersByStatus(ctx, nil, nil); err != nil {
		return Dashboard{}, dbError(err)
	}
	if d.UsersByRole, err = u.reports.UsersByRole(ctx); err != nil {
		return Dashboard{}, dbError(err)
	}
	if d.RecentOrders, _, err = u.orders.ListAdmin(ctx, repo.AdminOrderListFilter{Page: 1, Limit: recentOrdersLimit}); err != nil {
		return Dashboard{}, dbError(err)
	}

	to := startOfDay(u.clock.Now()).AddDate(0, 0, 1)
	from := to.AddDate(0, 0, -defaultReportDays)
	if d.DailyRevenue, err = u.reports.DailyRevenue(ctx, from, to); err != nil {
		return Dashboard{}, dbError(err)
	}
	return d, nil
}

// FinancialReport は YYYY-MM-DD の期間（両端含む）で集計する。未指定なら直近30日。
func (u *AdminUsecase) FinancialReport(ctx context.Context, startDate, endDate string) (FinancialReport, error) {
	today := startOfDay(u.clock.Now())

	end := today
	if strings.TrimSpace(endDate) != "" {
		t, err := time.ParseInLocation(reportDateLayout, strings.TrimSpace(endDate), time.UTC)
		if err != nil {
			return FinancialReport{}, validationError("endDate must be YYYY-MM-DD")
		}
		end = t
	}
	start := end.AddDate(0, 0, -(defaultReportDays - 1))
	if strings.TrimSpace(startDate) != "" {
		t, err := time.ParseInLocation(reportDateLayout, strings.TrimSpace(startDate), time.UTC)
		if err != nil {
			return FinancialReport{}, validationError("startDate must be YYYY-MM-DD")
		}
		start = t
	}
	if start.After(end) {
		return FinancialReport{}, validationError("startDate must be before endDate")
	}

	from := start
	to := end.AddDate(0, 0, 1)

	r := FinancialReport{
		StartDate: start.Format(reportDateLayout),
		EndDate:   end.Format(reportDateLayout),
	}

	var err error
	if r.Summary, err = u.reports.Revenue(ctx, &from, &to); err != nil {
		return FinancialReport{}, dbError(err)
	}
	r.AverageOrderValue = decimal.Zero
	if r.Summary.Orders > 0 {
		r.AverageOrderValue = r.Summary.Revenue.DivRound(decimal.NewFromInt(r.Summary.Orders), 2)
	}
	if r.ByPaymentMethod, err = u.reports.RevenueByPaymentMethod(ctx, &from, &to); err != nil {
		return FinancialReport{}, dbError(err)
	}
	if r.ByStatus, err = u.reports.OrdersByStatus(ctx, &from, &to); err != nil {
		return FinancialReport{}, dbError(err)
	}
	if r.Daily, err = u.reports.DailyRevenue(ctx, from, to); err != nil {
		return FinancialReport{}, dbError(err)
	}
	return r, nil
}

func (u *AdminUsecase) Settings() Settings {
	return u.settings
}

func (u *AdminUsecase) ListUsers(ctx context.Context, f repo.UserListFilter) ([]model.User, pagination.Meta, error) {
	if f.Role != "" && !model.Role(f.Role).Valid() {
		return nil, pagination.Meta{}, validationError("invalid role")
	}
	p := pagination.Normalize(f.Page, f.Limit)
	f.Page, f.Limit = p.Page, p.Limit
	f.Q = strings.TrimSpace(f.Q)

	users, total, err := u.users.List(ctx, f)
	if err != nil {
		return nil, pagination.Meta{}, dbError(err)
	}
	return users, pagination.NewMeta(p, total), nil
}

func (u *AdminUsecase) GetUser(ctx context.Context, userID int64) (*model.User, error) {
	if userID <= 0 {
		return nil, validationError("invalid id")
	}
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return nil, lookupError(err, "user not found")
	}
	return user, nil
}

// UpdateUser はロールと有効フラグを変更する。
// ロール変更は super-admin のみ。自分自身の降格・停止はできない。
// 変更があれば token_version を上げて発行済みトークンを無効にする。
func (u *AdminUsecase) UpdateUser(ctx context.Context, actorID int64, actorRole model.Role, targetID int64, in AdminUpdateUserInput) (*model.User, error) {
	if actorID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if targetID <= 0 {
		return nil, validationError("invalid id")
	}
	if in.Role == nil && in.IsActive == nil {
		return nil, validationError("nothing to update")
	}

	user, err := u.users.FindByID(ctx, targetID)
	if err != nil {
		return nil, lookupError(err, "user not found")
	}
	if user.Role == model.RoleSuperAdmin && actorRole != model.RoleSuperAdmin {
		return nil, forbiddenError("cannot modify a super-admin")
	}

	before := fmt.Sprintf(`{"role":%q,"isActive":%t}`, user.Role, user.IsActive)
	changed := false

	if in.Role != nil {
		role := model.Role(strings.TrimSpace(*in.Role))
		if !role.Valid() {
			return nil, validationError("invalid role")
		}
		if role != user.Role {
			if actorRole != model.RoleSuperAdmin {
				return nil, forbiddenError("only super-admin can change roles")
			}
			if targetID == actorID {
				return nil, forbiddenError("cannot change your own role")
			}
			user.Role = role
			changed = true
		}
	}
	if in.IsActive != nil && *in.IsActive != user.IsActive {
		if targetID == actorID && !*in.IsActive {
			return nil, forbiddenError("cannot deactivate yourself")
		}
		user.IsActive = *in.IsActive
		changed = true
	}
	if !changed {
		return user, nil
	}

	user.UpdatedAt = u.clock.Now()
	if err := u.users.Update(ctx, user); err != nil {
		return nil, lookupError(err, "user not found")
	}
	if err := u.users.IncrementTokenVersion(ctx, user.ID); err != nil {
		return nil, dbError(err)
	}
	user.TokenVersion++

	if err := u.audit.Create(ctx, model.AuditLog{
		ActorUserID:  actorID,
		Action:       model.AuditActionUpdateUser,
		ResourceType: model.AuditResourceUser,
		ResourceID:   user.ID,
		BeforeJSON:   before,
		AfterJSON:    fmt.Sprintf(`{"role":%q,"isActive":%t}`, user.Role, user.IsActive),
		CreatedAt:    user.UpdatedAt,
	}); err != nil {
		return nil, dbError(err)
	}
	return user, nil
}

func (u *AdminUsecase) ListAuditLogs(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	if f.Limit <= 0 || f.Limit > pagination.MaxLimit {
		f.Limit = pagination.DefaultLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	logs, err := u.audit.List(ctx, f)
	if err != nil {
		return nil, dbError(err)
	}
	return logs, nil
}

// Export は products / users / orders を xlsx にする。
func (u *AdminUsecase) Export(ctx context.Context, kind string) (ExportFile, error) {
	var (
		body []byte
		err  error
	)

	switch kind {
	case "products":
		items, lerr := u.products.ListAll(ctx)
		if lerr != nil {
			return ExportFile{}, dbError(lerr)
		}
		body, err = u.exporter.Products(items)
	case "users":
		items, lerr := u.users.ListAll(ctx)
		if lerr != nil {
			return ExportFile{}, dbError(lerr)
		}
		body, err = u.exporter.Users(items)
	case "orders":
		items, lerr := u.orders.ListAll(ctx, nil, nil)
		if lerr != nil {
			return ExportFile{}, dbError(lerr)
		}
		body, err = u.exporter.Orders(items)
	default:
		return ExportFile{}, notFoundError("unknown export")
	}
	if err != nil {
		return ExportFile{}, &HTTPError{Status: http.StatusInternalServerError, Message: "export failed", Kind: ErrInternal, Err: err}
	}

	return ExportFile{
		Filename:    fmt.Sprintf("%s-%s.xlsx", kind, u.clock.Now().Format("20060102")),
		ContentType: xlsxContentType,
		Body:        body,
	}, nil
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
