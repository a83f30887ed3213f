package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/kakeibo/internal/metrics"
	"github.com/hitoshi/kakeibo/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	HealthChecker     HealthChecker
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	CSRFConfig        middleware.CSRFConfig
	RateLimiter       *middleware.RateLimiter
	HSTS              bool

	// TrustProxy がtrueの場合、X-Forwarded-For等からクライアントIPを復元する。
	TrustProxy bool
	Logger     *slog.Logger

	// メトリクス
	Metrics         metrics.MetricsCollector
	MetricsGatherer prometheus.Gatherer

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 家計簿
	CategoryService CategoryServiceInterface
	ExpenseService  ExpenseServiceInterface
	LedgerService   LedgerServiceInterface
	ReportService   ReportServiceInterface

	// お問い合わせ
	ContactService ContactServiceInterface

	// ユーザー
	UserService UserServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → RealIP（TrustProxy時） → Logging → SecurityHeaders → CORS → Metrics
//	  認証ルート: CSRF
//	  お問い合わせ: RateLimit(Contact) → CSRF
//	  認証が必要なルート: Session → CSRF → RateLimit(General)
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	collector := deps.Metrics
	if collector == nil {
		collector = metrics.Nop{}
	}

	r.Use(middleware.NewRecoveryMiddleware(deps.Logger))
	if deps.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewSecurityHeadersMiddleware(deps.HSTS))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewMetricsMiddleware(collector))

	csrf := middleware.NewCSRFMiddleware(deps.CSRFConfig)

	healthHandler := NewHealthHandler(deps.HealthChecker)
	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	categoryHandler := NewCategoryHandler(deps.CategoryService)
	expenseHandler := NewExpenseHandler(deps.ExpenseService)
	ledgerHandler := NewLedgerHandler(deps.LedgerService)
	reportHandler := NewReportHandler(deps.ReportService)
	contactHandler := NewContactHandler(deps.ContactService)
	userHandler := NewUserHandler(deps.UserService, deps.AuthConfig)

	// --- 認証不要のルート ---

	r.Get("/health", healthHandler.Health)
	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.MetricsGatherer))
	}
	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))
	r.With(deps.RateLimiter.ContactMiddleware(), csrf).Post("/api/contact", contactHandler.Submit)

	r.Route("/auth", func(r chi.Router) {
		r.Use(csrf)

		r.Post("/sign-up", authHandler.SignUp)
		r.Post("/sign-in", authHandler.SignIn)
		r.Post("/guest", authHandler.Guest)
		r.Post("/password/forgot", authHandler.ForgotPassword)
		r.Post("/password/reset", authHandler.ResetPassword)

		// OAuthフロー
		r.Get("/google/login", authHandler.Login)
		r.Get("/google/callback", authHandler.Callback)

		// セッション管理
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// --- 認証が必要なルート ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(csrf)
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Route("/api/categories", func(r chi.Router) {
			r.Get("/", categoryHandler.List)
			r.Post("/", categoryHandler.Create)
			r.Post("/seed", categoryHandler.Seed)
			r.Post("/reset", categoryHandler.Reset)
			r.Put("/{id}", categoryHandler.Update)
			r.Delete("/{id}", categoryHandler.Delete)
		})

		r.Route("/api/expenses", func(r chi.Router) {
			r.Get("/", expenseHandler.List)
			r.Post("/", expenseHandler.Create)
			r.Put("/{id}", expenseHandler.Update)
			r.Delete("/{id}", expenseHandler.Delete)
		})

		r.Route("/api/ledger", func(r chi.Router) {
			r.Get("/", ledgerHandler.List)
			r.Post("/", ledgerHandler.Create)
			r.Get("/balance", ledgerHandler.Balance)
			r.Get("/payment-methods", ledgerHandler.PaymentMethods)
			r.Put("/{id}", ledgerHandler.Update)
			r.Delete("/{id}", ledgerHandler.Delete)
		})

		r.Route("/api/reports", func(r chi.Router) {
			r.Get("/calendar", reportHandler.Calendar)
			r.Get("/statistics", reportHandler.Statistics)
		})

		r.Route("/api/users/me", func(r chi.Router) {
			r.Get("/export", userHandler.Export)
			r.Delete("/", userHandler.Withdraw)
		})
	})

	return r
}
