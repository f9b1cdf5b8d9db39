package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/msgbox/internal/metrics"
	"github.com/hitoshi/msgbox/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenValidator    middleware.TokenValidator
	CORSAllowedOrigin string

	// リクエストログの出力先（nilの場合はslog.Default()）
	Logger *slog.Logger

	// メトリクス（nil可。nilの場合はメトリクス記録を行わない）
	Metrics  metrics.MetricsCollector
	Gatherer prometheus.Gatherer

	// サービス層
	AuthService    AuthServiceInterface
	UserService    UserServiceInterface
	MessageService MessageServiceInterface
	MessageLister  MessageListService
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Metrics
//
// 認証が必要なルート（/api/*）にはAuthミドルウェアを追加する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}

	requestLogger := deps.Logger
	if requestLogger == nil {
		requestLogger = slog.Default()
	}
	logging := middleware.NewLoggingMiddleware(requestLogger)

	authHandler := NewAuthHandler(deps.AuthService, deps.Metrics)
	userHandler := NewUserHandler(deps.UserService, deps.MessageLister)
	messageHandler := NewMessageHandler(deps.MessageService, deps.Metrics)

	// --- 認証不要のルート ---

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	r.Group(func(r chi.Router) {
		r.Use(logging)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})
	})

	// --- 認証が必要なルート ---
	// ログはAuthの後に通し、認証済みユーザー名をログに含める
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenValidator))
		r.Use(logging)

		r.Route("/api/users", func(r chi.Router) {
			r.Get("/", userHandler.ListUsers)

			// /me/* は /{username} より先に定義して経路の衝突を避ける
			r.Route("/me/messages", func(r chi.Router) {
				r.Get("/from", userHandler.ListSentMessages)
				r.Get("/to", userHandler.ListReceivedMessages)
			})

			r.Get("/{username}", userHandler.GetUser)
		})

		r.Route("/api/messages", func(r chi.Router) {
			r.Post("/", messageHandler.SendMessage)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", messageHandler.GetMessage)
				r.Post("/read", messageHandler.MarkMessageRead)
			})
		})
	})

	return r
}
