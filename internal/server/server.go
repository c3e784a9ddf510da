package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/quicktradepro/quicktrade/internal/appauth"
	"github.com/quicktradepro/quicktrade/internal/cache"
	"github.com/quicktradepro/quicktrade/internal/directory"
	"github.com/quicktradepro/quicktrade/internal/handler"
	"github.com/quicktradepro/quicktrade/internal/licensing"
	"github.com/quicktradepro/quicktrade/internal/middleware"
	"github.com/quicktradepro/quicktrade/internal/payment"
	"github.com/quicktradepro/quicktrade/internal/store"
)

type Server struct {
	db           *sql.DB
	sessionStore *store.SessionStore
	licensing    *licensing.Service
	directory    *directory.Service
	authH        *handler.AuthHandler
	eaH          *handler.EAHandler
	licenseH     *handler.LicenseHandler
	profileH     *handler.ProfileHandler
	validateH    *handler.ValidateHandler
	checkoutH    *handler.CheckoutHandler
	referralH    *handler.ReferralHandler
	appTokenH    *handler.AppTokenHandler
	rateLimiter  *middleware.RateLimiter
	logger       *slog.Logger
}

type Config struct {
	BaseURL        string
	YocoSecretKey  string
	PayFast        payment.PayFastConfig
	AppTokenSecret string
	MaxLicenses    int
}

func New(db *sql.DB, localCache *cache.Cache, cfg Config, logger *slog.Logger) *Server {
	accountStore := store.NewAccountStore(db)
	eaStore := store.NewEAStore(db)
	licenseStore := store.NewLicenseStore(db)
	sessionStore := store.NewSessionStore(db)

	var licensingOpts []licensing.Option
	if cfg.MaxLicenses > 0 {
		licensingOpts = append(licensingOpts, licensing.WithMaxLicenses(cfg.MaxLicenses))
	}
	licensingSvc := licensing.New(licenseStore, eaStore, localCache, logger.With("component", "licensing"), licensingOpts...)
	directorySvc := directory.New(accountStore, localCache, logger.With("component", "directory"))

	var yoco *payment.YocoClient
	if cfg.YocoSecretKey != "" {
		yoco = payment.NewYocoClient(cfg.YocoSecretKey)
	}
	payfast := payment.NewPayFast(cfg.PayFast)
	appTokens := appauth.NewManager(cfg.AppTokenSecret, 0)

	return &Server{
		db:           db,
		sessionStore: sessionStore,
		licensing:    licensingSvc,
		directory:    directorySvc,
		authH:        handler.NewAuthHandler(directorySvc, sessionStore, logger.With("component", "auth")),
		eaH:          handler.NewEAHandler(licensingSvc),
		licenseH:     handler.NewLicenseHandler(licensingSvc),
		profileH:     handler.NewProfileHandler(directorySvc),
		validateH:    handler.NewValidateHandler(licensingSvc),
		checkoutH:    handler.NewCheckoutHandler(yoco, payfast, directorySvc, logger.With("component", "checkout")),
		referralH:    handler.NewReferralHandler(directorySvc, cfg.BaseURL),
		appTokenH:    handler.NewAppTokenHandler(appTokens, directorySvc),
		rateLimiter:  middleware.NewRateLimiter(),
		logger:       logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthCheck)

	// Public, rate-limited
	mux.Handle("POST /api/signup", s.rateLimited(s.authH.Signup))
	mux.Handle("POST /api/login", s.rateLimited(s.authH.Login))
	mux.Handle("POST /api/license/validate", s.rateLimited(s.validateH.Validate))

	// Session-scoped
	authMw := middleware.RequireAuth(s.sessionStore)
	protected := func(h http.HandlerFunc) http.Handler {
		return authMw(h)
	}
	mux.Handle("POST /api/logout", protected(s.authH.Logout))
	mux.Handle("GET /api/me", protected(s.authH.Me))
	mux.Handle("PUT /api/profile", protected(s.profileH.Update))

	mux.Handle("GET /api/eas", protected(s.eaH.List))
	mux.Handle("POST /api/eas", protected(s.eaH.Create))
	mux.Handle("DELETE /api/eas/{id}", protected(s.eaH.Delete))

	mux.Handle("GET /api/licenses", protected(s.licenseH.List))
	mux.Handle("POST /api/licenses", protected(s.licenseH.Issue))
	mux.Handle("POST /api/licenses/{id}/deactivate", protected(s.licenseH.Deactivate))
	mux.Handle("DELETE /api/licenses/{id}", protected(s.licenseH.Delete))
	mux.Handle("GET /api/stats", protected(s.licenseH.Stats))

	mux.Handle("GET /api/referral", protected(s.referralH.Link))
	mux.Handle("POST /api/checkout", protected(s.checkoutH.Charge))
	mux.Handle("GET /api/checkout/payfast", protected(s.checkoutH.PayFastLink))
	mux.Handle("POST /api/app/token", protected(s.appTokenH.Issue))

	return middleware.RequestLogger(s.logger)(mux)
}

func (s *Server) rateLimited(h http.HandlerFunc) http.Handler {
	mw := middleware.RateLimit(s.rateLimiter, middleware.RealIP, 10, time.Minute)
	return mw(h)
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
