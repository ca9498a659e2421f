package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/example/solar-storefront/internal/api/middleware"
	"github.com/example/solar-storefront/internal/auth"
	"go.uber.org/zap"
)

const defaultSessionTTL = 24 * time.Hour

type RouterConfig struct {
	Handlers  *Handlers
	Validator middleware.TokenValidator
	Logger    *zap.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	handlers := cfg.Handlers
	mux := http.NewServeMux()

	adminOnly := middleware.RequireRole(auth.RoleAdmin)
	signedIn := middleware.RequireRole(auth.RoleCustomer, auth.RoleAdmin)

	// Products
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetProducts(w, r)
		default:
			methodNotAllowed(w)
		}
	})

	mux.HandleFunc("/products/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetProduct(w, r)
		default:
			methodNotAllowed(w)
		}
	})

	// Cart
	mux.HandleFunc("/cart", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetCart(w, r)
		default:
			methodNotAllowed(w)
		}
	})

	mux.HandleFunc("/cart/items", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			handlers.AddToCart(w, r)
		default:
			methodNotAllowed(w)
		}
	})

	mux.HandleFunc("/cart/items/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPatch:
			handlers.UpdateCartItem(w, r)
		case http.MethodDelete:
			handlers.RemoveFromCart(w, r)
		default:
			methodNotAllowed(w)
		}
	})

	mux.HandleFunc("/cart/checkout", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			handlers.Checkout(w, r)
		case http.MethodDelete:
			handlers.CancelCheckout(w, r)
		default:
			methodNotAllowed(w)
		}
	})

	mux.HandleFunc("/cart/buy-now", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			handlers.BuyNow(w, r)
		default:
			methodNotAllowed(w)
		}
	})

	// Services (admin)
	mux.Handle("/services", adminOnly(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			handlers.SaveService(w, r)
		default:
			methodNotAllowed(w)
		}
	})))

	mux.Handle("/services/", adminOnly(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case path == "/services/quote" && r.Method == http.MethodPost:
			handlers.QuoteService(w, r)
		case path == "/services/available-products" && r.Method == http.MethodGet:
			handlers.ServiceOptions(w, r)
		case r.Method == http.MethodPut:
			handlers.SaveService(w, r)
		default:
			methodNotAllowed(w)
		}
	})))

	// Account
	mux.Handle("/auth/me", signedIn(http.HandlerFunc(handlers.Me)))

	var handler http.Handler = mux
	if cfg.Validator != nil {
		handler = middleware.OptionalAuthMiddleware(cfg.Validator)(handler)
	}
	return withLogging(handler, cfg.Logger)
}

func methodNotAllowed(w http.ResponseWriter) {
	respondError(w, "Method not allowed", http.StatusMethodNotAllowed)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func withLogging(next http.Handler, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "api"))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		level := zap.DebugLevel
		if rec.status >= 500 {
			level = zap.WarnLevel
		} else if !strings.HasPrefix(r.URL.Path, "/products") {
			level = zap.InfoLevel
		}
		logger.Log(level, "request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
