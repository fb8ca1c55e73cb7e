package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterConfig struct {
	Products       *ProductHandler
	Carts          *CartHandler
	Sessions       *SessionHandler
	Realtime       http.Handler
	RequestTimeout time.Duration
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Compress(5))
	r.Use(SessionMiddleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	r.Route("/api", func(r chi.Router) {
		// The websocket route lives outside this subtree so the timeout
		// middleware cannot kill long-lived connections.
		r.Use(middleware.Timeout(timeout))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", cfg.Products.List)
			r.Post("/", cfg.Products.Create)
			r.Get("/{pid}", cfg.Products.Get)
			r.Put("/{pid}", cfg.Products.Update)
			r.Delete("/{pid}", cfg.Products.Delete)
			r.Delete("/code/{code}", cfg.Products.DeleteByCode)
		})

		r.Route("/carts", func(r chi.Router) {
			r.Post("/", cfg.Carts.Create)
			r.Get("/{cid}", cfg.Carts.Get)
			r.Put("/{cid}", cfg.Carts.SetContents)
			r.Delete("/{cid}", cfg.Carts.Clear)
			r.Post("/{cid}/products/{pid}", cfg.Carts.AddProduct)
			r.Put("/{cid}/products/{pid}", cfg.Carts.SetQuantity)
			r.Delete("/{cid}/products/{pid}", cfg.Carts.RemoveProduct)
		})

		r.Route("/session", func(r chi.Router) {
			r.Post("/register", cfg.Sessions.Register)
			r.Post("/login", cfg.Sessions.Login)
			r.Get("/current", cfg.Sessions.Current)
		})
	})

	if cfg.Realtime != nil {
		r.Handle("/realtimeproducts", cfg.Realtime)
	}

	return otelhttp.NewHandler(r, "ecommerce-backend")
}
