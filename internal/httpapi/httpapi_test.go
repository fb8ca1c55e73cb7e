package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/SebastianPineiro10/servidor-ecommerce-backend2/internal/repository"
	"github.com/SebastianPineiro10/servidor-ecommerce-backend2/internal/service"
	"github.com/SebastianPineiro10/servidor-ecommerce-backend2/internal/session"
)

// testServer drives the full router with in-memory repositories and keeps
// cookies across requests like a browser would.
type testServer struct {
	t       *testing.T
	router  http.Handler
	cookies map[string]*http.Cookie

	users *repository.MemoryUserRepository
}

func newTestServer(t *testing.T) *testServer {
	return newTestServerWithCartRepo(t, repository.NewMemoryCartRepository())
}

func newTestServerWithCartRepo(t *testing.T, cartRepo repository.CartRepository) *testServer {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	productRepo := repository.NewMemoryProductRepository()
	userRepo := repository.NewMemoryUserRepository()

	productService := service.NewProductService(productRepo, log)
	cartService := service.NewCartService(cartRepo, productRepo, log)
	authService := service.NewAuthService(userRepo, "test-secret", time.Hour, log)

	router := NewRouter(RouterConfig{
		Products:       NewProductHandler(productService, nil),
		Carts:          NewCartHandler(cartService, session.NewMemoryStore()),
		Sessions:       NewSessionHandler(authService),
		RequestTimeout: 5 * time.Second,
	})

	return &testServer{
		t:       t,
		router:  router,
		cookies: make(map[string]*http.Cookie),
		users:   userRepo,
	}
}

// do sends a request through the router, carrying and capturing cookies.
func (s *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range s.cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		s.cookies[c.Name] = c
	}
	return rec
}

func (s *testServer) dropCookies() {
	s.cookies = make(map[string]*http.Cookie)
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}
