package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/SebastianPineiro10/servidor-ecommerce-backend2/internal/domain"
	"github.com/SebastianPineiro10/servidor-ecommerce-backend2/internal/service"
)

// CatalogNotifier lets the HTTP layer nudge the realtime hub after a
// catalog mutation without depending on the hub package.
type CatalogNotifier interface {
	CatalogChanged()
}

type noopNotifier struct{}

func (noopNotifier) CatalogChanged() {}

type ProductHandler struct {
	products *service.ProductService
	notifier CatalogNotifier
}

func NewProductHandler(products *service.ProductService, notifier CatalogNotifier) *ProductHandler {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &ProductHandler{products: products, notifier: notifier}
}

type productRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Code        string   `json:"code"`
	Price       float64  `json:"price"`
	Stock       int      `json:"stock"`
	Status      *bool    `json:"status"`
	Category    string   `json:"category"`
	Thumbnails  []string `json:"thumbnails"`
}

type productUpdateRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Code        *string  `json:"code"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
	Status      *bool    `json:"status"`
	Category    *string  `json:"category"`
	Thumbnails  []string `json:"thumbnails"`
}

type listEnvelope struct {
	Status string `json:"status"`
	*service.Listing
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := service.ListOptions{
		Limit:    parseInt64(r.URL.Query().Get("limit"), 10),
		Page:     parseInt64(r.URL.Query().Get("page"), 1),
		Sort:     r.URL.Query().Get("sort"),
		Query:    r.URL.Query().Get("query"),
		BasePath: r.URL.Path,
	}

	listing, err := h.products.ListProducts(r.Context(), opts)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, listEnvelope{Status: "success", Listing: listing})
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.GetProduct(r.Context(), chi.URLParam(r, "pid"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	status := true
	if req.Status != nil {
		status = *req.Status
	}
	product := &domain.Product{
		Title:       req.Title,
		Description: req.Description,
		Code:        req.Code,
		Price:       req.Price,
		Stock:       req.Stock,
		Status:      status,
		Category:    req.Category,
		Thumbnails:  req.Thumbnails,
	}

	created, err := h.products.AddProduct(r.Context(), product)
	if err != nil {
		// Duplicate codes surface as 400 here, per the route contract.
		respondServiceError(w, err, http.StatusConflict, http.StatusBadRequest)
		return
	}

	h.notifier.CatalogChanged()
	respondJSON(w, http.StatusCreated, created)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req productUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	upd := domain.ProductUpdate{
		Title:       req.Title,
		Description: req.Description,
		Code:        req.Code,
		Price:       req.Price,
		Stock:       req.Stock,
		Status:      req.Status,
		Category:    req.Category,
		Thumbnails:  req.Thumbnails,
	}

	updated, err := h.products.UpdateProduct(r.Context(), chi.URLParam(r, "pid"), upd)
	if err != nil {
		respondServiceError(w, err, http.StatusConflict, http.StatusBadRequest)
		return
	}

	h.notifier.CatalogChanged()
	respondJSON(w, http.StatusOK, updated)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.products.DeleteProduct(r.Context(), chi.URLParam(r, "pid")); err != nil {
		respondServiceError(w, err)
		return
	}

	h.notifier.CatalogChanged()
	respondJSON(w, http.StatusOK, map[string]string{"status": "success", "message": "product deleted"})
}

func (h *ProductHandler) DeleteByCode(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.products.DeleteProductByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if !deleted {
		respondError(w, http.StatusNotFound, "product not found")
		return
	}

	h.notifier.CatalogChanged()
	respondJSON(w, http.StatusOK, map[string]string{"status": "success", "message": "product deleted"})
}

func parseInt64(s string, fallback int64) int64 {
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
