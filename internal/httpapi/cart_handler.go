package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/SebastianPineiro10/servidor-ecommerce-backend2/internal/domain"
	"github.com/SebastianPineiro10/servidor-ecommerce-backend2/internal/service"
	"github.com/SebastianPineiro10/servidor-ecommerce-backend2/internal/session"
)

// CartHandler binds carts to browser sessions: POST /api/carts is
// idempotent within a session, and every cart route rejects a cart id that
// does not belong to the caller's session.
type CartHandler struct {
	carts    *service.CartService
	sessions session.Store
}

func NewCartHandler(carts *service.CartService, sessions session.Store) *CartHandler {
	return &CartHandler{carts: carts, sessions: sessions}
}

type cartItemRequest struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

type setContentsRequest struct {
	Products []cartItemRequest `json:"products"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := sessionIDFromContext(ctx)

	existing, err := h.sessions.CartID(ctx, sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if existing != "" {
		cart, err := h.carts.GetCart(ctx, existing)
		switch {
		case err == nil:
			respondJSON(w, http.StatusOK, cart)
			return
		case errors.Is(err, domain.ErrNotFound):
			// The bound cart vanished from the store; fall through and
			// bind a fresh one.
		default:
			respondServiceError(w, err)
			return
		}
	}

	cart, err := h.carts.CreateCart(ctx)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if err := h.sessions.BindCart(ctx, sessionID, cart.ID.Hex()); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, cart)
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cid")
	if !h.ownsCart(w, r, cartID) {
		return
	}

	cart, err := h.carts.GetCart(r.Context(), cartID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cid")
	if !h.ownsCart(w, r, cartID) {
		return
	}

	quantity := 1
	if r.Body != nil && r.ContentLength != 0 {
		var req quantityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.Quantity != 0 {
			quantity = req.Quantity
		}
	}

	cart, err := h.carts.AddProduct(r.Context(), cartID, chi.URLParam(r, "pid"), quantity)
	if err != nil {
		respondServiceError(w, err, http.StatusNotFound, http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) SetContents(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cid")
	if !h.ownsCart(w, r, cartID) {
		return
	}

	var req setContentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	items := make([]domain.CartItem, 0, len(req.Products))
	for _, p := range req.Products {
		oid, err := primitive.ObjectIDFromHex(p.Product)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid product reference")
			return
		}
		items = append(items, domain.CartItem{ProductID: oid, Quantity: p.Quantity})
	}

	cart, err := h.carts.SetContents(r.Context(), cartID, items)
	if err != nil {
		respondServiceError(w, err, http.StatusNotFound, http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cid")
	if !h.ownsCart(w, r, cartID) {
		return
	}

	var req quantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	cart, err := h.carts.SetQuantity(r.Context(), cartID, chi.URLParam(r, "pid"), req.Quantity)
	if err != nil {
		respondServiceError(w, err, http.StatusNotFound, http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cid")
	if !h.ownsCart(w, r, cartID) {
		return
	}

	cart, err := h.carts.RemoveProduct(r.Context(), cartID, chi.URLParam(r, "pid"))
	if err != nil {
		respondServiceError(w, err, http.StatusNotFound, http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cid")
	if !h.ownsCart(w, r, cartID) {
		return
	}

	cart, err := h.carts.ClearCart(r.Context(), cartID)
	if err != nil {
		respondServiceError(w, err, http.StatusNotFound, http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusOK, cart)
}

// ownsCart enforces the session-scoped access policy: a request may only
// touch the cart bound to its own session. It writes the 403 itself and
// reports whether the handler may proceed.
func (h *CartHandler) ownsCart(w http.ResponseWriter, r *http.Request, cartID string) bool {
	sessionID := sessionIDFromContext(r.Context())
	bound, err := h.sessions.CartID(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return false
	}
	if bound == "" || bound != cartID {
		respondError(w, http.StatusForbidden, "cart does not belong to this session")
		return false
	}
	return true
}
