package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/SebastianPineiro10/servidor-ecommerce-backend2/internal/service"
)

type SessionHandler struct {
	auth *service.AuthService
}

func NewSessionHandler(auth *service.AuthService) *SessionHandler {
	return &SessionHandler{auth: auth}
}

type registerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Age       int    `json:"age"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *SessionHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	_, err := h.auth.Register(r.Context(), service.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Age:       req.Age,
		Password:  req.Password,
		Role:      req.Role,
	})
	if err != nil {
		respondServiceError(w, err, http.StatusConflict, http.StatusBadRequest)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"status":  "success",
		"message": "user registered",
	})
}

func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	token, user, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.auth.TokenTTL().Seconds()),
	})

	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": "login successful",
		"user":    user.Profile(),
	})
}

func (h *SessionHandler) Current(w http.ResponseWriter, r *http.Request) {
	token := ""
	if c, err := r.Cookie(tokenCookieName); err == nil {
		token = c.Value
	}

	profile, err := h.auth.CurrentUser(r.Context(), token)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, successResponse{Status: "success", Payload: profile})
}
