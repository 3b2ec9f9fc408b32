package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/silvercar/backend/internal/common"
	"github.com/silvercar/backend/internal/server/models"
)

// genericResetMessage is returned for every reset request regardless of
// whether the account exists or the mail went out.
const genericResetMessage = "If the account exists, a password reset email has been sent"

type errorResponse struct {
	Detail string `json:"detail"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
// Internal errors never expose their text to the client.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, common.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, common.ErrInvalidCredentials.Error())
	case errors.Is(err, common.ErrInvalidOldPassword):
		writeError(w, http.StatusUnauthorized, common.ErrInvalidOldPassword.Error())
	case errors.Is(err, common.ErrSamePassword):
		writeError(w, http.StatusBadRequest, common.ErrSamePassword.Error())
	case errors.Is(err, common.ErrEmailTaken):
		writeError(w, http.StatusConflict, common.ErrEmailTaken.Error())
	case errors.Is(err, common.ErrInvalidOrExpiredToken),
		errors.Is(err, common.ErrInvalidTokenType),
		errors.Is(err, common.ErrMalformedToken):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrUserNotFound):
		writeError(w, http.StatusNotFound, common.ErrUserNotFound.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := s.authSvc.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	}{ID: user.ID, Username: user.Username, Email: user.Email})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	token, err := s.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}{AccessToken: token, TokenType: "Bearer"})
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.reset.RequestReset(r.Context(), req.Email); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: genericResetMessage})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.reset.RedeemReset(r.Context(), req.Token, req.NewPassword); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "password updated"})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.reset.ChangePassword(r.Context(), req.Email, req.OldPassword, req.NewPassword); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "password updated"})
}

func (s *Server) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FromID   string `json:"from_id"`
		Name     string `json:"name"`
		Email    string `json:"email"`
		AutoName string `json:"auto_name"`
		Number   string `json:"number"`
		Comment  string `json:"comment"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	order := &models.Order{
		FromID:   req.FromID,
		Name:     req.Name,
		Email:    req.Email,
		AutoName: req.AutoName,
		Number:   req.Number,
		Comment:  req.Comment,
	}

	created, err := s.orders.Place(r.Context(), order)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, orderResponse(created))
}

func (s *Server) handleOrdersByFromID(w http.ResponseWriter, r *http.Request) {
	fromID := chi.URLParam(r, "id")

	result, err := s.orders.OrdersFor(r.Context(), fromID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if len(result) == 0 {
		writeError(w, http.StatusNotFound, "orders not found")
		return
	}

	out := make([]map[string]any, 0, len(result))
	for _, o := range result {
		out = append(out, orderResponse(o))
	}
	writeJSON(w, http.StatusOK, out)
}

func orderResponse(o *models.Order) map[string]any {
	return map[string]any{
		"id":        o.ID,
		"from_id":   o.FromID,
		"name":      o.Name,
		"auto_name": o.AutoName,
		"number":    o.Number,
		"comment":   o.Comment,
		"status":    o.Status,
	}
}
