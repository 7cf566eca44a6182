package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/nexora/account-api/internal/platform/logger"
	"github.com/nexora/account-api/internal/service"
)

// AccountHandler handles the account management API requests.
type AccountHandler struct {
	accounts  service.AccountService
	validator *validator.Validate
}

// NewAccountHandler creates a new AccountHandler with the given dependencies.
func NewAccountHandler(accounts service.AccountService) *AccountHandler {
	return &AccountHandler{
		accounts:  accounts,
		validator: validator.New(),
	}
}

// Create handles POST /api/accounts. A successful registration returns
// 201 with an empty body; the account is fetched through the read
// endpoints.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest

	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	err := h.accounts.CreateAccount(r.Context(), service.CreateAccountRequest{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
	})
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// Confirm handles POST /api/accounts/confirm.
func (h *AccountHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req ConfirmEmailRequest

	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	if err := h.accounts.ConfirmEmail(r.Context(), req.Email, req.Token); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Login handles POST /api/auth/login.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	session, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, LoginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	})
}

// List handles GET /api/accounts.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	views, err := h.accounts.GetAccounts(r.Context())
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	out := make([]AccountResponse, 0, len(views))
	for _, v := range views {
		out = append(out, newAccountResponse(v))
	}
	RespondWithJSON(w, r, http.StatusOK, out)
}

// Get handles GET /api/accounts/{id}.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.accounts.GetAccount(r.Context(), id)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, newAccountResponse(*view))
}

// Exists handles GET /api/accounts/exists/{email}.
func (h *AccountHandler) Exists(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if email == "" {
		RespondWithError(w, r, http.StatusBadRequest, "email is required")
		return
	}

	exists, err := h.accounts.ExistsByEmail(r.Context(), email)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, ExistsResponse{Exists: exists})
}

// Update handles PUT /api/accounts/{id}. Like Create, the write path
// returns no entity payload.
func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req UpdateAccountRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	err = h.accounts.UpdateAccount(r.Context(), service.UpdateAccountRequest{
		ID:        id,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /api/accounts/{id}.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.accounts.DeleteAccount(r.Context(), id); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddRole handles POST /api/accounts/{id}/roles.
func (h *AccountHandler) AddRole(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req AddRoleRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	log := logger.FromContextOrDefault(r.Context(), slog.Default())
	if claims, ok := getClaimsFromContext(r); ok {
		log = log.With(slog.String("assigned_by", claims.AccountID.String()))
	}

	if err := h.accounts.AddToRole(r.Context(), id, req.Role); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	log.Info("role assigned",
		slog.String("account_id", id.String()),
		slog.String("role", req.Role))
	w.WriteHeader(http.StatusNoContent)
}
