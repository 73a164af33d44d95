// Package httphandler is the REST driving adapter for the VPS monitor.
package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ericfisherdev/vpsmonitor/internal/application"
	"github.com/ericfisherdev/vpsmonitor/internal/domain/model"
	"github.com/ericfisherdev/vpsmonitor/internal/domain/port/driven"
)

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	store      driven.AccountStore
	refreshSvc *application.RefreshService
	display    *time.Location
	logger     *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. Instants in
// responses are rendered in display.
func NewHandler(
	store driven.AccountStore,
	refreshSvc *application.RefreshService,
	display *time.Location,
	logger *slog.Logger,
) *Handler {
	if display == nil {
		display = time.UTC
	}
	return &Handler{
		store:      store,
		refreshSvc: refreshSvc,
		display:    display,
		logger:     logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with CORS, logging, and recovery middleware. When staticDir is non-empty the
// dashboard build in it is served for every non-API GET.
func NewServeMux(h *Handler, logger *slog.Logger, staticDir string) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/vps", h.ListAccounts)
	mux.HandleFunc("POST /api/vps", h.CreateAccount)
	mux.HandleFunc("POST /api/vps/refresh-all", h.RefreshAll)
	mux.HandleFunc("GET /api/vps/{id}", h.GetAccount)
	mux.HandleFunc("PUT /api/vps/{id}", h.UpdateAccount)
	mux.HandleFunc("DELETE /api/vps/{id}", h.DeleteAccount)
	mux.HandleFunc("POST /api/vps/{id}/refresh", h.RefreshAccount)
	mux.HandleFunc("GET /api/health", h.Health)

	if staticDir != "" {
		mux.Handle("GET /", spaHandler(staticDir))
	}

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = corsMiddleware(wrapped)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// ListAccounts returns every account, newest first, with sensitive fields masked.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.store.ListAll(r.Context())
	if err != nil {
		h.internalError(w, "failed to list accounts", err)
		return
	}

	writeJSON(w, http.StatusOK, h.toAccountResponses(accounts))
}

// GetAccount returns a single account by id.
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	acct, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		h.internalError(w, "failed to get account", err, "account_id", id)
		return
	}
	if acct == nil {
		writeError(w, http.StatusNotFound, msgNotFound)
		return
	}

	writeJSON(w, http.StatusOK, h.toAccountResponse(*acct))
}

// CreateAccount stores a new account, refreshes it immediately, and returns
// the refreshed record. If the refresh errors, the created record is returned
// as stored.
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in := model.NewAccount{
		Name:   strings.TrimSpace(req.Name),
		Ops:    strings.TrimSpace(req.Ops),
		Cookie: strings.TrimSpace(req.Cookie),
	}
	if in.Name == "" || in.Ops == "" || in.Cookie == "" {
		writeError(w, http.StatusBadRequest, "name, ops, and cookie are required.")
		return
	}

	id, err := h.store.Create(r.Context(), in)
	if err != nil {
		h.internalError(w, "failed to create account", err, "name", in.Name)
		return
	}

	acct, ok := h.refreshOrReload(w, r, id, "VPS was created but could not be loaded.")
	if !ok {
		return
	}

	writeJSON(w, http.StatusCreated, h.toAccountResponse(*acct))
}

// UpdateAccount applies a partial update, refreshes the account, and returns
// the refreshed record. If the refresh errors, the updated record is returned.
func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	upd, ok := req.toUpdate()
	if !ok {
		writeError(w, http.StatusBadRequest, "name, ops, and cookie must not be empty.")
		return
	}

	existing, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		h.internalError(w, "failed to get account", err, "account_id", id)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, msgNotFound)
		return
	}

	if err := h.store.Update(r.Context(), id, upd); err != nil {
		if errors.Is(err, driven.ErrAccountNotFound) {
			writeError(w, http.StatusNotFound, msgNotFound)
			return
		}
		h.internalError(w, "failed to update account", err, "account_id", id)
		return
	}

	acct, ok := h.refreshOrReload(w, r, id, "Failed to reload VPS after update.")
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, h.toAccountResponse(*acct))
}

// DeleteAccount removes an account.
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, driven.ErrAccountNotFound) {
			writeError(w, http.StatusNotFound, msgNotFound)
			return
		}
		h.internalError(w, "failed to delete account", err, "account_id", id)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RefreshAccount scrapes one account now and returns the updated record.
func (h *Handler) RefreshAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	acct, err := h.refreshSvc.RefreshOne(r.Context(), id)
	if err != nil {
		if errors.Is(err, driven.ErrAccountNotFound) {
			writeError(w, http.StatusNotFound, msgNotFound)
			return
		}
		h.logger.Error("failed to refresh account", "account_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to refresh VPS")
		return
	}

	writeJSON(w, http.StatusOK, h.toAccountResponse(*acct))
}

// RefreshAll scrapes every account now. Accounts whose refresh failed are
// missing from the response. A batch cut short by cancellation still returns
// the accounts refreshed before it stopped.
func (h *Handler) RefreshAll(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.refreshSvc.RefreshAll(r.Context())
	if err != nil {
		if accounts == nil {
			h.logger.Error("failed to refresh all accounts", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to refresh VPS records")
			return
		}
		h.logger.Warn("refresh all interrupted", "refreshed", len(accounts), "error", err)
	}

	writeJSON(w, http.StatusOK, h.toAccountResponses(accounts))
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().In(h.display).Format(time.RFC3339),
	})
}

const msgNotFound = "VPS not found"

// refreshOrReload refreshes id and falls back to the stored record when the
// refresh errors, so a write that succeeded is never reported as failed.
// It writes the error response itself and reports false when neither works.
func (h *Handler) refreshOrReload(w http.ResponseWriter, r *http.Request, id int64, failMsg string) (*model.Account, bool) {
	acct, err := h.refreshSvc.RefreshOne(r.Context(), id)
	if err == nil {
		return acct, true
	}
	h.logger.Warn("refresh after write failed", "account_id", id, "error", err)

	acct, err = h.store.GetByID(r.Context(), id)
	if err != nil || acct == nil {
		h.logger.Error("reload after write failed", "account_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, failMsg)
		return nil, false
	}
	return acct, true
}

// internalError logs err and writes a 500. Undecryptable cookies get a message
// pointing at the key configuration; everything else is generic.
func (h *Handler) internalError(w http.ResponseWriter, msg string, err error, args ...any) {
	h.logger.Error(msg, append(args, "error", err)...)
	if errors.Is(err, driven.ErrEncryptionKeyInvalid) {
		writeError(w, http.StatusInternalServerError, driven.ErrEncryptionKeyInvalid.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// parseID reads the {id} path value. It writes a 400 and reports false when
// the value is not a positive integer.
func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid VPS id")
		return 0, false
	}
	return id, true
}
