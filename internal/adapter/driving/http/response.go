package httphandler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/ericfisherdev/vpsmonitor/internal/domain/model"
	"github.com/ericfisherdev/vpsmonitor/internal/mask"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// AccountResponse is the JSON representation of a monitored account. The cookie
// is always masked and the IP partially masked. Absent values are null.
type AccountResponse struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Ops          string  `json:"ops"`
	Cookie       string  `json:"cookie"`
	ValidUntil   *string `json:"valid_until"`
	IP           *string `json:"ip"`
	Location     *string `json:"location"`
	CreationDate *string `json:"creation_date"`
	CookieStatus string  `json:"cookie_status"`
	UpdateTime   *string `json:"update_time"`
}

// CreateAccountRequest is the JSON body for the create endpoint.
type CreateAccountRequest struct {
	Name   string `json:"name"`
	Ops    string `json:"ops"`
	Cookie string `json:"cookie"`
}

// UpdateAccountRequest is the JSON body for the update endpoint. Omitted
// fields are left unchanged.
type UpdateAccountRequest struct {
	Name   *string `json:"name"`
	Ops    *string `json:"ops"`
	Cookie *string `json:"cookie"`
}

// toUpdate trims the provided fields. It reports false if any provided field
// is blank.
func (req UpdateAccountRequest) toUpdate() (model.AccountUpdate, bool) {
	name, okName := trimmedField(req.Name)
	ops, okOps := trimmedField(req.Ops)
	cookie, okCookie := trimmedField(req.Cookie)
	if !okName || !okOps || !okCookie {
		return model.AccountUpdate{}, false
	}
	return model.AccountUpdate{Name: name, Ops: ops, Cookie: cookie}, true
}

func trimmedField(p *string) (*string, bool) {
	if p == nil {
		return nil, true
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil, false
	}
	return &v, true
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

func (h *Handler) toAccountResponses(accounts []model.Account) []AccountResponse {
	resp := make([]AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		resp = append(resp, h.toAccountResponse(a))
	}
	return resp
}

// toAccountResponse converts a domain Account to its masked JSON representation.
func (h *Handler) toAccountResponse(a model.Account) AccountResponse {
	return AccountResponse{
		ID:           a.ID,
		Name:         a.Name,
		Ops:          a.Ops,
		Cookie:       mask.Cookie(a.Cookie),
		ValidUntil:   h.formatTime(a.ValidUntil),
		IP:           optional(mask.IP(a.IP)),
		Location:     optional(a.Location),
		CreationDate: h.formatTime(a.CreationDate),
		CookieStatus: string(a.CookieStatus),
		UpdateTime:   h.formatTime(a.UpdateTime),
	}
}

func (h *Handler) formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.In(h.display).Format(time.RFC3339)
	return &s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
