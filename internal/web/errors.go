package web

// errors.go provides unified error response handling for the web layer.
//
// Every error is logged with its technical detail and the request id, then
// answered with the mapped user message: JSON for API clients, an alert
// fragment for HTMX requests, plain text otherwise.

import (
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/frota/internal/core"
	"github.com/JonMunkholm/frota/internal/logging"
	"github.com/JonMunkholm/frota/internal/mask"
	"github.com/JonMunkholm/frota/internal/tenant"
	"github.com/JonMunkholm/frota/internal/web/views"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	errRateLimited = errors.New("rate limit exceeded")
	errInvalidID   = errors.New("invalid uuid")
	errInvalidBody = errors.New("invalid request body")
)

// Postgres SQLSTATE codes answered with 409 Conflict.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Action  string            `json:"action,omitempty"`
	Code    string            `json:"code"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// statusFor picks the HTTP status for an error returned by the store.
func statusFor(err error) int {
	var verrs core.ValidationErrors
	var pgErr *pgconn.PgError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &verrs):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrImportTooLarge), errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrTooManyImports):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrUnknownEntity), errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrNoCompany), errors.Is(err, tenant.ErrNilCompany),
		errors.Is(err, mask.ErrUnknownKind), errors.Is(err, errInvalidID), errors.Is(err, errInvalidBody),
		errors.Is(err, core.ErrImportHeader):
		return http.StatusBadRequest
	case errors.As(err, &pgErr) && (pgErr.Code == pgUniqueViolation || pgErr.Code == pgForeignKeyViolation):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError handles error responses with user-friendly messages.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	log := logger.Warn
	if statusCode >= http.StatusInternalServerError {
		log = logger.Error
	}
	log("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	switch {
	case isHTMX(r):
		renderErrorPartial(w, r, userMsg, statusCode)
	case wantsJSON(r):
		respondErrorJSON(w, userMsg, fieldErrors(err), statusCode)
	default:
		respondErrorHTML(w, userMsg, statusCode)
	}
}

// respondStoreError answers err with the status statusFor picks.
func respondStoreError(w http.ResponseWriter, r *http.Request, err error) {
	respondError(w, r, err, statusFor(err))
}

func fieldErrors(err error) map[string]string {
	var verrs core.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs.Fields()
	}
	return nil
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, fields map[string]string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
		Fields:  fields,
	})
}

// respondErrorHTML writes a plain text error response.
func respondErrorHTML(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	http.Error(w, msg.Message+" ("+msg.Code+")", statusCode)
}

// renderErrorPartial renders an HTMX-compatible error fragment.
func renderErrorPartial(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := views.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render error alert", "error", err)
	}
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}
