package verification

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/provenance/pkg/handlers"
	"github.com/JaimeStill/provenance/pkg/middleware"
	"github.com/JaimeStill/provenance/pkg/routes"
)

var (
	errMissingCode     = errors.New("qrCodeId query parameter is required")
	errMissingIdentity = errors.New("missing user identity")
)

// Handler provides HTTP endpoints for verification operations.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "verification"),
	}
}

// Routes returns the route group definition for verification endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/units/verify", Handler: h.Verify},
			{Method: "POST", Pattern: "/units/verify/{qrCodeId}/reconfirm", Handler: h.Reconfirm},
			{Method: "GET", Pattern: "/scans", Handler: h.Stats},
		},
	}
}

// Verify classifies a scanned identifier and records the attempt. Codes
// that resolve to no unit return 404 with an unknown classification in
// the body; the scan is still recorded.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	qrCodeID := r.URL.Query().Get("qrCodeId")
	if qrCodeID == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errMissingCode)
		return
	}

	identity, _ := middleware.IdentityFrom(r.Context())
	location := r.URL.Query().Get("location")

	outcome, err := h.sys.Verify(r.Context(), qrCodeID, identity.Email, location)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	status := http.StatusOK
	if outcome.Result == ResultUnknown {
		status = http.StatusNotFound
	}
	handlers.RespondJSON(w, status, outcome)
}

// Reconfirm re-checks a unit's anchoring transaction against the ledger.
func (h *Handler) Reconfirm(w http.ResponseWriter, r *http.Request) {
	qrCodeID := r.PathValue("qrCodeId")

	identity, _ := middleware.IdentityFrom(r.Context())

	outcome, err := h.sys.Reconfirm(r.Context(), qrCodeID, identity.Email)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, outcome)
}

// Stats reports aggregate verification activity for one actor. The
// userEmail query parameter overrides the caller's own identity, which
// lets regulators inspect any actor's history.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	userEmail := r.URL.Query().Get("userEmail")
	if userEmail == "" {
		identity, ok := middleware.IdentityFrom(r.Context())
		if !ok || identity.Email == "" {
			handlers.RespondError(w, h.logger, http.StatusUnauthorized, errMissingIdentity)
			return
		}
		userEmail = identity.Email
	}

	report, err := h.sys.Stats(r.Context(), userEmail)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, report)
}
