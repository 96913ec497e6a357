package batches

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"

	"github.com/google/uuid"

	"github.com/JaimeStill/provenance/internal/manifest"
	"github.com/JaimeStill/provenance/internal/units"
	"github.com/JaimeStill/provenance/pkg/handlers"
	"github.com/JaimeStill/provenance/pkg/middleware"
	"github.com/JaimeStill/provenance/pkg/pagination"
	"github.com/JaimeStill/provenance/pkg/routes"
)

// RoleManufacturer is the issuing role; only manufacturers may submit batches.
const RoleManufacturer = "manufacturer"

var (
	errMissingIdentity = errors.New("missing user identity")
	errNotManufacturer = errors.New("submitting batches requires the manufacturer role")
	errInvalidRequest  = errors.New("invalid request body")
	errInvalidID       = errors.New("invalid upload id")
)

// Handler provides HTTP endpoints for batch operations.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// SubmitRequest is the JSON body for a batch submission.
type SubmitRequest struct {
	FileContent string `json:"fileContent"`
	FileName    string `json:"fileName"`
	FileSize    int64  `json:"fileSize"`
}

// SubmitResponse is the JSON projection of a submission outcome.
type SubmitResponse struct {
	UploadID         uuid.UUID                  `json:"uploadId"`
	Status           string                     `json:"status"`
	ValidationResult *manifest.ValidationResult `json:"validationResult"`
	BlockchainTx     string                     `json:"blockchainTx,omitempty"`
	QRCodesGenerated int                        `json:"qrCodesGenerated"`
	Failures         []units.Failure            `json:"failures,omitempty"`
	ProcessingTimeMS int64                      `json:"processingTimeMs"`
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "batches"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for batch endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/batches",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Submit},
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "GET", Pattern: "/{id}/manifest", Handler: h.DownloadManifest},
		},
	}
}

// Submit accepts a manifest submission from a manufacturer, runs the
// anchoring pipeline, and reports the outcome. Validation failures return
// 400 with the full ValidationResult.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok || identity.Email == "" {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, errMissingIdentity)
		return
	}
	if identity.Role != RoleManufacturer {
		handlers.RespondError(w, h.logger, http.StatusForbidden, errNotManufacturer)
		return
	}

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errInvalidRequest)
		return
	}
	if req.FileName == "" || req.FileContent == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errInvalidRequest)
		return
	}
	if req.FileSize == 0 {
		req.FileSize = int64(len(req.FileContent))
	}

	result, err := h.sys.Submit(r.Context(), SubmitCommand{
		FileContent:  []byte(req.FileContent),
		FileName:     req.FileName,
		FileSize:     req.FileSize,
		UserEmail:    identity.Email,
		Organization: identity.Organization,
	})
	if err != nil {
		if errors.Is(err, ErrManifestInvalid) && result != nil {
			handlers.RespondJSON(w, http.StatusBadRequest, map[string]any{
				"error":             err.Error(),
				"code":              "validation_error",
				"uploadId":         result.Upload.ID,
				"validationResult": result.Upload.ValidationResult,
			})
			return
		}
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, SubmitResponse{
		UploadID:         result.Upload.ID,
		Status:           result.Upload.Status,
		ValidationResult: result.Upload.ValidationResult,
		BlockchainTx:     result.Upload.BlockchainTx,
		QRCodesGenerated: result.Upload.QRCodesGenerated,
		Failures:         result.Failures,
		ProcessingTimeMS: result.Upload.ProcessingTimeMS,
	})
}

// List returns a paginated list of uploads with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single upload by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errInvalidID)
		return
	}

	upload, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, upload)
}

// DownloadManifest streams the archived raw manifest for an upload.
func (h *Handler) DownloadManifest(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errInvalidID)
		return
	}

	body, fileName, err := h.sys.DownloadManifest(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set(
		"Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", path.Base(fileName)),
	)
	w.WriteHeader(http.StatusOK)
	io.Copy(w, body)
}
