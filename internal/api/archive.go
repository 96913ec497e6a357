package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/JaimeStill/provenance/pkg/handlers"
	"github.com/JaimeStill/provenance/pkg/routes"
	"github.com/JaimeStill/provenance/pkg/storage"
)

// archivePrefix is where submitted manifests are retained. Keys are
// manifests/{uploadID}/{fileName}.
const archivePrefix = "manifests/"

// archiveHandler exposes the raw manifest archive for audit review:
// paging through retained manifests and downloading originals by key.
type archiveHandler struct {
	store       storage.System
	logger      *slog.Logger
	maxListSize int32
}

func newArchiveHandler(
	store storage.System,
	logger *slog.Logger,
	maxListSize int,
) *archiveHandler {
	return &archiveHandler{
		store:       store,
		logger:      logger.With("handler", "archive"),
		maxListSize: int32(maxListSize),
	}
}

func (h *archiveHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/archive",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.list},
			{Method: "GET", Pattern: "/{key...}", Handler: h.download},
		},
	}
}

func (h *archiveHandler) list(w http.ResponseWriter, r *http.Request) {
	prefix := archivePrefix + r.URL.Query().Get("prefix")
	marker := r.URL.Query().Get("marker")

	maxResults, err := storage.ParseMaxResults(
		r.URL.Query().Get("max_results"),
		h.maxListSize,
	)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.store.List(r.Context(), prefix, marker, maxResults)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *archiveHandler) download(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if !strings.HasPrefix(key, archivePrefix) {
		key = archivePrefix + key
	}

	body, err := h.store.Download(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set(
		"Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", path.Base(key)),
	)
	w.WriteHeader(http.StatusOK)
	io.Copy(w, body)
}
