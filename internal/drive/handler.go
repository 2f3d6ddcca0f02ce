package drive

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/andresuchdata/sellerdash/backend-go/internal/importer"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

const tenantHeader = "X-Tenant-ID"

// FolderLister lists folders and resolves folder paths.
type FolderLister interface {
	Source
	FindFolderByPath(ctx context.Context, path string) (string, error)
}

type Handler struct {
	service FolderLister
	syncer  *Syncer
}

func NewHandler(service FolderLister, syncer *Syncer) *Handler {
	return &Handler{
		service: service,
		syncer:  syncer,
	}
}

type importRequest struct {
	FolderID string   `json:"folder_id"`
	FileIDs  []string `json:"file_ids"`
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/drive/files", h.ListFiles).Methods("GET")
	router.HandleFunc("/api/drive/import", h.Import).Methods("POST")
}

func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	folderID := query.Get("folderId")
	folderPath := query.Get("path")

	var err error
	if folderPath != "" {
		folderID, err = h.service.FindFolderByPath(r.Context(), folderPath)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, ErrFolderNotFound) {
				status = http.StatusNotFound
			}
			writeError(w, status, err)
			return
		}
	}

	files, err := h.service.ListFiles(r.Context(), folderID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	importable := make([]*File, 0, len(files))
	for _, f := range files {
		if Importable(f.Name) {
			importable = append(importable, f)
		}
	}
	writeJSON(w, http.StatusOK, importable)
}

// Import downloads the folder's exports and reconciles them for the tenant.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	tenant, err := uuid.Parse(strings.TrimSpace(r.Header.Get(tenantHeader)))
	if err != nil || tenant == uuid.Nil {
		writeError(w, http.StatusUnauthorized, errors.New("missing or invalid tenant"))
		return
	}

	var req importRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
			return
		}
	}

	res, err := h.syncer.Sync(r.Context(), tenant, req.FolderID, req.FileIDs)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrNoFiles) || errors.Is(err, importer.ErrNoOrders) {
			status = http.StatusUnprocessableEntity
		}
		log.Error().Err(err).Str("tenant", tenant.String()).Msg("drive import failed")
		writeError(w, status, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
