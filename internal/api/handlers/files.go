package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nikhilbhutani/legalrag/internal/document"
	"github.com/nikhilbhutani/legalrag/internal/models"
	"github.com/nikhilbhutani/legalrag/pkg/textextract"
)

const maxUploadBytes = 32 << 20

type FileService interface {
	Upload(ctx context.Context, req document.UploadRequest) (*models.FileMetadata, error)
	Get(ctx context.Context, fileID int64) (*models.FileMetadata, error)
}

type FileHandler struct {
	svc FileService
}

func NewFileHandler(svc FileService) *FileHandler {
	return &FileHandler{svc: svc}
}

func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_form", "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_form", "file required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_form", "could not read file")
		return
	}

	meta, err := h.svc.Upload(r.Context(), document.UploadRequest{
		FileName: header.Filename,
		CaseType: r.FormValue("caseType"),
		Date:     r.FormValue("date"),
		Data:     data,
	})
	if errors.Is(err, textextract.ErrUnsupportedType) {
		respondError(w, http.StatusBadRequest, "unsupported_file_type", "only .pdf and .docx files are accepted")
		return
	}
	if err != nil {
		slog.Error("upload failed", "file_name", header.Filename, "error", err)
		respondError(w, http.StatusInternalServerError, "upload_failed", "failed to upload file")
		return
	}

	respondOK(w, http.StatusAccepted, "file uploaded, processing started", map[string]any{
		"file_id":  meta.FileID,
		"file_url": meta.FileURL,
		"status":   meta.Status,
	})
}

func (h *FileHandler) Get(w http.ResponseWriter, r *http.Request) {
	fileID, err := strconv.ParseInt(chi.URLParam(r, "fileID"), 10, 64)
	if err != nil || fileID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid file id")
		return
	}

	meta, err := h.svc.Get(r.Context(), fileID)
	if errors.Is(err, document.ErrNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "file not found")
		return
	}
	if err != nil {
		slog.Error("get file failed", "file_id", fileID, "error", err)
		respondError(w, http.StatusInternalServerError, "internal", "failed to load file")
		return
	}
	respondOK(w, http.StatusOK, "", meta)
}
