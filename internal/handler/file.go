package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"driveshare/internal/config"
	"driveshare/internal/domain/services"
	"driveshare/internal/httputil"
)

// FileHandler handles file HTTP requests.
type FileHandler struct {
	fileService services.FileService
	logger      *slog.Logger
}

// NewFileHandler creates a new file handler.
func NewFileHandler(fileService services.FileService, logger *slog.Logger) *FileHandler {
	return &FileHandler{
		fileService: fileService,
		logger:      logger,
	}
}

// UploadFiles stores a multipart batch into a folder. Files travel under the
// "files" form field.
// POST /api/folders/{id}/files
func (h *FileHandler) UploadFiles(w http.ResponseWriter, r *http.Request) {
	principal, ok := httputil.GetPrincipal(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	folderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadBatchBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		httputil.RespondError(w, http.StatusBadRequest, "no files in upload")
		return
	}

	uploads := make([]services.Upload, 0, len(headers))
	opened := make([]io.Closer, 0, len(headers))
	defer func() {
		for _, c := range opened {
			c.Close()
		}
	}()

	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, fmt.Sprintf("cannot read file %q", header.Filename))
			return
		}
		opened = append(opened, f)
		uploads = append(uploads, services.Upload{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Content:     f,
		})
	}

	result, err := h.fileService.Upload(r.Context(), principal, folderID, uploads)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, result)
}

// ListFiles lists a folder's files for owners and grant holders
// GET /api/folders/{id}/files
func (h *FileHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	principal, ok := httputil.GetPrincipal(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	files, err := h.fileService.ListInFolder(r.Context(), principal, id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, files)
}

// ListPublicFiles lists a public folder's files, unauthenticated
// GET /api/public/folders/{id}/files
func (h *FileHandler) ListPublicFiles(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	files, err := h.fileService.ListInPublicFolder(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, files)
}

// ListMyFiles lists the principal's uploads across folders
// GET /api/files/mine
func (h *FileHandler) ListMyFiles(w http.ResponseWriter, r *http.Request) {
	principal, ok := httputil.GetPrincipal(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	files, err := h.fileService.ListMine(r.Context(), principal)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, files)
}

// DownloadFile streams a file's content
// GET /api/files/{id}/download
func (h *FileHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	principal, ok := httputil.GetPrincipal(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	result, err := h.fileService.Download(r.Context(), principal, id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	defer result.Content.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Name))
	if result.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(result.Size, 10))
	}

	if _, err := io.Copy(w, result.Content); err != nil {
		// Headers are gone; nothing to do but log.
		h.logger.Error("download stream interrupted", "error", err)
	}
}

// RenameFile renames a file, keeping its extension
// PATCH /api/files/{id}
func (h *FileHandler) RenameFile(w http.ResponseWriter, r *http.Request) {
	principal, ok := httputil.GetPrincipal(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req renameRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	file, err := h.fileService.Rename(r.Context(), principal, id, req.Name)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, file)
}

// DeleteFile removes a file
// DELETE /api/files/{id}
func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	principal, ok := httputil.GetPrincipal(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.fileService.Remove(r.Context(), principal, id); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
