package handler

import (
	"log/slog"
	"net/http"

	"driveshare/internal/domain/models"
	"driveshare/internal/domain/services"
	"driveshare/internal/httputil"
)

// FolderHandler handles folder HTTP requests.
type FolderHandler struct {
	folderService services.FolderService
	logger        *slog.Logger
}

// NewFolderHandler creates a new folder handler.
func NewFolderHandler(folderService services.FolderService, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		folderService: folderService,
		logger:        logger,
	}
}

// CreateFolder creates a new folder
// POST /api/folders
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	principal, ok := httputil.GetPrincipal(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req services.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	folder, err := h.folderService.Create(r.Context(), principal, &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// ListFolders lists the principal's own folders
// GET /api/folders
func (h *FolderHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	principal, ok := httputil.GetPrincipal(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	folders, err := h.folderService.ListOwned(r.Context(), principal)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folders)
}

// ListSharedWithMe lists folders other owners shared with the principal
// GET /api/folders/shared-with-me
func (h *FolderHandler) ListSharedWithMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := httputil.GetPrincipal(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	folders, err := h.folderService.ListSharedWithMe(r.Context(), principal)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folders)
}

// ListSharedByMe lists the principal's folders that carry grants
// GET /api/folders/shared-by-me
func (h *FolderHandler) ListSharedByMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := httputil.GetPrincipal(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	folders, err := h.folderService.ListSharedByMe(r.Context(), principal)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folders)
}

// ListPublicFolders lists a user's public folders by email, unauthenticated
// GET /api/public/users/{email}/folders
func (h *FolderHandler) ListPublicFolders(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")
	if email == "" {
		httputil.RespondError(w, http.StatusBadRequest, "email is required")
		return
	}

	folders, err := h.folderService.ListPublicByOwnerEmail(r.Context(), email)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folders)
}

type shareRequest struct {
	Targets []services.ShareTarget `json:"targets"`
}

// ShareFolder grants access to one or more users
// POST /api/folders/{id}/share
func (h *FolderHandler) ShareFolder(w http.ResponseWriter, r *http.Request) {
	principal, ok := httputil.GetPrincipal(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req shareRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.folderService.Share(r.Context(), principal, id, req.Targets)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// ListGrants lists a folder's grants
// GET /api/folders/{id}/grants
func (h *FolderHandler) ListGrants(w http.ResponseWriter, r *http.Request) {
	principal, ok := httputil.GetPrincipal(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	grants, err := h.folderService.ListGrants(r.Context(), principal, id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, grants)
}

type updateGrantRequest struct {
	Permission models.Permission `json:"permission"`
}

// UpdateGrant changes a grant's permission level
// PATCH /api/folders/{id}/grants/{userId}
func (h *FolderHandler) UpdateGrant(w http.ResponseWriter, r *http.Request) {
	principal, ok := httputil.GetPrincipal(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	var req updateGrantRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	grant, err := h.folderService.UpdateGrantPermission(r.Context(), principal, id, userID, req.Permission)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, grant)
}

// RemoveGrant revokes a user's access to a folder
// DELETE /api/folders/{id}/grants/{userId}
func (h *FolderHandler) RemoveGrant(w http.ResponseWriter, r *http.Request) {
	principal, ok := httputil.GetPrincipal(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	if err := h.folderService.RemoveGrant(r.Context(), principal, id, userID); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type renameRequest struct {
	Name string `json:"name"`
}

// RenameFolder renames a folder
// PATCH /api/folders/{id}
func (h *FolderHandler) RenameFolder(w http.ResponseWriter, r *http.Request) {
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

	folder, err := h.folderService.Rename(r.Context(), principal, id, req.Name)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// DeleteFolder removes a folder, its files and its grants
// DELETE /api/folders/{id}
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	principal, ok := httputil.GetPrincipal(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.folderService.Remove(r.Context(), principal, id); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
