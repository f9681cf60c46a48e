// Package access is the pure authorization engine. Every function takes the
// acting user, the resource with its ownership loaded, and the grant the
// caller already looked up (nil when the user holds none), and returns a plain
// decision. No repository access, no context state.
package access

import "driveshare/internal/domain/models"

// FolderAction names a folder-level mutation for decision purposes.
type FolderAction string

const (
	ActionUpload FolderAction = "upload"
	ActionRename FolderAction = "rename"
)

// CanView decides view-level access to a folder's content: the owner, any
// grant holder, or anyone when the folder is public. Used for downloads and
// single-file reads.
func CanView(userID string, folder *models.Folder, grant *models.Grant) bool {
	if folder.IsOwnedBy(userID) {
		return true
	}
	if grant != nil {
		return true
	}
	return folder.Visibility == models.VisibilityPublic
}

// CanListPrivate decides access to the private listing path: owner or grant
// holder only. Public visibility deliberately does not open this path; public
// folders are listed through their own entry point.
func CanListPrivate(userID string, folder *models.Folder, grant *models.Grant) bool {
	return folder.IsOwnedBy(userID) || grant != nil
}

// CanMutateFolder decides folder-level mutations (upload into the folder,
// rename the folder): the owner always, an edit-grant holder for every
// action, a read-grant holder never.
func CanMutateFolder(userID string, folder *models.Folder, grant *models.Grant, action FolderAction) bool {
	if folder.IsOwnedBy(userID) {
		return true
	}
	if grant == nil {
		return false
	}
	switch action {
	case ActionUpload, ActionRename:
		return grant.Permission == models.PermissionEdit
	default:
		return false
	}
}

// CanMutateFile decides delete/rename of a single file: the folder owner and
// edit-grant holders may touch any file; a read-grant holder only files they
// personally created.
func CanMutateFile(userID string, file *models.File, folder *models.Folder, grant *models.Grant) bool {
	if folder.IsOwnedBy(userID) {
		return true
	}
	if grant == nil {
		return false
	}
	if grant.Permission == models.PermissionEdit {
		return true
	}
	return file.CreatorID == userID
}
