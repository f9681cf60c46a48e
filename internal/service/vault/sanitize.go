package vault

import (
	"path"
	"regexp"
	"strings"

	"driveshare/internal/domain/models"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// SanitizeName normalizes a folder name into a storage path segment: trims
// surrounding whitespace, collapses internal whitespace runs to a single
// underscore, and lowercases. Pure and deterministic; the same function
// computes both the persisted Folder.Path and the physical directory name.
func SanitizeName(name string) string {
	return strings.ToLower(whitespaceRun.ReplaceAllString(strings.TrimSpace(name), "_"))
}

// FolderPath builds the logical path persisted on the folder row:
// "/<visibility>/<sanitized-name>".
func FolderPath(visibility models.Visibility, name string) string {
	return "/" + string(visibility) + "/" + SanitizeName(name)
}

// folderKey is the storage key of a folder's physical directory. Shared
// folders keep one physical location, so the key is always namespaced under
// the owner regardless of who is acting.
func folderKey(f *models.Folder) string {
	return path.Join(f.OwnerID, strings.TrimPrefix(f.Path, "/"))
}

// fileKey is the storage key of a file inside its folder.
func fileKey(f *models.Folder, storedPath string) string {
	return path.Join(folderKey(f), storedPath)
}
