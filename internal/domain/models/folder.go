package models

import "time"

// Visibility governs the default view policy for users holding no grant.
type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityPublic  Visibility = "public"
)

func (v Visibility) Valid() bool {
	return v == VisibilityPrivate || v == VisibilityPublic
}

// Folder is an owned container of files. Path is the sanitized logical path
// ("/<visibility>/<sanitized-name>"), unique across all owners. IsShared is
// derived state: true iff at least one grant exists for the folder.
type Folder struct {
	ID         string     `json:"id" db:"id"`
	Name       string     `json:"name" db:"name"`
	Path       string     `json:"path" db:"path"`
	Visibility Visibility `json:"visibility" db:"visibility"`
	IsShared   bool       `json:"is_shared" db:"is_shared"`
	OwnerID    string     `json:"owner_id" db:"owner_id"`
	Owner      *User      `json:"owner,omitempty"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

// IsOwnedBy reports whether the given user created this folder. Owners hold
// unconditional rights; no grant ever references them.
func (f *Folder) IsOwnedBy(userID string) bool {
	return f.OwnerID == userID
}
