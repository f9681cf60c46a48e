package models

import "time"

// Permission is the level attached to a grant. Read allows viewing only; edit
// additionally allows uploads, folder rename, and mutation of any file.
type Permission string

const (
	PermissionRead Permission = "read"
	PermissionEdit Permission = "edit"
)

func (p Permission) Valid() bool {
	return p == PermissionRead || p == PermissionEdit
}

// Grant authorizes one user on one folder at a permission level. One row per
// user/folder pair; the folder owner never holds a grant on their own folder.
type Grant struct {
	ID         string     `json:"id" db:"id"`
	UserID     string     `json:"user_id" db:"user_id"`
	FolderID   string     `json:"folder_id" db:"folder_id"`
	Permission Permission `json:"permission" db:"permission"`
	User       *User      `json:"user,omitempty"`
	Folder     *Folder    `json:"folder,omitempty"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}
