package models

import "time"

// FileType is the closed classification set derived from the declared MIME
// type at upload time.
type FileType string

const (
	FileTypeImage FileType = "image"
	FileTypePDF   FileType = "pdf"
	FileTypeDoc   FileType = "doc"
	FileTypeXLS   FileType = "xls"
	FileTypePPT   FileType = "ppt"
	FileTypeTxt   FileType = "txt"
	FileTypeZip   FileType = "zip"
	FileTypeOther FileType = "other"
)

// File is a stored file inside a folder. Name and Path both carry the full
// file name including the extension; Path doubles as the storage segment and
// is unique within the folder. CreatorID is the uploader, who may differ from
// the folder owner when the folder is shared.
type File struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Path      string    `json:"path" db:"path"`
	Type      FileType  `json:"type" db:"type"`
	Size      int64     `json:"size" db:"size"`
	FolderID  string    `json:"folder_id" db:"folder_id"`
	CreatorID string    `json:"creator_id" db:"creator_id"`
	Folder    *Folder   `json:"folder,omitempty"`
	Creator   *User     `json:"creator,omitempty"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
