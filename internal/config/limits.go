package config

const (
	// MaxFolderNameLength is the maximum length for folder names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255) and provide
	// reasonable UX (names should be short and descriptive).
	MaxFolderNameLength = 255

	// MaxFileNameLength is the maximum length for file names, extension
	// included. Same bound as folder names for consistency.
	MaxFileNameLength = 255

	// MaxUploadBatchBytes caps one multipart upload request across all of
	// its files.
	MaxUploadBatchBytes = 100 << 20
)
