// Package filetype classifies declared MIME types into the closed set stored
// on file rows. The table ships embedded so the binary is self-contained.
package filetype

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"driveshare/internal/domain/models"
)

//go:embed config/filetypes.yaml
var configFiles embed.FS

// Registry maps MIME types to file classifications.
type Registry struct {
	byMIME map[string]models.FileType
}

// NewRegistry loads the embedded classification table.
func NewRegistry() (*Registry, error) {
	data, err := configFiles.ReadFile("config/filetypes.yaml")
	if err != nil {
		return nil, fmt.Errorf("read filetypes table: %w", err)
	}

	var table map[string][]string
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("unmarshal filetypes table: %w", err)
	}

	r := &Registry{byMIME: make(map[string]models.FileType)}
	for typ, mimes := range table {
		for _, m := range mimes {
			r.byMIME[strings.ToLower(m)] = models.FileType(typ)
		}
	}
	return r, nil
}

// Classify returns the classification for a declared content type. Parameters
// ("; charset=utf-8") are ignored; unknown types classify as other.
func (r *Registry) Classify(contentType string) models.FileType {
	mime := contentType
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	mime = strings.ToLower(strings.TrimSpace(mime))

	if t, ok := r.byMIME[mime]; ok {
		return t
	}
	return models.FileTypeOther
}
