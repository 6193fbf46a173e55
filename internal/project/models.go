package project

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"trimscript/internal/transcript"
)

// ErrNotFound is returned when no project matches.
var ErrNotFound = errors.New("project not found")

// Project is the summary row for one editing project.
type Project struct {
	ID         string    `json:"id"`
	SourcePath string    `json:"source_path"`
	Title      string    `json:"title"`
	Language   string    `json:"language,omitempty"`
	Duration   float64   `json:"duration"`
	TokenCount int       `json:"token_count"`
	KeptCount  int       `json:"kept_count"`
	Version    uint64    `json:"version"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ShortID returns the first eight characters of the ID for display.
func (p Project) ShortID() string {
	if len(p.ID) > 8 {
		return p.ID[:8]
	}
	return p.ID
}

// Loaded is a project with its restored edit session.
type Loaded struct {
	Project Project
	Session *transcript.Session
}

func inferTitleFromPath(path string) string {
	base := strings.TrimSpace(filepath.Base(path))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "Untitled"
	}
	cleaned := strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
	if cleaned == "" {
		return "Untitled"
	}
	return cleaned
}
