package project

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const projectColumns = `p.id, p.source_path, p.title, p.language, p.duration, p.created_at, p.updated_at,
    COALESCE(k.kept_json, '[]'), COALESCE(k.version, 0),
    (SELECT COUNT(1) FROM tokens t WHERE t.project_id = p.id)`

const projectFrom = `FROM projects p LEFT JOIN kept_state k ON k.project_id = p.id`

func scanProject(scanner interface{ Scan(dest ...any) error }) (*Project, []int, error) {
	var (
		p          Project
		language   sql.NullString
		createdRaw string
		updatedRaw string
		keptJSON   string
		version    int64
	)
	if err := scanner.Scan(
		&p.ID,
		&p.SourcePath,
		&p.Title,
		&language,
		&p.Duration,
		&createdRaw,
		&updatedRaw,
		&keptJSON,
		&version,
		&p.TokenCount,
	); err != nil {
		return nil, nil, err
	}
	p.Language = language.String
	p.Version = uint64(version)
	if t, err := parseTimeString(createdRaw); err == nil {
		p.CreatedAt = t
	}
	if t, err := parseTimeString(updatedRaw); err == nil {
		p.UpdatedAt = t
	}
	kept, err := decodeIndices(keptJSON)
	if err != nil {
		return nil, nil, fmt.Errorf("project %s kept state: %w", p.ID, err)
	}
	p.KeptCount = len(kept)
	return &p, kept, nil
}

func encodeIndices(indices []int) (string, error) {
	if indices == nil {
		indices = []int{}
	}
	data, err := json.Marshal(indices)
	if err != nil {
		return "", fmt.Errorf("encode indices: %w", err)
	}
	return string(data), nil
}

func decodeIndices(raw string) ([]int, error) {
	var out []int
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []int{}
	}
	return out, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

// Fixed-width so updated_at sorts lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func timestampNow() string {
	return time.Now().UTC().Format(timestampLayout)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
