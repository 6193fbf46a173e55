package project

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"trimscript/internal/services"
	"trimscript/internal/transcript"
)

// Create stores a new project seeded with t and a session that keeps every
// token.
func (s *Store) Create(ctx context.Context, sourcePath, language string, t *transcript.Transcript) (*Loaded, error) {
	ctx = ensureContext(ctx)
	if t == nil {
		return nil, errors.New("create project: transcript is required")
	}
	id := uuid.NewString()
	now := timestampNow()
	session := transcript.NewSession(t)

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO projects (id, source_path, title, language, duration, created_at, updated_at)
            VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, sourcePath, inferTitleFromPath(sourcePath), nullableString(language), t.Duration(), now, now,
		); err != nil {
			return fmt.Errorf("insert project: %w", err)
		}
		if err := insertTokens(ctx, tx, id, t.Tokens()); err != nil {
			return err
		}
		return writeSession(ctx, tx, id, session)
	})
	if err != nil {
		return nil, err
	}

	project, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Loaded{Project: *project, Session: session}, nil
}

// ReplaceTranscript swaps the transcript of an existing project and resets
// its kept state and undo history.
func (s *Store) ReplaceTranscript(ctx context.Context, id, language string, t *transcript.Transcript) (*Loaded, error) {
	ctx = ensureContext(ctx)
	if t == nil {
		return nil, errors.New("replace transcript: transcript is required")
	}
	session := transcript.NewSession(t)
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE projects SET language = ?, duration = ?, updated_at = ? WHERE id = ?`,
			nullableString(language), t.Duration(), timestampNow(), id,
		)
		if err != nil {
			return fmt.Errorf("update project: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return notFound(id)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM tokens WHERE project_id = ?`, id); err != nil {
			return fmt.Errorf("clear tokens: %w", err)
		}
		if err := insertTokens(ctx, tx, id, t.Tokens()); err != nil {
			return err
		}
		return writeSession(ctx, tx, id, session)
	})
	if err != nil {
		return nil, err
	}
	project, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Loaded{Project: *project, Session: session}, nil
}

// SaveSession persists the kept indices, version, and undo stack.
func (s *Store) SaveSession(ctx context.Context, id string, session *transcript.Session) error {
	ctx = ensureContext(ctx)
	if session == nil {
		return errors.New("save session: session is required")
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE projects SET updated_at = ? WHERE id = ?`, timestampNow(), id)
		if err != nil {
			return fmt.Errorf("touch project: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return notFound(id)
		}
		return writeSession(ctx, tx, id, session)
	})
}

// Load restores a project and its session. id may be a unique prefix.
func (s *Store) Load(ctx context.Context, id string) (*Loaded, error) {
	ctx = ensureContext(ctx)
	project, kept, err := s.getWithKept(ctx, id)
	if err != nil {
		return nil, err
	}

	tokens, err := s.loadTokens(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	t, err := transcript.NewTranscript(tokens)
	if err != nil {
		return nil, fmt.Errorf("project %s transcript: %w", project.ShortID(), err)
	}
	history, err := s.loadHistory(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	session, err := transcript.RestoreSession(t, kept, history, project.Version)
	if err != nil {
		return nil, fmt.Errorf("project %s session: %w", project.ShortID(), err)
	}
	return &Loaded{Project: *project, Session: session}, nil
}

// Get returns the project summary. id may be a unique prefix.
func (s *Store) Get(ctx context.Context, id string) (*Project, error) {
	project, _, err := s.getWithKept(ensureContext(ctx), id)
	return project, err
}

// List returns every project, most recently updated first.
func (s *Store) List(ctx context.Context) ([]Project, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+projectColumns+` `+projectFrom+` ORDER BY p.updated_at DESC, p.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var out []Project
	for rows.Next() {
		project, _, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, *project)
	}
	return out, rows.Err()
}

// Latest returns the most recently updated project.
func (s *Store) Latest(ctx context.Context) (*Project, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` `+projectFrom+` ORDER BY p.updated_at DESC, p.created_at DESC LIMIT 1`)
	project, _, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "project", "latest", "no projects yet; run 'trimscript transcribe <media>'", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("latest project: %w", err)
	}
	return project, nil
}

// Remove deletes a project and everything stored with it.
func (s *Store) Remove(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)
	project, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"history", "kept_state", "tokens"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE project_id = ?`, project.ID); err != nil {
				return fmt.Errorf("delete %s: %w", table, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, project.ID); err != nil {
			return fmt.Errorf("delete project: %w", err)
		}
		return nil
	})
}

func (s *Store) getWithKept(ctx context.Context, id string) (*Project, []int, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil, notFound(id)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+projectColumns+` `+projectFrom+` WHERE p.id = ? OR p.id LIKE ? ORDER BY p.id LIMIT 2`,
		id, escapeLike(id)+"%")
	if err != nil {
		return nil, nil, fmt.Errorf("get project: %w", err)
	}
	defer rows.Close()

	var (
		matches []*Project
		kept    []int
	)
	for rows.Next() {
		project, k, err := scanProject(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("scan project: %w", err)
		}
		if project.ID == id {
			return project, k, nil
		}
		matches = append(matches, project)
		kept = k
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	switch len(matches) {
	case 0:
		return nil, nil, notFound(id)
	case 1:
		return matches[0], kept, nil
	default:
		return nil, nil, services.Wrap(services.ErrValidation, "project", "resolve", fmt.Sprintf("id prefix %q is ambiguous", id), nil)
	}
}

func (s *Store) loadTokens(ctx context.Context, id string) ([]transcript.Token, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT idx, text, start_s, end_s, is_gap FROM tokens WHERE project_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, fmt.Errorf("load tokens: %w", err)
	}
	defer rows.Close()

	var tokens []transcript.Token
	for rows.Next() {
		var (
			tok   transcript.Token
			isGap int
		)
		if err := rows.Scan(&tok.Index, &tok.Text, &tok.Start, &tok.End, &isGap); err != nil {
			return nil, fmt.Errorf("scan token: %w", err)
		}
		if tok.Index != len(tokens) {
			return nil, fmt.Errorf("project %s: token index %d out of sequence", id, tok.Index)
		}
		tok.IsGap = isGap != 0
		tokens = append(tokens, tok)
	}
	return tokens, rows.Err()
}

func (s *Store) loadHistory(ctx context.Context, id string) ([][]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kept_json FROM history WHERE project_id = ? ORDER BY depth`, id)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	defer rows.Close()

	var history [][]int
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		snap, err := decodeIndices(raw)
		if err != nil {
			return nil, fmt.Errorf("decode history: %w", err)
		}
		history = append(history, snap)
	}
	return history, rows.Err()
}

func insertTokens(ctx context.Context, tx *sql.Tx, id string, tokens []transcript.Token) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO tokens (project_id, idx, text, start_s, end_s, is_gap) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare token insert: %w", err)
	}
	defer stmt.Close()
	for _, tok := range tokens {
		if _, err := stmt.ExecContext(ctx, id, tok.Index, tok.Text, tok.Start, tok.End, boolToInt(tok.IsGap)); err != nil {
			return fmt.Errorf("insert token %d: %w", tok.Index, err)
		}
	}
	return nil
}

func writeSession(ctx context.Context, tx *sql.Tx, id string, session *transcript.Session) error {
	snap := session.Snapshot()
	history := session.History()

	keptJSON, err := encodeIndices(snap.Indices)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO kept_state (project_id, kept_json, version) VALUES (?, ?, ?)
        ON CONFLICT(project_id) DO UPDATE SET kept_json = excluded.kept_json, version = excluded.version`,
		id, keptJSON, int64(snap.Version),
	); err != nil {
		return fmt.Errorf("write kept state: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM history WHERE project_id = ?`, id); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	for depth, entry := range history {
		raw, err := encodeIndices(entry)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO history (project_id, depth, kept_json) VALUES (?, ?, ?)`, id, depth, raw,
		); err != nil {
			return fmt.Errorf("write history %d: %w", depth, err)
		}
	}
	return nil
}

func notFound(id string) error {
	return services.Wrap(services.ErrNotFound, "project", "lookup", fmt.Sprintf("no project matches %q", id), ErrNotFound)
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer("%", "", "_", "")
	return replacer.Replace(value)
}
