// Package repo provides the scans repository implementations
package repo

import (
	"context"

	"genscan/internal/modkit/repokit"
	perr "genscan/internal/platform/errors"
	"genscan/internal/platform/store"
	"genscan/internal/services/scans/domain"

	"github.com/goccy/go-json"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the scans repository
type Storage interface {
	Insert(ctx context.Context, s domain.Scan) error
	List(ctx context.Context, limit int) ([]domain.Scan, error)
}

// Insert implements Storage
func (s *pg) Insert(ctx context.Context, sc domain.Scan) error {
	analysis, err := json.Marshal(sc.Analysis)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "marshal analysis")
	}

	err = store.ExecOne(ctx, s.q, `
		INSERT INTO content_scans
			(id, content_type, content, file_path, url, ai_probability, confidence, analysis, engine, created_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8::jsonb, $9, $10)`,
		sc.ID, string(sc.ContentType), sc.Content, sc.FilePath, sc.URL,
		sc.AIProbability, sc.Confidence, string(analysis), sc.Engine, sc.CreatedAt,
	)
	return perr.FromPostgresWithField(err, "insert content_scans row")
}

// List implements Storage
func (s *pg) List(ctx context.Context, limit int) ([]domain.Scan, error) {
	return store.Many(ctx, s.q, scanRow, `
		SELECT id::text, content_type, COALESCE(content, ''), COALESCE(file_path, ''), COALESCE(url, ''),
			ai_probability, confidence, analysis::text, engine, created_at
		FROM content_scans
		ORDER BY created_at DESC, id DESC
		LIMIT $1`, limit)
}

// scanRow maps one content_scans row in List column order
func scanRow(r store.Row) (domain.Scan, error) {
	var (
		sc       domain.Scan
		ct       string
		analysis string
	)
	if err := r.Scan(
		&sc.ID, &ct, &sc.Content, &sc.FilePath, &sc.URL,
		&sc.AIProbability, &sc.Confidence, &analysis, &sc.Engine, &sc.CreatedAt,
	); err != nil {
		return domain.Scan{}, err
	}
	sc.ContentType = domain.ContentType(ct)
	sc.Analysis = decodeAnalysis(analysis)
	return sc, nil
}

// decodeAnalysis tolerates rows written by other tools; bad json becomes an empty map
func decodeAnalysis(raw string) map[string]any {
	m := map[string]any{}
	if raw == "" {
		return m
	}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return map[string]any{}
	}
	return m
}
