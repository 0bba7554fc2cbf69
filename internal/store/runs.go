package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/roach88/unitgen/internal/ir"
)

// ErrNoRuns is returned when the store holds no run yet.
var ErrNoRuns = errors.New("no runs recorded")

// Run is one recorded generation run.
type Run struct {
	ID              string
	Seq             int64
	Generator       string
	ManifestVersion string
	Categories      []string
}

// RecordRun stores the manifests of one generation run atomically and
// returns the new run.
func (s *Store) RecordRun(ctx context.Context, manifests []*ir.Manifest) (Run, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&seq); err != nil {
		return Run{}, fmt.Errorf("record run: next seq: %w", err)
	}

	run := Run{
		ID:              uuid.NewString(),
		Seq:             seq,
		Generator:       ir.GeneratorVersion,
		ManifestVersion: ir.ManifestVersion,
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, seq, generator_version, manifest_version)
		VALUES (?, ?, ?, ?)
	`, run.ID, run.Seq, run.Generator, run.ManifestVersion); err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}

	for _, m := range manifests {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO manifests (run_id, category, digest)
			VALUES (?, ?, ?)
		`, run.ID, m.Category, m.Digest); err != nil {
			return Run{}, fmt.Errorf("record run: manifest %s: %w", m.Category, err)
		}
		for _, e := range m.Entries {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO entries (run_id, category, signature, spec_id, digest)
				VALUES (?, ?, ?, ?, ?)
			`, run.ID, m.Category, e.Signature, e.ID, e.Digest); err != nil {
				return Run{}, fmt.Errorf("record run: %s: %s: %w", m.Category, e.Signature, err)
			}
		}
		run.Categories = append(run.Categories, m.Category)
	}
	sort.Strings(run.Categories)

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("record run: commit: %w", err)
	}
	return run, nil
}

// LatestRun returns the run with the highest seq, or ErrNoRuns.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	var run Run
	err := s.db.QueryRowContext(ctx, `
		SELECT id, seq, generator_version, manifest_version
		FROM runs
		ORDER BY seq DESC
		LIMIT 1
	`).Scan(&run.ID, &run.Seq, &run.Generator, &run.ManifestVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNoRuns
	}
	if err != nil {
		return Run{}, fmt.Errorf("latest run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT category FROM manifests
		WHERE run_id = ?
		ORDER BY category COLLATE BINARY ASC
	`, run.ID)
	if err != nil {
		return Run{}, fmt.Errorf("latest run: categories: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return Run{}, fmt.Errorf("latest run: scan category: %w", err)
		}
		run.Categories = append(run.Categories, c)
	}
	if err := rows.Err(); err != nil {
		return Run{}, fmt.Errorf("latest run: iterate categories: %w", err)
	}
	return run, nil
}

// Manifest loads the manifest a run recorded for a category. The bool is
// false when the run did not include the category.
func (s *Store) Manifest(ctx context.Context, run Run, category string) (*ir.Manifest, bool, error) {
	m := &ir.Manifest{Category: category, Version: run.ManifestVersion, Generator: run.Generator}
	err := s.db.QueryRowContext(ctx, `
		SELECT digest FROM manifests
		WHERE run_id = ? AND category = ?
	`, run.ID, category).Scan(&m.Digest)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("manifest %s: %w", category, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT signature, spec_id, digest FROM entries
		WHERE run_id = ? AND category = ?
		ORDER BY signature COLLATE BINARY ASC
	`, run.ID, category)
	if err != nil {
		return nil, false, fmt.Errorf("manifest %s: entries: %w", category, err)
	}
	defer rows.Close()

	m.Entries = []ir.ManifestEntry{}
	for rows.Next() {
		var e ir.ManifestEntry
		if err := rows.Scan(&e.Signature, &e.ID, &e.Digest); err != nil {
			return nil, false, fmt.Errorf("manifest %s: scan entry: %w", category, err)
		}
		m.Entries = append(m.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("manifest %s: iterate entries: %w", category, err)
	}
	return m, true, nil
}

// Drift status values.
const (
	StatusUnchanged = "unchanged"
	StatusChanged   = "changed"
	StatusNew       = "new"
	StatusRemoved   = "removed"
)

// Drift describes how one category differs from the latest run.
type Drift struct {
	Category string   `json:"category"`
	Status   string   `json:"status"`
	Added    []string `json:"added,omitempty"`
	Removed  []string `json:"removed,omitempty"`
	Changed  []string `json:"changed,omitempty"`
}

// Diff compares manifests against the latest recorded run, ordered by
// category. Categories of the latest run missing from manifests are
// reported as removed. With no recorded run every category is new.
func (s *Store) Diff(ctx context.Context, manifests []*ir.Manifest) ([]Drift, error) {
	run, err := s.LatestRun(ctx)
	if errors.Is(err, ErrNoRuns) {
		out := make([]Drift, 0, len(manifests))
		for _, m := range manifests {
			out = append(out, Drift{Category: m.Category, Status: StatusNew})
		}
		sortDrift(out)
		return out, nil
	}
	if err != nil {
		return nil, err
	}

	var out []Drift
	seen := make(map[string]bool, len(manifests))
	for _, m := range manifests {
		seen[m.Category] = true
		prev, ok, err := s.Manifest(ctx, run, m.Category)
		if err != nil {
			return nil, err
		}
		if !ok {
			out = append(out, Drift{Category: m.Category, Status: StatusNew})
			continue
		}
		d := Drift{Category: m.Category, Status: StatusUnchanged}
		if prev.Digest != m.Digest {
			d.Status = StatusChanged
			d.Added, d.Removed, d.Changed = ir.DiffManifests(prev, m)
		}
		out = append(out, d)
	}
	for _, c := range run.Categories {
		if !seen[c] {
			out = append(out, Drift{Category: c, Status: StatusRemoved})
		}
	}
	sortDrift(out)
	return out, nil
}

func sortDrift(d []Drift) {
	sort.Slice(d, func(i, j int) bool { return d[i].Category < d[j].Category })
}
