package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/usngrid/internal/core/domain"
	"github.com/samirrijal/usngrid/internal/core/ports"
)

// ViewportRepo implements ports.ViewportRepository.
type ViewportRepo struct {
	db *DB
}

func NewViewportRepo(db *DB) *ViewportRepo {
	return &ViewportRepo{db: db}
}

func (r *ViewportRepo) Create(ctx context.Context, v *domain.SavedViewport) error {
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO viewports (name, south, north, west, east, zoom, datum, intervals)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, v.Name, v.Bounds.South, v.Bounds.North, v.Bounds.West, v.Bounds.East,
		v.Zoom, string(v.Datum), intervalsToInts(v.Intervals),
	).Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert viewport: %w", err)
	}
	return nil
}

func (r *ViewportRepo) GetByID(ctx context.Context, id string) (*domain.SavedViewport, error) {
	row := r.db.Pool.QueryRow(ctx, `
		SELECT id, name, south, north, west, east, zoom, datum, intervals, created_at
		FROM viewports WHERE id = $1
	`, id)
	v, err := scanViewport(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *ViewportRepo) List(ctx context.Context, limit, offset int) ([]domain.SavedViewport, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, south, north, west, east, zoom, datum, intervals, created_at
		FROM viewports
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SavedViewport
	for rows.Next() {
		v, err := scanViewport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

// Count returns the number of saved viewports.
func (r *ViewportRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM viewports`).Scan(&n)
	return n, err
}

func (r *ViewportRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM viewports WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func scanViewport(row pgx.Row) (*domain.SavedViewport, error) {
	var (
		v         domain.SavedViewport
		datum     string
		intervals []int32
	)
	if err := row.Scan(&v.ID, &v.Name,
		&v.Bounds.South, &v.Bounds.North, &v.Bounds.West, &v.Bounds.East,
		&v.Zoom, &datum, &intervals, &v.CreatedAt); err != nil {
		return nil, err
	}
	v.Datum = domain.Datum(datum)
	for _, iv := range intervals {
		v.Intervals = append(v.Intervals, domain.Interval(iv))
	}
	return &v, nil
}

func intervalsToInts(in []domain.Interval) []int32 {
	out := make([]int32, len(in))
	for i, iv := range in {
		out[i] = int32(iv)
	}
	return out
}
