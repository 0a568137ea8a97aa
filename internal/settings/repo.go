package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/2beens/portfolio/internal/telemetry/tracing"
)

var _ settingsRepo = (*Repo)(nil)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) get(ctx context.Context) (*Settings, error) {
	s := &Settings{}
	if err := r.db.QueryRow(
		ctx,
		`SELECT sections, navigation, updated_at FROM settings WHERE id = 1;`,
	).Scan(&s.Sections, &s.Navigation, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSettingsNotFound
		}
		return nil, err
	}
	return s, nil
}

// GetOrCreate returns the stored settings, storing the defaults first when there are none yet.
// Concurrent first reads all end up with the same row.
func (r *Repo) GetOrCreate(ctx context.Context) (*Settings, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "settingsRepo.getOrCreate")
	defer span.End()

	s, err := r.get(ctx)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, ErrSettingsNotFound) {
		return nil, err
	}

	defaults := Defaults()
	if _, err := r.db.Exec(
		ctx,
		`INSERT INTO settings (id, sections, navigation) VALUES (1, $1, $2) ON CONFLICT (id) DO NOTHING;`,
		defaults.Sections, defaults.Navigation,
	); err != nil {
		return nil, fmt.Errorf("create default settings: %w", err)
	}

	return r.get(ctx)
}

func (r *Repo) Save(ctx context.Context, s *Settings) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "settingsRepo.save")
	defer span.End()

	if err := r.db.QueryRow(
		ctx,
		`INSERT INTO settings (id, sections, navigation) VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET sections = EXCLUDED.sections, navigation = EXCLUDED.navigation, updated_at = now()
		RETURNING updated_at;`,
		s.Sections, s.Navigation,
	).Scan(&s.UpdatedAt); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	return nil
}
