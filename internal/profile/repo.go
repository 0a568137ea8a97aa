package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/2beens/portfolio/internal/telemetry/tracing"
)

// the profile table holds at most one row, id = 1

var _ profileRepo = (*Repo)(nil)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Get(ctx context.Context) (*Profile, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "profileRepo.get")
	defer span.End()

	p := &Profile{}
	if err := r.db.QueryRow(
		ctx,
		`SELECT name, tagline, bio, location, experience, email, availability, image, social_links, is_active, created_at, updated_at
		FROM profile WHERE id = 1;`,
	).Scan(
		&p.Name, &p.Tagline, &p.Bio, &p.Location, &p.Experience, &p.Email, &p.Availability,
		&p.Image, &p.SocialLinks, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	if p.Bio == nil {
		p.Bio = []string{}
	}
	return p, nil
}

func (r *Repo) Upsert(ctx context.Context, p *Profile) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "profileRepo.upsert")
	defer span.End()

	if p.Bio == nil {
		p.Bio = []string{}
	}

	if err := r.db.QueryRow(
		ctx,
		`INSERT INTO profile (id, name, tagline, bio, location, experience, email, availability, image, social_links, is_active)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, tagline = EXCLUDED.tagline, bio = EXCLUDED.bio, location = EXCLUDED.location,
			experience = EXCLUDED.experience, email = EXCLUDED.email, availability = EXCLUDED.availability,
			image = EXCLUDED.image, social_links = EXCLUDED.social_links, is_active = EXCLUDED.is_active,
			updated_at = now()
		RETURNING created_at, updated_at;`,
		p.Name, p.Tagline, p.Bio, p.Location, p.Experience, p.Email, p.Availability, p.Image, p.SocialLinks, p.Active,
	).Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}

	return nil
}
