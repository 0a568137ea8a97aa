package projects

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/portfolio/internal/content"
	"github.com/2beens/portfolio/internal/telemetry/tracing"
)

const projectColumns = `id, title, description, tags, image_url, live_url, github_url, featured, is_active, sort_order, created_at, updated_at`

var _ content.Repo[*Project] = (*Repo)(nil)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func scanProject(row pgx.Row) (*Project, error) {
	p := &Project{}
	if err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.Tags, &p.ImageURL, &p.LiveURL, &p.GithubURL,
		&p.Featured, &p.Active, &p.Order, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, content.ErrNotFound
		}
		return nil, err
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return p, nil
}

func (r *Repo) All(ctx context.Context) ([]*Project, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "projectsRepo.all")
	defer span.End()

	rows, err := r.db.Query(ctx, `SELECT `+projectColumns+` FROM project ORDER BY id;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all []*Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		all = append(all, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("projects.count", len(all)))
	return all, nil
}

func (r *Repo) Get(ctx context.Context, id int) (*Project, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "projectsRepo.get")
	defer span.End()

	return scanProject(r.db.QueryRow(ctx, `SELECT `+projectColumns+` FROM project WHERE id = $1;`, id))
}

func (r *Repo) Add(ctx context.Context, p *Project) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "projectsRepo.add")
	defer span.End()

	if p.Tags == nil {
		p.Tags = []string{}
	}

	if err := r.db.QueryRow(
		ctx,
		`INSERT INTO project (title, description, tags, image_url, live_url, github_url, featured, is_active, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at;`,
		p.Title, p.Description, p.Tags, p.ImageURL, p.LiveURL, p.GithubURL, p.Featured, p.Active, p.Order,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("insert project: %w", err)
	}

	return nil
}

// Update overwrites every editable column of the project, createdAt is kept.
func (r *Repo) Update(ctx context.Context, p *Project) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "projectsRepo.update")
	defer span.End()

	if p.Tags == nil {
		p.Tags = []string{}
	}

	if err := r.db.QueryRow(
		ctx,
		`UPDATE project SET title = $1, description = $2, tags = $3, image_url = $4, live_url = $5,
			github_url = $6, featured = $7, is_active = $8, sort_order = $9, updated_at = now()
		WHERE id = $10
		RETURNING created_at, updated_at;`,
		p.Title, p.Description, p.Tags, p.ImageURL, p.LiveURL, p.GithubURL, p.Featured, p.Active, p.Order, p.ID,
	).Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return content.ErrNotFound
		}
		return fmt.Errorf("update project: %w", err)
	}

	return nil
}

func (r *Repo) Delete(ctx context.Context, id int) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "projectsRepo.delete")
	defer span.End()

	tag, err := r.db.Exec(ctx, `DELETE FROM project WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return content.ErrNotFound
	}

	return nil
}

func (r *Repo) DeleteAll(ctx context.Context) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "projectsRepo.deleteAll")
	defer span.End()

	_, err := r.db.Exec(ctx, `DELETE FROM project;`)
	return err
}

// ToggleVisible flips is_active in a single statement.
func (r *Repo) ToggleVisible(ctx context.Context, id int) (*Project, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "projectsRepo.toggleVisible")
	defer span.End()

	return scanProject(r.db.QueryRow(
		ctx,
		`UPDATE project SET is_active = NOT is_active, updated_at = now() WHERE id = $1 RETURNING `+projectColumns+`;`,
		id,
	))
}

func (r *Repo) SetOrder(ctx context.Context, id, order int) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "projectsRepo.setOrder")
	defer span.End()

	tag, err := r.db.Exec(ctx, `UPDATE project SET sort_order = $1, updated_at = now() WHERE id = $2;`, order, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return content.ErrNotFound
	}

	return nil
}
