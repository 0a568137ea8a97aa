package testimonials

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/2beens/portfolio/internal/content"
	"github.com/2beens/portfolio/internal/telemetry/tracing"
)

const testimonialColumns = `id, name, role, company, content, avatar, is_active, sort_order, created_at, updated_at`

var _ content.Repo[*Testimonial] = (*Repo)(nil)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func scanTestimonial(row pgx.Row) (*Testimonial, error) {
	t := &Testimonial{}
	if err := row.Scan(
		&t.ID, &t.Name, &t.Role, &t.Company, &t.Content, &t.Avatar,
		&t.Active, &t.Order, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, content.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *Repo) All(ctx context.Context) ([]*Testimonial, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "testimonialsRepo.all")
	defer span.End()

	rows, err := r.db.Query(ctx, `SELECT `+testimonialColumns+` FROM testimonial ORDER BY id;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all []*Testimonial
	for rows.Next() {
		t, err := scanTestimonial(rows)
		if err != nil {
			return nil, err
		}
		all = append(all, t)
	}

	return all, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id int) (*Testimonial, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "testimonialsRepo.get")
	defer span.End()

	return scanTestimonial(r.db.QueryRow(ctx, `SELECT `+testimonialColumns+` FROM testimonial WHERE id = $1;`, id))
}

func (r *Repo) Add(ctx context.Context, t *Testimonial) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "testimonialsRepo.add")
	defer span.End()

	if t.Avatar == "" {
		t.Avatar = DefaultAvatar
	}

	if err := r.db.QueryRow(
		ctx,
		`INSERT INTO testimonial (name, role, company, content, avatar, is_active, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at;`,
		t.Name, t.Role, t.Company, t.Content, t.Avatar, t.Active, t.Order,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return fmt.Errorf("insert testimonial: %w", err)
	}

	return nil
}

func (r *Repo) Update(ctx context.Context, t *Testimonial) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "testimonialsRepo.update")
	defer span.End()

	if t.Avatar == "" {
		t.Avatar = DefaultAvatar
	}

	if err := r.db.QueryRow(
		ctx,
		`UPDATE testimonial SET name = $1, role = $2, company = $3, content = $4, avatar = $5,
			is_active = $6, sort_order = $7, updated_at = now()
		WHERE id = $8
		RETURNING created_at, updated_at;`,
		t.Name, t.Role, t.Company, t.Content, t.Avatar, t.Active, t.Order, t.ID,
	).Scan(&t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return content.ErrNotFound
		}
		return fmt.Errorf("update testimonial: %w", err)
	}

	return nil
}

func (r *Repo) Delete(ctx context.Context, id int) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "testimonialsRepo.delete")
	defer span.End()

	tag, err := r.db.Exec(ctx, `DELETE FROM testimonial WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return content.ErrNotFound
	}

	return nil
}

func (r *Repo) DeleteAll(ctx context.Context) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "testimonialsRepo.deleteAll")
	defer span.End()

	_, err := r.db.Exec(ctx, `DELETE FROM testimonial;`)
	return err
}

func (r *Repo) ToggleVisible(ctx context.Context, id int) (*Testimonial, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "testimonialsRepo.toggleVisible")
	defer span.End()

	return scanTestimonial(r.db.QueryRow(
		ctx,
		`UPDATE testimonial SET is_active = NOT is_active, updated_at = now() WHERE id = $1 RETURNING `+testimonialColumns+`;`,
		id,
	))
}

func (r *Repo) SetOrder(ctx context.Context, id, order int) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "testimonialsRepo.setOrder")
	defer span.End()

	tag, err := r.db.Exec(ctx, `UPDATE testimonial SET sort_order = $1, updated_at = now() WHERE id = $2;`, order, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return content.ErrNotFound
	}

	return nil
}
