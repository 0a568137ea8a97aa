package skills

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

const categoryColumns = `id, category_id, title, description, icon, skills, is_active, sort_order, created_at, updated_at`

var _ content.Repo[*SkillCategory] = (*Repo)(nil)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func scanCategory(row pgx.Row) (*SkillCategory, error) {
	c := &SkillCategory{}
	if err := row.Scan(
		&c.ID, &c.CategoryID, &c.Title, &c.Description, &c.Icon, &c.Skills,
		&c.Active, &c.Order, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, content.ErrNotFound
		}
		return nil, err
	}
	c.normalize()
	return c, nil
}

func (r *Repo) All(ctx context.Context) ([]*SkillCategory, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "skillsRepo.all")
	defer span.End()

	rows, err := r.db.Query(ctx, `SELECT `+categoryColumns+` FROM skill_category ORDER BY id;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all []*SkillCategory
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		all = append(all, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("skills.categories", len(all)))
	return all, nil
}

func (r *Repo) Get(ctx context.Context, id int) (*SkillCategory, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "skillsRepo.get")
	defer span.End()

	return scanCategory(r.db.QueryRow(ctx, `SELECT `+categoryColumns+` FROM skill_category WHERE id = $1;`, id))
}

// Add fails with a unique violation on skill_category_category_id_key when the categoryId is taken.
func (r *Repo) Add(ctx context.Context, c *SkillCategory) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "skillsRepo.add")
	defer span.End()

	c.normalize()
	if err := r.db.QueryRow(
		ctx,
		`INSERT INTO skill_category (category_id, title, description, icon, skills, is_active, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at;`,
		c.CategoryID, c.Title, c.Description, c.Icon, c.Skills, c.Active, c.Order,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return fmt.Errorf("insert skill category: %w", err)
	}

	return nil
}

func (r *Repo) Update(ctx context.Context, c *SkillCategory) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "skillsRepo.update")
	defer span.End()

	c.normalize()
	if err := r.db.QueryRow(
		ctx,
		`UPDATE skill_category SET category_id = $1, title = $2, description = $3, icon = $4, skills = $5,
			is_active = $6, sort_order = $7, updated_at = now()
		WHERE id = $8
		RETURNING created_at, updated_at;`,
		c.CategoryID, c.Title, c.Description, c.Icon, c.Skills, c.Active, c.Order, c.ID,
	).Scan(&c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return content.ErrNotFound
		}
		return fmt.Errorf("update skill category: %w", err)
	}

	return nil
}

func (r *Repo) Delete(ctx context.Context, id int) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "skillsRepo.delete")
	defer span.End()

	tag, err := r.db.Exec(ctx, `DELETE FROM skill_category WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return content.ErrNotFound
	}

	return nil
}

func (r *Repo) DeleteAll(ctx context.Context) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "skillsRepo.deleteAll")
	defer span.End()

	_, err := r.db.Exec(ctx, `DELETE FROM skill_category;`)
	return err
}

func (r *Repo) ToggleVisible(ctx context.Context, id int) (*SkillCategory, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "skillsRepo.toggleVisible")
	defer span.End()

	return scanCategory(r.db.QueryRow(
		ctx,
		`UPDATE skill_category SET is_active = NOT is_active, updated_at = now() WHERE id = $1 RETURNING `+categoryColumns+`;`,
		id,
	))
}

func (r *Repo) SetOrder(ctx context.Context, id, order int) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "skillsRepo.setOrder")
	defer span.End()

	tag, err := r.db.Exec(ctx, `UPDATE skill_category SET sort_order = $1, updated_at = now() WHERE id = $2;`, order, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return content.ErrNotFound
	}

	return nil
}
