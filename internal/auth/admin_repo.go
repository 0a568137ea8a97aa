package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/2beens/portfolio/internal/telemetry/tracing"
)

type AdminRepo struct {
	db *pgxpool.Pool
}

func NewAdminRepo(dbPool *pgxpool.Pool) *AdminRepo {
	return &AdminRepo{
		db: dbPool,
	}
}

func (r *AdminRepo) Add(ctx context.Context, admin *Admin) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "adminRepo.add")
	defer span.End()

	if admin.Role == "" {
		admin.Role = RoleAdmin
	}

	if err := r.db.QueryRow(
		ctx,
		`INSERT INTO admin_user (username, password_hash, email, role, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at;`,
		admin.Username, admin.PasswordHash, admin.Email, admin.Role, admin.Active,
	).Scan(&admin.ID, &admin.CreatedAt, &admin.UpdatedAt); err != nil {
		return fmt.Errorf("insert admin: %w", err)
	}

	return nil
}

func (r *AdminRepo) GetByUsername(ctx context.Context, username string) (*Admin, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "adminRepo.getByUsername")
	defer span.End()

	admin := &Admin{}
	if err := r.db.QueryRow(
		ctx,
		`SELECT id, username, password_hash, email, role, is_active, last_login_at, created_at, updated_at
		FROM admin_user WHERE username = $1;`,
		username,
	).Scan(
		&admin.ID, &admin.Username, &admin.PasswordHash, &admin.Email, &admin.Role,
		&admin.Active, &admin.LastLoginAt, &admin.CreatedAt, &admin.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("get admin: %w", err)
	}

	return admin, nil
}

func (r *AdminRepo) UpdateLastLogin(ctx context.Context, id int, at time.Time) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "adminRepo.updateLastLogin")
	defer span.End()

	tag, err := r.db.Exec(
		ctx,
		`UPDATE admin_user SET last_login_at = $1, updated_at = now() WHERE id = $2;`,
		at, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAdminNotFound
	}

	return nil
}

func (r *AdminRepo) SetPassword(ctx context.Context, username, passwordHash string) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "adminRepo.setPassword")
	defer span.End()

	tag, err := r.db.Exec(
		ctx,
		`UPDATE admin_user SET password_hash = $1, updated_at = now() WHERE username = $2;`,
		passwordHash, username,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAdminNotFound
	}

	return nil
}
