package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/daffodils/florist-api/internal/model"
)

type AdminRepository interface {
	Create(ctx context.Context, admin *model.Admin) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Admin, error)
	GetByEmail(ctx context.Context, email string) (*model.Admin, error)
	GetByUsername(ctx context.Context, username string) (*model.Admin, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
}

const adminColumns = `id, username, email, password_hash, role, permissions, is_active,
	last_login, created_at, updated_at`

type pgAdminRepo struct{ pool *pgxpool.Pool }

func NewAdminRepository(pool *pgxpool.Pool) AdminRepository {
	return &pgAdminRepo{pool: pool}
}

func (r *pgAdminRepo) Create(ctx context.Context, admin *model.Admin) error {
	admin.ID = uuid.New()
	perms, err := json.Marshal(admin.Permissions.Strings())
	if err != nil {
		return fmt.Errorf("marshal permissions: %w", err)
	}
	err = queryFrom(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO admins (id, username, email, password_hash, role, permissions, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		 RETURNING created_at, updated_at`,
		admin.ID, admin.Username, admin.Email, admin.Password, admin.Role, perms, admin.IsActive,
	).Scan(&admin.CreatedAt, &admin.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}

func (r *pgAdminRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Admin, error) {
	return r.getBy(ctx, `id = $1`, id)
}

func (r *pgAdminRepo) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	return r.getBy(ctx, `email = $1`, email)
}

func (r *pgAdminRepo) GetByUsername(ctx context.Context, username string) (*model.Admin, error) {
	return r.getBy(ctx, `username = $1`, username)
}

func (r *pgAdminRepo) getBy(ctx context.Context, cond string, arg any) (*model.Admin, error) {
	a := &model.Admin{}
	var perms []byte
	err := queryFrom(ctx, r.pool).QueryRow(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE `+cond, arg,
	).Scan(&a.ID, &a.Username, &a.Email, &a.Password, &a.Role, &perms, &a.IsActive,
		&a.LastLogin, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get admin: %w", err)
	}

	var pairs []string
	if err := json.Unmarshal(perms, &pairs); err != nil {
		return nil, fmt.Errorf("unmarshal permissions: %w", err)
	}
	a.Permissions = model.ParsePermissions(pairs)
	return a, nil
}

func (r *pgAdminRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	_, err := queryFrom(ctx, r.pool).Exec(ctx,
		`UPDATE admins SET last_login = NOW(), updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

func (r *pgAdminRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := queryFrom(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM admins`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return n, nil
}
