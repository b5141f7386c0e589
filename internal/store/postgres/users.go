package postgres

import (
	"context"

	"admissions/internal/domain/user"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, name, email, phone, password_hash, role, created_at, updated_at`

type userRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *userRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		u.ID, u.Name, u.Email, u.Phone, u.PasswordHash, string(u.Role), u.CreatedAt, u.UpdatedAt)
	return translate("create_user", err, "")
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, translate("find_user", err, "User not found")
	}
	return u, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, user.NormalizeEmail(email)))
	if err != nil {
		return nil, translate("find_user", err, "User not found")
	}
	return u, nil
}

func (r *userRepository) Update(ctx context.Context, u *user.User) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		   SET name = $2, email = $3, phone = $4, password_hash = $5, updated_at = $6
		 WHERE id = $1`,
		u.ID, u.Name, u.Email, u.Phone, u.PasswordHash, u.UpdatedAt)
	if err != nil {
		return translate("update_user", err, "")
	}
	if tag.RowsAffected() == 0 {
		return translate("update_user", pgx.ErrNoRows, "User not found")
	}
	return nil
}

func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	var role string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Role = user.Role(role)
	return &u, nil
}
