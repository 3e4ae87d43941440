package pgx

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/lborres/veil/core"
)

const userColumns = `id, email, name, image, password_hash, role, created_at, updated_at`

func (a *Adapter) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	q := `SELECT ` + userColumns + ` FROM public.users WHERE email = $1`
	return a.scanUser(a.pool.QueryRow(ctx, q, email))
}

func (a *Adapter) GetUserByID(ctx context.Context, id string) (*core.User, error) {
	q := `SELECT ` + userColumns + ` FROM public.users WHERE id = $1`
	return a.scanUser(a.pool.QueryRow(ctx, q, id))
}

func (a *Adapter) CreateUser(ctx context.Context, user *core.User) error {
	if user.ID == "" {
		user.ID = ulid.Make().String()
	}
	if user.Role == "" {
		user.Role = "USER"
	}

	q := `INSERT INTO public.users (id, email, name, image, password_hash, role)
	      VALUES ($1, $2, $3, $4, $5, $6)
	      RETURNING created_at, updated_at`

	var createdAt, updatedAt time.Time
	err := a.pool.QueryRow(ctx, q,
		user.ID, user.Email, user.Name, user.Image, user.PasswordHash, user.Role,
	).Scan(&createdAt, &updatedAt)
	if err != nil {
		return oops.Code("DIRECTORY_CREATE_FAILED").
			With("email", user.Email).
			Wrap(errors.Join(core.ErrDirectory, err))
	}

	user.CreatedAt = createdAt
	user.UpdatedAt = updatedAt
	return nil
}

func (a *Adapter) UpdateUser(ctx context.Context, id string, patch core.UserPatch) (*core.User, error) {
	sets := make([]string, 0, 6)
	args := make([]any, 0, 6)

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}

	if patch.Email != nil {
		add("email", *patch.Email)
	}
	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Image != nil {
		add("image", *patch.Image)
	}
	if patch.PasswordHash != nil {
		add("password_hash", *patch.PasswordHash)
	}
	if patch.Role != nil {
		add("role", *patch.Role)
	}

	if len(sets) == 0 {
		return a.GetUserByID(ctx, id)
	}

	args = append(args, id)
	q := `UPDATE public.users SET ` + strings.Join(sets, ", ") +
		`, updated_at = now() WHERE id = $` + strconv.Itoa(len(args)) +
		` RETURNING ` + userColumns

	return a.scanUser(a.pool.QueryRow(ctx, q, args...))
}

func (a *Adapter) scanUser(row pgx.Row) (*core.User, error) {
	user := &core.User{}
	var image, passwordHash *string

	err := row.Scan(&user.ID, &user.Email, &user.Name, &image, &passwordHash,
		&user.Role, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrUserNotFound
		}
		return nil, oops.Code("DIRECTORY_QUERY_FAILED").
			Wrap(errors.Join(core.ErrDirectory, err))
	}

	user.Image = image
	user.PasswordHash = passwordHash
	return user, nil
}
