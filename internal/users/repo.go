package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/serjblog/internal/telemetry/tracing"
	"github.com/2beens/serjblog/pkg"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user with this email exists")
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// Add stores the user and sets its ID, Role and CreatedAt.
// The very first account becomes the admin, all others are readers.
func (r *Repo) Add(ctx context.Context, user *User) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "usersRepo.Add")
	defer span.End()

	if user.Email == "" || user.Password == "" {
		return errors.New("user email or password empty")
	}

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		// serializes concurrent first registrations, so only one of them can see an empty table
		if _, err := tx.Exec(ctx, `LOCK TABLE blog_user IN SHARE ROW EXCLUSIVE MODE`); err != nil {
			return err
		}
		return tx.QueryRow(
			ctx,
			`
				INSERT INTO blog_user (email, name, password, role)
				VALUES ($1, $2, $3, CASE WHEN EXISTS (SELECT 1 FROM blog_user) THEN $4 ELSE $5 END)
				RETURNING id, role, created_at;
			`,
			user.Email, user.Name, user.Password, RoleReader, RoleAdmin,
		).Scan(&user.ID, &user.Role, &user.CreatedAt)
	})
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}

	span.SetAttributes(attribute.Int("id", user.ID))
	log.Tracef("user %d [%s] added with role %s", user.ID, user.Email, user.Role)

	return nil
}

func (r *Repo) Get(ctx context.Context, id int) (*User, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "usersRepo.Get")
	span.SetAttributes(attribute.Int("id", id))
	defer span.End()

	return r.getOne(ctx, `SELECT id, email, name, password, role, created_at FROM blog_user WHERE id = $1`, id)
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (*User, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "usersRepo.GetByEmail")
	defer span.End()

	return r.getOne(ctx, `SELECT id, email, name, password, role, created_at FROM blog_user WHERE email = $1`, email)
}

func (r *Repo) getOne(ctx context.Context, query string, arg any) (*User, error) {
	var u User
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.Name, &u.Password, &u.Role, &u.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}
