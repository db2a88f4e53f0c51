package persistence

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/sencity/user-service/internal/domain/userprofile"
	"github.com/sencity/user-service/pkg/apperror"
	"github.com/sencity/user-service/pkg/logger"
)

const (
	userProfilesTable     = "user_profiles"
	emailUniqueConstraint = "user_profiles_email_key"
	pgUniqueViolation     = "23505"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type postgresUserProfileRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresUserProfileRepo(db *pgxpool.Pool, logger logger.Logger) userprofile.Repository {
	return &postgresUserProfileRepo{db: db, logger: logger}
}

func (r *postgresUserProfileRepo) Create(ctx context.Context, p *userprofile.UserProfile) error {
	query, args, err := psql.Insert(userProfilesTable).
		Columns("id", "name", "telphone", "email", "password", "address", "created_at").
		Values(p.ID, p.Name, p.Telphone, p.Email, p.Password, p.Address, p.CreatedAt).
		ToSql()
	if err != nil {
		return apperror.NewInternal("failed to build insert user profile query", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		if isEmailUniqueViolation(err) {
			return userprofile.ErrEmailTaken
		}
		r.logger.Error("Failed to insert user profile", err, zap.String("profile_id", p.ID.String()))
		return apperror.NewInternal("failed to save user profile", err)
	}
	return nil
}

func (r *postgresUserProfileRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query, args, err := psql.Select("1").
		Prefix("SELECT EXISTS (").
		From(userProfilesTable).
		Where(sq.Eq{"email": email}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, apperror.NewInternal("failed to build exists-by-email query", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, apperror.NewInternal("failed to query user profile by email", err)
	}
	return exists, nil
}

func isEmailUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return false
	}
	// the email index is the only unique constraint besides the primary key
	return pgErr.ConstraintName == "" || pgErr.ConstraintName == emailUniqueConstraint
}
