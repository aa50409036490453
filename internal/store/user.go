package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"intakedesk/internal/utils"
	"intakedesk/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userTableName = "intakedesk.users"

var userColumns = utils.StructTagValues(types.User{})

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) User(ctx context.Context, userID string) (*types.User, error) {

	query, args, err := psql().Select(userColumns...).From(userTableName).
		Where(sq.Eq{"id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user query: %w", err)
	}

	var user types.User
	err = pgxscan.Get(ctx, r.pool, &user, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	return &user, nil

}

// UserByEmail does a case-insensitive lookup; emails are stored lower-cased.
func (r *UserRepository) UserByEmail(ctx context.Context, email string) (*types.User, error) {

	query, args, err := psql().Select(userColumns...).From(userTableName).
		Where(sq.Eq{"email": strings.ToLower(email)}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user by email query: %w", err)
	}

	var user types.User
	err = pgxscan.Get(ctx, r.pool, &user, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user by email: %w", err)
	}

	return &user, nil

}

func (r *UserRepository) Users(ctx context.Context) ([]*types.User, error) {

	query, args, err := psql().Select(userColumns...).From(userTableName).
		Where(sq.Eq{"deleted_at": nil}).
		OrderBy("created_at desc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate users query: %w", err)
	}

	var users = make([]*types.User, 0)
	if err := pgxscan.Select(ctx, r.pool, &users, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}

	return users, nil

}

func (r *UserRepository) CreateUser(ctx context.Context, user *types.User) error {

	now := time.Now()
	user.ID = utils.NanoID()
	user.Email = strings.ToLower(user.Email)
	user.CreatedAt = now
	user.UpdatedAt = now

	userMap := utils.StructToMap(user)

	query, args, err := psql().Insert(userTableName).SetMap(userMap).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert user query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create user")

}

// UserUpdate holds the fields an admin may change. Nil fields are left
// untouched.
type UserUpdate struct {
	Email              *string
	PasswordHash       *string
	Role               *types.Role
	IsActive           *bool
	MustChangePassword *bool
}

func (r *UserRepository) UpdateUser(ctx context.Context, userID string, update UserUpdate) error {

	setMap := map[string]any{
		"updated_at": time.Now(),
	}

	if update.Email != nil {
		setMap["email"] = strings.ToLower(*update.Email)
	}
	if update.PasswordHash != nil {
		setMap["password_hash"] = *update.PasswordHash
	}
	if update.Role != nil {
		setMap["role"] = *update.Role
	}
	if update.IsActive != nil {
		setMap["is_active"] = *update.IsActive
	}
	if update.MustChangePassword != nil {
		setMap["must_change_password"] = *update.MustChangePassword
	}

	query, args, err := psql().Update(userTableName).
		SetMap(setMap).
		Where(sq.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update user query for user %s: %w", userID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to update user")

}

// SetPassword stores a new hash and clears the must-change flag.
func (r *UserRepository) SetPassword(ctx context.Context, userID, passwordHash string) error {

	query, args, err := psql().Update(userTableName).
		SetMap(map[string]any{
			"password_hash":        passwordHash,
			"must_change_password": false,
			"updated_at":           time.Now(),
		}).
		Where(sq.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate set password query for user %s: %w", userID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to set password")

}

func (r *UserRepository) SoftDeleteUser(ctx context.Context, userID string) error {

	query, args, err := psql().Update(userTableName).
		SetMap(map[string]any{
			"deleted_at": time.Now(),
			"is_active":  false,
			"updated_at": time.Now(),
		}).
		Where(sq.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete user query for user %s: %w", userID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to delete user")

}
