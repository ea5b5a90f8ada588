package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/isdelr/inventory-manager-be/internal/models"
)

// PasswordHasher hashes new passwords and checks submitted ones.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) bool
}

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	GetAllUsers(ctx context.Context) ([]models.User, error)
	GetUserByID(ctx context.Context, id int64) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	CreateUser(ctx context.Context, in models.UserCreate) (models.User, error)
	UpdateUser(ctx context.Context, id int64, in models.UserUpdate) (models.User, error)
	DeleteUser(ctx context.Context, id int64) error
	IsActiveUser(ctx context.Context, id int64) (bool, error)
}

// UserService provides business logic for user management.
type UserService struct {
	db     *sql.DB
	hasher PasswordHasher
	events EventServiceProvider
}

// NewUserService creates a new UserService. events may be nil.
func NewUserService(db *sql.DB, hasher PasswordHasher, events EventServiceProvider) *UserService {
	return &UserService{db: db, hasher: hasher, events: events}
}

const userColumns = "id, username, email, password_hash, full_name, is_active, role, created_at"

func scanUser(row scanner) (models.User, error) {
	var (
		user     models.User
		fullName sql.NullString
	)
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&fullName, &user.IsActive, &user.Role, &user.CreatedAt)
	if err != nil {
		return models.User{}, err
	}
	user.FullName = fullName.String
	return user, nil
}

// GetAllUsers retrieves every user ordered by id.
func (s *UserService) GetAllUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(ctx context.Context, id int64) (models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, notFound("User with id %d not found", id)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return user, nil
}

// GetUserByUsername retrieves a single user, including the password hash, on
// a dedicated connection that is released before returning.
func (s *UserService) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Close()

	row := conn.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE username = ?", username)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, notFound("User '%s' not found", username)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to get user by username: %w", err)
	}
	return user, nil
}

func (s *UserService) exists(ctx context.Context, column, value string, exceptID int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM users WHERE "+column+" = ? AND id != ?", value, exceptID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *UserService) checkUnique(ctx context.Context, username, email string, exceptID int64) error {
	if username != "" {
		taken, err := s.exists(ctx, "username", username, exceptID)
		if err != nil {
			return fmt.Errorf("failed to check username: %w", err)
		}
		if taken {
			return duplicate("Username '%s' already exists", username)
		}
	}
	if email != "" {
		taken, err := s.exists(ctx, "email", email, exceptID)
		if err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if taken {
			return duplicate("Email '%s' already exists", email)
		}
	}
	return nil
}

// uniqueError turns a constraint failure that slipped past checkUnique into
// ErrDuplicate.
func uniqueError(err error, username, email string) error {
	if !isUniqueViolation(err) {
		return err
	}
	if strings.Contains(err.Error(), "users.email") {
		return duplicate("Email '%s' already exists", email)
	}
	return duplicate("Username '%s' already exists", username)
}

// CreateUser creates a new user, hashing their password.
func (s *UserService) CreateUser(ctx context.Context, in models.UserCreate) (models.User, error) {
	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return models.User{}, invalid("Unknown role '%s'", role)
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	if err := s.checkUnique(ctx, in.Username, in.Email, 0); err != nil {
		return models.User{}, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, full_name, is_active, role) VALUES (?, ?, ?, ?, ?, ?)",
		in.Username, in.Email, hash, in.FullName, active, role)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to insert user: %w", uniqueError(err, in.Username, in.Email))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, err
	}

	record(ctx, s.events, "user.create", "info", fmt.Sprintf("User '%s' created with role %s", in.Username, role), actorFromContext(ctx))
	return s.GetUserByID(ctx, id)
}

// UpdateUser applies the non-nil fields of in. Usernames cannot change.
func (s *UserService) UpdateUser(ctx context.Context, id int64, in models.UserUpdate) (models.User, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}

	if in.Username != nil && *in.Username != user.Username {
		return models.User{}, invalid("Username cannot be changed")
	}
	if in.Email != nil && *in.Email != user.Email {
		if err := s.checkUnique(ctx, "", *in.Email, id); err != nil {
			return models.User{}, err
		}
		user.Email = *in.Email
	}
	if in.FullName != nil {
		user.FullName = *in.FullName
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return models.User{}, invalid("Unknown role '%s'", *in.Role)
		}
		user.Role = *in.Role
	}
	if in.Password != nil {
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return models.User{}, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE users SET email = ?, password_hash = ?, full_name = ?, is_active = ?, role = ? WHERE id = ?",
		user.Email, user.PasswordHash, user.FullName, user.IsActive, user.Role, id)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to update user: %w", uniqueError(err, user.Username, user.Email))
	}

	record(ctx, s.events, "user.update", "info", fmt.Sprintf("User '%s' updated", user.Username), actorFromContext(ctx))
	return s.GetUserByID(ctx, id)
}

// DeleteUser removes a user from the database.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("User with id %d not found", id)
	}
	record(ctx, s.events, "user.delete", "warn", fmt.Sprintf("User %d deleted", id), actorFromContext(ctx))
	return nil
}

// IsActiveUser reports whether the user exists and is active.
func (s *UserService) IsActiveUser(ctx context.Context, id int64) (bool, error) {
	var active bool
	err := s.db.QueryRowContext(ctx, "SELECT is_active FROM users WHERE id = ?", id).Scan(&active)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return active, nil
}
