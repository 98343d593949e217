package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/recipegram/apiserver/internal/store"
	"github.com/recipegram/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

const defaultUserRole = "user"

var usernameCharset = regexp.MustCompile(`^[\w.@+-]+$`)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	GetByIDs(ctx context.Context, ids []int) ([]types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	List(ctx context.Context, offset, limit int) ([]types.User, int, error)
	UpdatePassword(ctx context.Context, id int, passwordHash string) error
}

// SubscriptionReader exposes the subscription lookups the user service needs
// to compute is_subscribed flags.
type SubscriptionReader interface {
	Exists(ctx context.Context, userID, followeeID int) (bool, error)
	FolloweeSet(ctx context.Context, userID int) (map[int]bool, error)
}

// RegisterInput is the validated user-creation payload.
type RegisterInput struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
}

// UserService encapsulates account use-cases.
type UserService struct {
	repo UserRepository
	subs SubscriptionReader
}

func NewUserService(repo UserRepository, subs SubscriptionReader) *UserService {
	return &UserService{repo: repo, subs: subs}
}

// Register validates the payload, hashes the password and creates the
// account. Uniqueness and charset violations surface as field errors.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (types.User, error) {
	input.Email = strings.TrimSpace(input.Email)
	input.Username = strings.TrimSpace(input.Username)

	fieldErrors := FieldErrors{}
	if !usernameCharset.MatchString(input.Username) {
		fieldErrors["username"] = "username contains invalid characters"
	}
	candidate := types.User{
		Email:     input.Email,
		Username:  input.Username,
		FirstName: input.FirstName,
		LastName:  input.LastName,
	}
	if msg := validatePasswordStrength(input.Password, candidate); msg != "" {
		fieldErrors["password"] = msg
	}

	if _, err := s.repo.GetByEmail(ctx, input.Email); err == nil {
		fieldErrors["email"] = "a user with this email already exists"
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, err
	}
	if _, err := s.repo.GetByUsername(ctx, input.Username); err == nil {
		fieldErrors["username"] = "a user with this username already exists"
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, err
	}
	if len(fieldErrors) > 0 {
		return types.User{}, fieldErrors
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return types.User{}, err
	}
	candidate.Role = defaultUserRole
	candidate.PasswordHash = string(hashed)

	user, err := s.repo.Create(ctx, candidate)
	if err != nil {
		// The unique constraints stay the final arbiter under concurrency.
		if errors.Is(err, store.ErrAlreadyExists) {
			return types.User{}, FieldErrors{"username": "a user with this username or email already exists"}
		}
		return types.User{}, err
	}
	return user, nil
}

// Authenticate verifies email+password credentials.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (types.User, error) {
	user, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return types.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetProfile returns one user with is_subscribed computed for the viewer
// (always false for anonymous).
func (s *UserService) GetProfile(ctx context.Context, id, viewerID int) (types.UserProfile, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return types.UserProfile{}, err
	}
	subscribed := false
	if viewerID > 0 && viewerID != id {
		subscribed, err = s.subs.Exists(ctx, viewerID, id)
		if err != nil {
			return types.UserProfile{}, err
		}
	}
	return user.Profile(subscribed), nil
}

// List returns a page of user profiles with viewer-relative subscription
// flags, plus the total user count.
func (s *UserService) List(ctx context.Context, viewerID, offset, limit int) ([]types.UserProfile, int, error) {
	users, total, err := s.repo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	followees := map[int]bool{}
	if viewerID > 0 {
		followees, err = s.subs.FolloweeSet(ctx, viewerID)
		if err != nil {
			return nil, 0, err
		}
	}

	profiles := make([]types.UserProfile, 0, len(users))
	for _, user := range users {
		profiles = append(profiles, user.Profile(followees[user.ID]))
	}
	return profiles, total, nil
}

// SetPassword replaces the user's password after checking the current one
// and the strength of the new one.
func (s *UserService) SetPassword(ctx context.Context, userID int, currentPassword, newPassword string) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	fieldErrors := FieldErrors{}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		fieldErrors["current_password"] = "wrong current password"
	}
	if msg := validatePasswordStrength(newPassword, user); msg != "" {
		fieldErrors["new_password"] = msg
	}
	if len(fieldErrors) > 0 {
		return fieldErrors
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, userID, string(hashed))
}
