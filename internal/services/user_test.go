package services

import (
	"context"
	"errors"
	"testing"

	"github.com/recipegram/apiserver/internal/store"
	"github.com/recipegram/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

func newUserServiceForTest(users ...types.User) (*UserService, *fakeUserRepo, *fakeSubscriptionRepo) {
	repo := newFakeUserRepo(users...)
	subs := &fakeSubscriptionRepo{}
	return NewUserService(repo, subs), repo, subs
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Email:     "anna@example.com",
		Username:  "chef_anna",
		FirstName: "Anna",
		LastName:  "Ivanova",
		Password:  "tasty-soup-42",
	}
}

func TestRegisterCreatesUser(t *testing.T) {
	svc, repo, _ := newUserServiceForTest()

	user, err := svc.Register(context.Background(), validRegisterInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID == 0 {
		t.Fatalf("expected assigned id")
	}
	if user.Role != "user" {
		t.Fatalf("expected default role, got %q", user.Role)
	}
	if user.PasswordHash == "tasty-soup-42" {
		t.Fatalf("password stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("tasty-soup-42")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if len(repo.users) != 1 {
		t.Fatalf("expected one stored user, got %d", len(repo.users))
	}
}

func TestRegisterFieldErrors(t *testing.T) {
	existing := types.User{ID: 1, Email: "taken@example.com", Username: "taken"}

	tests := []struct {
		name      string
		mutate    func(*RegisterInput)
		wantField string
	}{
		{
			name:      "invalid username charset",
			mutate:    func(in *RegisterInput) { in.Username = "bad name!" },
			wantField: "username",
		},
		{
			name:      "weak password",
			mutate:    func(in *RegisterInput) { in.Password = "123" },
			wantField: "password",
		},
		{
			name:      "duplicate email",
			mutate:    func(in *RegisterInput) { in.Email = "taken@example.com" },
			wantField: "email",
		},
		{
			name:      "duplicate username",
			mutate:    func(in *RegisterInput) { in.Username = "taken" },
			wantField: "username",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newUserServiceForTest(existing)
			input := validRegisterInput()
			tt.mutate(&input)

			_, err := svc.Register(context.Background(), input)
			fields, ok := AsFieldErrors(err)
			if !ok {
				t.Fatalf("expected field errors, got %v", err)
			}
			if _, ok := fields[tt.wantField]; !ok {
				t.Fatalf("expected error on %q, got %v", tt.wantField, fields)
			}
		})
	}
}

func TestAuthenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("tasty-soup-42"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	svc, _, _ := newUserServiceForTest(types.User{
		ID:           1,
		Email:        "anna@example.com",
		Username:     "chef_anna",
		PasswordHash: string(hash),
	})

	if _, err := svc.Authenticate(context.Background(), "anna@example.com", "tasty-soup-42"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "anna@example.com", "wrong"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for wrong password, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "ghost@example.com", "tasty-soup-42"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown email, got %v", err)
	}
}

func TestGetProfileSubscriptionFlag(t *testing.T) {
	svc, _, subs := newUserServiceForTest(
		types.User{ID: 1, Email: "anna@example.com", Username: "chef_anna"},
		types.User{ID: 2, Email: "boris@example.com", Username: "boris"},
	)
	if err := subs.Create(context.Background(), 1, 2); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	profile, err := svc.GetProfile(context.Background(), 2, 1)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if !profile.IsSubscribed {
		t.Fatalf("expected is_subscribed for follower view")
	}

	profile, err = svc.GetProfile(context.Background(), 2, 0)
	if err != nil {
		t.Fatalf("get profile anonymous: %v", err)
	}
	if profile.IsSubscribed {
		t.Fatalf("anonymous view must not be subscribed")
	}

	if _, err := svc.GetProfile(context.Background(), 99, 1); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("old-password-1"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	svc, repo, _ := newUserServiceForTest(types.User{
		ID:           1,
		Email:        "anna@example.com",
		Username:     "chef_anna",
		PasswordHash: string(hash),
	})

	err = svc.SetPassword(context.Background(), 1, "wrong", "new-password-1")
	fields, ok := AsFieldErrors(err)
	if !ok || fields["current_password"] == "" {
		t.Fatalf("expected current_password error, got %v", err)
	}

	err = svc.SetPassword(context.Background(), 1, "old-password-1", "123")
	fields, ok = AsFieldErrors(err)
	if !ok || fields["new_password"] == "" {
		t.Fatalf("expected new_password error, got %v", err)
	}

	if err := svc.SetPassword(context.Background(), 1, "old-password-1", "new-password-1"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(repo.users[1].PasswordHash), []byte("new-password-1")); err != nil {
		t.Fatalf("stored hash does not match new password: %v", err)
	}
}

func TestListAppliesFolloweeFlags(t *testing.T) {
	svc, _, subs := newUserServiceForTest(
		types.User{ID: 1, Username: "a"},
		types.User{ID: 2, Username: "b"},
		types.User{ID: 3, Username: "c"},
	)
	if err := subs.Create(context.Background(), 1, 3); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	profiles, total, err := svc.List(context.Background(), 1, 0, 20)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || len(profiles) != 3 {
		t.Fatalf("expected 3 users, got total=%d len=%d", total, len(profiles))
	}
	for _, profile := range profiles {
		want := profile.ID == 3
		if profile.IsSubscribed != want {
			t.Fatalf("user %d: is_subscribed=%v, want %v", profile.ID, profile.IsSubscribed, want)
		}
	}
}
