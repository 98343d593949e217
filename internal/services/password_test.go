package services

import (
	"testing"

	"github.com/recipegram/apiserver/types"
)

func TestValidatePasswordStrength(t *testing.T) {
	user := types.User{
		Username:  "chef_anna",
		Email:     "anna@example.com",
		FirstName: "Anna",
		LastName:  "Ivanova",
	}

	tests := []struct {
		name     string
		password string
		wantFail bool
	}{
		{name: "acceptable", password: "tasty-soup-42", wantFail: false},
		{name: "too short", password: "abc123", wantFail: true},
		{name: "entirely numeric", password: "1234567890", wantFail: true},
		{name: "contains username", password: "xxchef_annaxx", wantFail: true},
		{name: "contains email local part", password: "anna-secret", wantFail: true},
		{name: "matches last name", password: "ivanova2024", wantFail: true},
		{name: "case insensitive similarity", password: "CHEF_ANNA!!", wantFail: true},
		{name: "exactly eight characters", password: "soup-pot", wantFail: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := validatePasswordStrength(tt.password, user)
			if tt.wantFail && msg == "" {
				t.Fatalf("expected %q to be rejected", tt.password)
			}
			if !tt.wantFail && msg != "" {
				t.Fatalf("expected %q to pass, got %q", tt.password, msg)
			}
		})
	}
}

func TestValidatePasswordStrengthShortAttributesIgnored(t *testing.T) {
	user := types.User{Username: "al", Email: "al@example.com"}
	if msg := validatePasswordStrength("alligator-9", user); msg != "" {
		t.Fatalf("attributes under three characters should not trigger similarity, got %q", msg)
	}
}
