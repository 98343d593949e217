package config

import (
	"testing"
	"time"
)

func TestLoadConfigJWTTTL(t *testing.T) {
	t.Setenv("JWT_TTL", "2h")
	if got := LoadConfig().JWTTTL; got != 2*time.Hour {
		t.Fatalf("JWTTTL = %v, want 2h", got)
	}
}

func TestLoadConfigJWTTTLDefaults(t *testing.T) {
	tests := []struct {
		name  string
		value string
		set   bool
	}{
		{name: "unset"},
		{name: "unparsable", value: "soon", set: true},
		{name: "non-positive", value: "-1h", set: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.set {
				t.Setenv("JWT_TTL", tt.value)
			}
			if got := LoadConfig().JWTTTL; got != 24*time.Hour {
				t.Fatalf("JWTTTL = %v, want the 24h default", got)
			}
		})
	}
}
