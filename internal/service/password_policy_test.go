package service

import (
	"errors"
	"testing"

	"github.com/catalog-next/internal/config"
)

func TestValidatePassword(t *testing.T) {
	strict := config.PasswordPolicyConfig{MinLength: 8, RequireUpper: true, RequireLower: true, RequireNumber: true, RequireSpecial: true}
	cases := []struct {
		name     string
		policy   config.PasswordPolicyConfig
		password string
		ok       bool
	}{
		{name: "no policy", policy: config.PasswordPolicyConfig{}, password: "x", ok: true},
		{name: "too short", policy: strict, password: "Ab1!", ok: false},
		{name: "missing upper", policy: strict, password: "abcdef1!", ok: false},
		{name: "missing lower", policy: strict, password: "ABCDEF1!", ok: false},
		{name: "missing digit", policy: strict, password: "Abcdefg!", ok: false},
		{name: "missing special", policy: strict, password: "Abcdefg1", ok: false},
		{name: "strong", policy: strict, password: "Abcdef1!", ok: true},
		{name: "runes count once", policy: config.PasswordPolicyConfig{MinLength: 3}, password: "äöü", ok: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validatePassword(tc.policy, tc.password)
			if tc.ok && err != nil {
				t.Fatalf("want ok got %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrWeakPassword) {
				t.Fatalf("want ErrWeakPassword got %v", err)
			}
		})
	}
}
