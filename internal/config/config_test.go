package config

import (
	"strings"
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("AUTH_USERS", "user1:$2a$10$abcdefghijklmnopqrstuv")
	t.Setenv("AUTH_JWT_SECRET", "test-secret")
	t.Setenv("STORE_DRIVER", "memory")
}

func TestLoad_defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load("does-not-exist.env")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Ledger.PageSize != 20 || cfg.Ledger.MaxPageSize != 100 {
		t.Errorf("page sizes = %d/%d, want 20/100", cfg.Ledger.PageSize, cfg.Ledger.MaxPageSize)
	}
	if cfg.Ledger.RequestTimeout != 10*time.Second {
		t.Errorf("timeout = %v, want 10s", cfg.Ledger.RequestTimeout)
	}
	if cfg.Sheets.Enabled() {
		t.Error("sheets mirror should be disabled without credentials")
	}
	if cfg.Invoice.CompanyName == "" {
		t.Error("expected a default company name")
	}
}

func TestLoad_missingSecret(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("AUTH_JWT_SECRET", "")

	_, err := Load("does-not-exist.env")
	if err == nil || !strings.Contains(err.Error(), "AUTH_JWT_SECRET") {
		t.Fatalf("expected AUTH_JWT_SECRET error, got %v", err)
	}
}

func TestLoad_badDuration(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("LEDGER_REQUEST_TIMEOUT", "soon")

	if _, err := Load("does-not-exist.env"); err == nil {
		t.Fatal("expected error for unparsable duration")
	}
}

func TestLoad_pageSizeAboveMax(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("LOG_PAGE_SIZE", "50")
	t.Setenv("LOG_MAX_PAGE_SIZE", "10")

	if _, err := Load("does-not-exist.env"); err == nil {
		t.Fatal("expected error when page size exceeds the maximum")
	}
}

func TestLoad_unknownDriver(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("STORE_DRIVER", "firestore")

	if _, err := Load("does-not-exist.env"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestParseUsers(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{name: "empty", raw: "", want: 0},
		{name: "two users", raw: "user1:h1, user2:h2", want: 2},
		{name: "bcrypt hash keeps colons out of id", raw: "user1:$2a$10$x", want: 1},
		{name: "missing hash", raw: "user1:", wantErr: true},
		{name: "missing separator", raw: "user1", wantErr: true},
		{name: "duplicate", raw: "user1:a,user1:b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, err := ParseUsers(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(users) != tt.want {
				t.Errorf("got %d users, want %d", len(users), tt.want)
			}
		})
	}
}
