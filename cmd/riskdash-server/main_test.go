package main

import (
	"testing"

	"github.com/riskdash/riskdash/internal/config"
	"github.com/riskdash/riskdash/internal/platform/calendar"
)

func TestTokenSource_Static(t *testing.T) {
	cfg := &config.Config{CalendarAuthMode: "static", CalendarStaticToken: "tok"}
	src, err := tokenSource(cfg)
	if err != nil {
		t.Fatalf("tokenSource: %v", err)
	}
	if _, ok := src.(*calendar.StaticTokenSource); !ok {
		t.Errorf("expected StaticTokenSource, got %T", src)
	}
}

func TestTokenSource_AuthorizedUser(t *testing.T) {
	cfg := &config.Config{CalendarAuthMode: "authorized-user", CalendarTokenFile: "token.json"}
	src, err := tokenSource(cfg)
	if err != nil {
		t.Fatalf("tokenSource: %v", err)
	}
	if _, ok := src.(*calendar.FileTokenSource); !ok {
		t.Errorf("expected FileTokenSource, got %T", src)
	}
}

func TestTokenSource_UnknownMode(t *testing.T) {
	cfg := &config.Config{CalendarAuthMode: "kerberos"}
	if _, err := tokenSource(cfg); err == nil {
		t.Error("expected error for unknown auth mode")
	}
}
