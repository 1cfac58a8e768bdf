package identity_test

import (
	"strings"
	"testing"

	"modscout/internal/fetch"
	"modscout/internal/identity"
)

func TestExtractFromPageTitle(t *testing.T) {
	body := []byte("<html><head><title>cool weather mod by frostsim</title></head><body>downloads</body></html>")
	id := identity.Extract("https://modsite.example/mods/cool-weather-mod", fetch.Result{Outcome: fetch.OutcomeOK, Body: body})

	if id.Name != "Cool Weather Mod" {
		t.Fatalf("unexpected name: %q", id.Name)
	}
	if id.Domain != "modsite.example" {
		t.Fatalf("unexpected domain: %q", id.Domain)
	}
	if id.Slug != "mods cool weather mod" {
		t.Fatalf("unexpected slug: %q", id.Slug)
	}
	if id.Blocked {
		t.Fatal("expected page not blocked")
	}
}

func TestExtractPrefersOGTitle(t *testing.T) {
	body := []byte(`<html><head><title>Site - Downloads</title><meta property="og:title" content="Better Ladders"></head><body></body></html>`)
	id := identity.Extract("https://modsite.example/better-ladders", fetch.Result{Outcome: fetch.OutcomeOK, Body: body})
	if id.Name != "Better Ladders" {
		t.Fatalf("expected og:title to win, got %q", id.Name)
	}
}

func TestExtractStripsWWW(t *testing.T) {
	id := identity.Extract("https://www.modsite.example/x", fetch.Result{Outcome: fetch.OutcomeUnreachable})
	if id.Domain != "modsite.example" {
		t.Fatalf("unexpected domain: %q", id.Domain)
	}
}

func TestExtractBlockSignatureFallsBackToSlug(t *testing.T) {
	body := []byte("<html><head><title>Just a moment...</title></head><body>Cloudflare is checking your browser</body></html>")
	id := identity.Extract("https://modsite.example/gender-orientation-overhaul", fetch.Result{Outcome: fetch.OutcomeOK, Body: body})

	if !id.Blocked {
		t.Fatal("expected blocked detection from page markers")
	}
	if id.Name != "Gender Orientation Overhaul" {
		t.Fatalf("expected slug-derived name, got %q", id.Name)
	}
}

func TestExtractBlockedOutcomeIgnoresInterstitialTitle(t *testing.T) {
	body := []byte("<html><head><title>Access denied</title></head><body></body></html>")
	id := identity.Extract("https://modsite.example/mini-mods-tweaks", fetch.Result{Outcome: fetch.OutcomeBlocked, Body: body})
	if !id.Blocked {
		t.Fatal("expected blocked identity")
	}
	if strings.Contains(id.Name, "Access") {
		t.Fatalf("interstitial title leaked into name: %q", id.Name)
	}
}

func TestExtractUnknownSentinel(t *testing.T) {
	id := identity.Extract("https://modsite.example/", fetch.Result{Outcome: fetch.OutcomeUnreachable})
	if id.Name != identity.UnknownName {
		t.Fatalf("expected sentinel name, got %q", id.Name)
	}
}

func TestExtractIsPure(t *testing.T) {
	body := []byte("<html><title>some mod</title></html>")
	first := identity.Extract("https://modsite.example/some-mod", fetch.Result{Outcome: fetch.OutcomeOK, Body: body})
	second := identity.Extract("https://modsite.example/some-mod", fetch.Result{Outcome: fetch.OutcomeOK, Body: body})
	if first != second {
		t.Fatalf("extraction not deterministic: %+v vs %+v", first, second)
	}
}

func TestFingerprintStableAndFieldSensitive(t *testing.T) {
	base := identity.Identity{URL: "https://m.example/a", Name: "A", Domain: "m.example", Slug: "a", Blocked: false}
	same := identity.Identity{URL: "https://m.example/a", Name: "A", Domain: "m.example", Slug: "a", Blocked: false}
	if base.Fingerprint() != same.Fingerprint() {
		t.Fatal("field-equal identities must share a fingerprint")
	}
	changed := base
	changed.Blocked = true
	if base.Fingerprint() == changed.Fingerprint() {
		t.Fatal("expected fingerprint to change with blocked flag")
	}
}

func TestSlugTokenCount(t *testing.T) {
	id := identity.Identity{Slug: "mods cool weather mod"}
	if got := id.SlugTokenCount(); got != 4 {
		t.Fatalf("unexpected token count: %d", got)
	}
	if got := (identity.Identity{Slug: "x"}).SlugTokenCount(); got != 1 {
		t.Fatalf("unexpected token count: %d", got)
	}
}
