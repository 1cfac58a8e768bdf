package identity

import "testing"

func TestNormalizeNameCollapsesWhitespace(t *testing.T) {
	if got := NormalizeName("  Cool   Mod \t Pack "); got != "Cool Mod Pack" {
		t.Fatalf("unexpected name: %q", got)
	}
}

func TestNormalizeNameStripsTrailingCreator(t *testing.T) {
	cases := map[string]string{
		"Cool Mod by SomeCreator":       "Cool Mod",
		"Cool Mod BY some.creator_99":   "Cool Mod",
		"Standby Mode":                  "Standby Mode",
		"Mod by the bay by unpaidsimmr": "Mod by the bay",
	}
	for input, want := range cases {
		if got := NormalizeName(input); got != want {
			t.Fatalf("NormalizeName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizeNameTitleCasesOnlyAllLower(t *testing.T) {
	if got := NormalizeName("automatic beard shadows"); got != "Automatic Beard Shadows" {
		t.Fatalf("expected title casing, got %q", got)
	}
	if got := NormalizeName("LGBTQIA+ Gender Overhaul"); got != "LGBTQIA+ Gender Overhaul" {
		t.Fatalf("expected mixed casing untouched, got %q", got)
	}
}

func TestNormalizeNameStripOrderBeatsCasing(t *testing.T) {
	// The creator's lowercase name must not force title-casing of a name that
	// is otherwise deliberately cased.
	if got := NormalizeName("MCCC Settings by deaderpool"); got != "MCCC Settings" {
		t.Fatalf("unexpected name: %q", got)
	}
	// And an all-lowercase mod name still gets cased after the strip.
	if got := NormalizeName("beard shadows by lumia"); got != "Beard Shadows" {
		t.Fatalf("unexpected name: %q", got)
	}
}

func TestNormalizeNameEmpty(t *testing.T) {
	if got := NormalizeName("   "); got != "" {
		t.Fatalf("expected empty result, got %q", got)
	}
}
