// ABOUTME: Tests for version constants
// ABOUTME: Ensures version information is properly defined
package version

import (
	"strings"
	"testing"
)

func TestVersionDefined(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if Product == "" {
		t.Error("Product should not be empty")
	}
	if Manufacturer == "" {
		t.Error("Manufacturer should not be empty")
	}
}

func TestVersionFormat(t *testing.T) {
	// Expect semver-style "major.minor.patch"
	parts := strings.Split(Version, ".")
	if len(parts) != 3 {
		t.Errorf("expected three version components, got %d (%q)", len(parts), Version)
	}
	for _, p := range parts {
		if p == "" {
			t.Errorf("empty version component in %q", Version)
		}
	}
}

func TestNoPlaceholders(t *testing.T) {
	for _, placeholder := range []string{"TODO", "CHANGEME", "X.Y.Z"} {
		if Version == placeholder {
			t.Errorf("Version is still the placeholder %q", placeholder)
		}
		if Product == placeholder {
			t.Errorf("Product is still the placeholder %q", placeholder)
		}
		if Manufacturer == placeholder {
			t.Errorf("Manufacturer is still the placeholder %q", placeholder)
		}
	}
}
