package identity

import (
	"strings"
	"testing"
)

func TestIsValidUUID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"v4", "3b241101-e2bb-4255-8caf-4136c566a962", true},
		{"v5 uppercase", "6BA7B810-9DAD-51D1-80B4-00C04FD430C8", true},
		{"v1 namespace", "6ba7b810-9dad-11d1-80b4-00c04fd430c8", true},
		{"bad variant", "3b241101-e2bb-4255-0caf-4136c566a962", false},
		{"version 6", "3b241101-e2bb-6255-8caf-4136c566a962", false},
		{"no dashes", "3b241101e2bb42558caf4136c566a962", false},
		{"clerk id", "user_123abc", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidUUID(tt.in); got != tt.want {
				t.Errorf("IsValidUUID(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeUserID_Deterministic(t *testing.T) {
	inputs := []string{"user_123abc", DemoUserID, "", "ünïcödé", strings.Repeat("x", 1024)}

	for _, in := range inputs {
		a := NormalizeUserID(in)
		b := NormalizeUserID(in)
		if a != b {
			t.Errorf("NormalizeUserID(%q) not deterministic: %s != %s", in, a, b)
		}
		if !IsValidUUID(a) {
			t.Errorf("NormalizeUserID(%q) = %s, not a valid UUID", in, a)
		}
	}
}

func TestNormalizeUserID_Passthrough(t *testing.T) {
	id := "3b241101-e2bb-4255-8caf-4136c566a962"
	if got := NormalizeUserID(id); got != id {
		t.Errorf("NormalizeUserID(%q) = %s, want unchanged", id, got)
	}
	if got := NormalizeUserID(strings.ToUpper(id)); got != id {
		t.Errorf("NormalizeUserID(upper) = %s, want %s", got, id)
	}
}

func TestNormalizeUserID_Distinct(t *testing.T) {
	if NormalizeUserID("user_a") == NormalizeUserID("user_b") {
		t.Error("different identities should not collide")
	}
	// Known value for the DNS namespace, keeps the mapping stable across releases.
	if got := NormalizeUserID("python.org"); got != "886313e1-3b8a-5372-9b90-0c9aee199e5d" {
		t.Errorf("NormalizeUserID(python.org) = %s", got)
	}
}
