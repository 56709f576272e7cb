package validation

import "testing"

func TestValidateCommunityName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		community string
		ok        bool
	}{
		{name: "valid study group", community: "Go Study Group", ok: true},
		{name: "valid with number", community: "CS 101 Crew", ok: true},
		{name: "minimum length", community: "abc", ok: true},
		{name: "too short", community: "ab", ok: false},
		{name: "whitespace only", community: "   ", ok: false},
		{name: "reserved admin", community: "admin", ok: false},
		{name: "reserved mixed case", community: "Admin", ok: false},
		{name: "reserved api", community: "api", ok: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateCommunityName(tc.community)
			if tc.ok && err != nil {
				t.Fatalf("expected valid name, got error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("expected invalid name, got nil error")
			}
		})
	}
}
