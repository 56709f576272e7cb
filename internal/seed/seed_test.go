package seed

import (
	"strings"
	"testing"

	"studentconnect/internal/models"
)

func TestCommunityCount(t *testing.T) {
	cases := []struct {
		users int
		want  int
	}{
		{users: 0, want: 3},
		{users: 10, want: 3},
		{users: 50, want: 5},
		{users: 200, want: 20},
	}
	for _, tc := range cases {
		if got := communityCount(tc.users); got != tc.want {
			t.Fatalf("communityCount(%d) = %d, want %d", tc.users, got, tc.want)
		}
	}
}

func TestBuiltInSkills_UniqueNames(t *testing.T) {
	seen := map[string]bool{}
	for _, skill := range BuiltInSkills {
		if skill.Name == "" || skill.Category == "" {
			t.Fatalf("built-in skill with empty field: %+v", skill)
		}
		if seen[skill.Name] {
			t.Fatalf("duplicate built-in skill name: %s", skill.Name)
		}
		seen[skill.Name] = true
	}
}

func TestFactory_BuildUser(t *testing.T) {
	f := NewFactory(42)
	user := f.BuildUser(7, "hashed")

	if user.Username == "" || !strings.HasSuffix(user.Username, "7") {
		t.Fatalf("unexpected username: %q", user.Username)
	}
	if !strings.Contains(user.Email, "@students.example.edu") {
		t.Fatalf("unexpected email: %q", user.Email)
	}
	if user.Password != "hashed" {
		t.Fatalf("password not propagated")
	}
	if !user.IsActive {
		t.Fatalf("seeded user should be active")
	}
	if user.Year < 1 || user.Year > 5 {
		t.Fatalf("year out of range: %d", user.Year)
	}
}

func TestFactory_BuildEvent_TimesOrdered(t *testing.T) {
	f := NewFactory(42)
	for i := 0; i < 20; i++ {
		event := f.BuildEvent(1)
		if !event.EndTime.After(event.StartTime) {
			t.Fatalf("event end %v not after start %v", event.EndTime, event.StartTime)
		}
		if event.IsOnline && event.MeetingURL == "" {
			t.Fatalf("online event missing meeting URL")
		}
		if !event.IsOnline && event.Location == "" {
			t.Fatalf("in-person event missing location")
		}
	}
}

func TestFactory_Proficiency_Valid(t *testing.T) {
	f := NewFactory(42)
	for i := 0; i < 50; i++ {
		if p := f.Proficiency(); !models.ValidProficiency(p) {
			t.Fatalf("invalid proficiency: %s", p)
		}
	}
}
