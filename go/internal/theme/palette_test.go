package theme

import (
	"regexp"
	"testing"

	"github.com/mcdev12/basehaptic/go/internal/models"
)

var hexColor = regexp.MustCompile(`^#[0-9A-F]{6}$`)

func TestLookup(t *testing.T) {
	tests := []struct {
		name     string
		team     string
		wantTeam string
		primary  string
	}{
		{"exact", "SSG", "SSG", "#CE0E2D"},
		{"lower case", "kia", "KIA", "#EA0029"},
		{"padded", "  lg ", "LG", "#C30452"},
		{"default", "DEFAULT", models.TeamDefault, "#3B82F6"},
		{"unknown", "YANKEES", models.TeamDefault, "#3B82F6"},
		{"empty", "", models.TeamDefault, "#3B82F6"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Lookup(tt.team)
			if p.Team != tt.wantTeam {
				t.Errorf("Lookup(%q).Team = %q, want %q", tt.team, p.Team, tt.wantTeam)
			}
			if p.Primary != tt.primary {
				t.Errorf("Lookup(%q).Primary = %q, want %q", tt.team, p.Primary, tt.primary)
			}
		})
	}
}

func TestTeamsCoverEveryClub(t *testing.T) {
	all := Teams()
	if len(all) != len(models.Teams())+1 {
		t.Fatalf("expected %d palettes, got %d", len(models.Teams())+1, len(all))
	}
	if all[0].Team != models.TeamDefault {
		t.Fatalf("first palette should be the default, got %q", all[0].Team)
	}
	for _, p := range all {
		for _, c := range []string{p.Primary, p.PrimaryDark, p.Secondary, p.Accent, p.GradientStart, p.GradientEnd} {
			if !hexColor.MatchString(c) {
				t.Errorf("%s has malformed color %q", p.Team, c)
			}
		}
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		synced   string
		gameTeam string
		want     string
	}{
		{"SSG", "KIA", "SSG"},
		{"DEFAULT", "KIA", "KIA"},
		{"", "kia", "KIA"},
		{"DEFAULT", "", models.TeamDefault},
		{"unknown", "also unknown", models.TeamDefault},
		{"unknown", "KIA", models.TeamDefault},
		{"default", "LG", "LG"},
		{"nc", "DEFAULT", "NC"},
	}
	for _, tt := range tests {
		if got := Resolve(tt.synced, tt.gameTeam); got != tt.want {
			t.Errorf("Resolve(%q, %q) = %q, want %q", tt.synced, tt.gameTeam, got, tt.want)
		}
	}
}
