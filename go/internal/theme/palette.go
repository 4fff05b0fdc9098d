// Package theme maps a followed team to the wrist's color palette.
package theme

import (
	"strings"

	"github.com/mcdev12/basehaptic/go/internal/models"
)

// Palette holds a team's colors as #RRGGBB strings
type Palette struct {
	Team          string `json:"team"`
	Primary       string `json:"primary"`
	PrimaryDark   string `json:"primary_dark"`
	Secondary     string `json:"secondary"`
	Accent        string `json:"accent"`
	GradientStart string `json:"gradient_start"`
	GradientEnd   string `json:"gradient_end"`
}

var defaultPalette = Palette{
	Team:          models.TeamDefault,
	Primary:       "#3B82F6",
	PrimaryDark:   "#2563EB",
	Secondary:     "#60A5FA",
	Accent:        "#60A5FA",
	GradientStart: "#3B82F6",
	GradientEnd:   "#2563EB",
}

var palettes = map[string]Palette{
	"DOOSAN":  {Team: "DOOSAN", Primary: "#131230", PrimaryDark: "#0A0918", Secondary: "#EF4444", Accent: "#60A5FA", GradientStart: "#131230", GradientEnd: "#1E1C4B"},
	"LG":      {Team: "LG", Primary: "#C30452", PrimaryDark: "#8E023B", Secondary: "#000000", Accent: "#F472B6", GradientStart: "#C30452", GradientEnd: "#8E023B"},
	"KIWOOM":  {Team: "KIWOOM", Primary: "#820024", PrimaryDark: "#5C001A", Secondary: "#D4A843", Accent: "#FCA5A5", GradientStart: "#820024", GradientEnd: "#5C001A"},
	"SAMSUNG": {Team: "SAMSUNG", Primary: "#074CA1", PrimaryDark: "#053678", Secondary: "#FFFFFF", Accent: "#93C5FD", GradientStart: "#074CA1", GradientEnd: "#053678"},
	"LOTTE":   {Team: "LOTTE", Primary: "#041E42", PrimaryDark: "#021230", Secondary: "#E31B23", Accent: "#93C5FD", GradientStart: "#041E42", GradientEnd: "#021230"},
	"SSG":     {Team: "SSG", Primary: "#CE0E2D", PrimaryDark: "#960A20", Secondary: "#FFD700", Accent: "#FCA5A5", GradientStart: "#CE0E2D", GradientEnd: "#960A20"},
	"KT":      {Team: "KT", Primary: "#1A1A1A", PrimaryDark: "#000000", Secondary: "#ED1C24", Accent: "#A3A3A3", GradientStart: "#1A1A1A", GradientEnd: "#000000"},
	"HANWHA":  {Team: "HANWHA", Primary: "#FF6600", PrimaryDark: "#CC5200", Secondary: "#000000", Accent: "#FDBA74", GradientStart: "#FF6600", GradientEnd: "#CC5200"},
	"KIA":     {Team: "KIA", Primary: "#EA0029", PrimaryDark: "#B5001F", Secondary: "#000000", Accent: "#FCA5A5", GradientStart: "#EA0029", GradientEnd: "#B5001F"},
	"NC":      {Team: "NC", Primary: "#315288", PrimaryDark: "#213A61", Secondary: "#CFB53B", Accent: "#93C5FD", GradientStart: "#315288", GradientEnd: "#213A61"},
}

// Default returns the palette used when no team is followed.
func Default() Palette { return defaultPalette }

// Lookup returns the palette for team, matched case-insensitively. Unknown teams get
// the default palette.
func Lookup(team string) Palette {
	if p, ok := palettes[strings.ToUpper(strings.TrimSpace(team))]; ok {
		return p
	}
	return defaultPalette
}

// Teams returns the default palette followed by every club's palette in display order.
func Teams() []Palette {
	out := []Palette{defaultPalette}
	for _, t := range models.Teams() {
		out = append(out, palettes[t.Code])
	}
	return out
}

// Resolve picks the team the wrist should be themed for. Any synced team other than
// DEFAULT wins, and an unrecognised one themes as DEFAULT. Otherwise the game's
// followed team is used.
func Resolve(synced, gameTeam string) string {
	if s := strings.TrimSpace(synced); s != "" && !strings.EqualFold(s, models.TeamDefault) {
		if t, ok := models.FindTeam(s); ok {
			return t.Code
		}
		return models.TeamDefault
	}
	if t, ok := models.FindTeam(gameTeam); ok {
		return t.Code
	}
	return models.TeamDefault
}
