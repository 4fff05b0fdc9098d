package models

import "strings"

// TeamDefault is the followed-team value used when nothing is selected.
const TeamDefault = "DEFAULT"

// Team represents a club the viewer can follow
type Team struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var teams = []Team{
	{Code: "DOOSAN", Name: "두산 베어스"},
	{Code: "LG", Name: "LG 트윈스"},
	{Code: "KIWOOM", Name: "키움 히어로즈"},
	{Code: "SAMSUNG", Name: "삼성 라이온즈"},
	{Code: "LOTTE", Name: "롯데 자이언츠"},
	{Code: "SSG", Name: "SSG 랜더스"},
	{Code: "KT", Name: "KT 위즈"},
	{Code: "HANWHA", Name: "한화 이글스"},
	{Code: "KIA", Name: "KIA 타이거즈"},
	{Code: "NC", Name: "NC 다이노스"},
}

// Teams returns the followable clubs in display order.
func Teams() []Team {
	out := make([]Team, len(teams))
	copy(out, teams)
	return out
}

// FindTeam matches a team code case-insensitively.
func FindTeam(code string) (Team, bool) {
	code = strings.TrimSpace(code)
	for _, t := range teams {
		if strings.EqualFold(t.Code, code) {
			return t, true
		}
	}
	return Team{}, false
}
