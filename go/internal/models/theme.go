package models

import "time"

// ThemeSelection is the viewer's followed team, used to pick a palette on the wrist
type ThemeSelection struct {
	Team      string    `json:"team"`
	UpdatedAt time.Time `json:"updated_at"`
}
