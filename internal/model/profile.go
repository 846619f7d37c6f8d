package model

import "time"

// Profile holds per-account metadata. UpdatedAt exists from schema V4.
type Profile struct {
	Account   string     `db:"account" json:"account"`
	IconURL   string     `db:"icon_url" json:"icon_url"`
	UpdatedAt *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// ChangeIconRequest is the request body for PUT /me/icon.
type ChangeIconRequest struct {
	URL string `json:"url"`
}

type IconResponse struct {
	Account string `json:"account"`
	IconURL string `json:"icon_url"`
}
