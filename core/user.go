package core

import "time"

type (
	// User is an authenticated account as reported by the identity provider.
	// Subject is the stable provider-scoped ID and what canvases reference as
	// owner and collaborator IDs.
	User struct {
		Subject   string    `json:"subject"`
		Login     string    `json:"login"`
		Email     string    `json:"email,omitempty"`
		AvatarURL string    `json:"avatarUrl"`
		Name      string    `json:"name"`
		CreatedAt time.Time `json:"createdAt"`
	}
)
