package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the JWT claims accepted by the cardrisk API. Subject carries
// the caller identity (an analyst, or the ingestion service).
type Claims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles"`
}

// HasRole reports whether the claims include role.
func (c Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the claims include at least one of roles.
func (c Claims) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if c.HasRole(r) {
			return true
		}
	}
	return false
}

// Role constants
const (
	RoleAdmin    = "admin"
	RoleAnalyst  = "analyst"
	RoleAuditor  = "auditor"
	RoleIngestor = "ingestor"
)
