// Package game holds the role model and the deterministic role-arrangement
// table that seeds map onto.
package game

import "github.com/zedmor/mafia-token-engine/internal/token"

// Role is a player's secret role.
type Role int

const (
	RoleCitizen Role = iota
	RoleSheriff
	RoleMafia
	RoleDon
)

func (r Role) String() string {
	switch r {
	case RoleCitizen:
		return "citizen"
	case RoleSheriff:
		return "sheriff"
	case RoleMafia:
		return "mafia"
	case RoleDon:
		return "don"
	default:
		return "invalid"
	}
}

// Team is the side a role plays for.
type Team int

const (
	TeamRed Team = iota
	TeamBlack
)

func (t Team) String() string {
	if t == TeamBlack {
		return "black"
	}
	return "red"
}

// Team derives the side from the role: Mafia and Don are Black, everyone else
// is Red.
func (r Role) Team() Team {
	if r == RoleMafia || r == RoleDon {
		return TeamBlack
	}
	return TeamRed
}

// IsBlack reports whether the role plays for the mafia side.
func (r Role) IsBlack() bool { return r.Team() == TeamBlack }

// Token returns the vocabulary token for the role.
func (r Role) Token() token.Token {
	switch r {
	case RoleSheriff:
		return token.Sheriff
	case RoleMafia:
		return token.Mafia
	case RoleDon:
		return token.Don
	default:
		return token.Citizen
	}
}

// RoleFromToken maps a role token back to the role. ok is false for
// non-role tokens.
func RoleFromToken(t token.Token) (Role, bool) {
	switch t {
	case token.Citizen:
		return RoleCitizen, true
	case token.Sheriff:
		return RoleSheriff, true
	case token.Mafia:
		return RoleMafia, true
	case token.Don:
		return RoleDon, true
	default:
		return 0, false
	}
}
