// Package auth owns the signed-in user state: restoring it from storage,
// logging in and out, and deriving role flags.
package auth

import "github.com/jonathan/recruit-portal/internal/types"

// State is the authentication state seen by guards and layouts.
type State struct {
	User            *types.User
	Token           string
	IsAuthenticated bool
	Loading         bool
}

// RoleFlags are derived from the user's role.
type RoleFlags struct {
	IsHR          bool
	IsAdmin       bool
	IsCandidate   bool
	IsInterviewer bool
}

// Flags derives role flags from user. Admins count as HR.
func Flags(user *types.User) RoleFlags {
	if user == nil {
		return RoleFlags{}
	}
	return RoleFlags{
		IsHR:          user.Role == types.RoleHR || user.Role == types.RoleAdmin,
		IsAdmin:       user.Role == types.RoleAdmin,
		IsCandidate:   user.Role == types.RoleCandidate,
		IsInterviewer: user.Role == types.RoleInterviewer,
	}
}

// Flags is shorthand for Flags(s.User).
func (s State) Flags() RoleFlags {
	return Flags(s.User)
}

// Role returns the user's role, or "" when signed out.
func (s State) Role() types.Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

func signedIn(user *types.User, token string) State {
	return State{User: user, Token: token, IsAuthenticated: true}
}
