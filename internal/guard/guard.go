// Package guard decides which commands a session may run, mirroring the
// protected and unauthed routes of the web client.
package guard

import "gosshub/client/internal/state"

type Role string
type Action string
type Access int

const (
	RoleAnonymous Role = "anonymous"
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
)

const (
	ActionRead    Action = "read"
	ActionComment Action = "comment"
	ActionWrite   Action = "write"
	ActionWatch   Action = "watch"
	ActionAdmin   Action = "admin"
)

const (
	Public Access = iota
	// Protected requires a logged in session.
	Protected
	// Unauthed is only for sessions that are not logged in, such as login
	// and register.
	Unauthed
	Admin
)

const (
	LoginPath = "/login"
	HomePath  = "/"
)

func Can(role Role, action Action) bool {
	switch role {
	case RoleAdmin:
		return true
	case RoleUser:
		return action == ActionRead || action == ActionComment || action == ActionWrite || action == ActionWatch
	case RoleAnonymous:
		return action == ActionRead
	default:
		return false
	}
}

// RoleOf derives the role from the application state.
func RoleOf(s state.State) Role {
	switch {
	case !s.LoggedIn:
		return RoleAnonymous
	case s.User.Admin:
		return RoleAdmin
	default:
		return RoleUser
	}
}

type Decision struct {
	Allow    bool
	Redirect string
}

// Check applies access to s. Denied decisions carry the path the web client
// would have redirected to.
func Check(s state.State, access Access) Decision {
	role := RoleOf(s)
	switch access {
	case Protected:
		if role == RoleAnonymous {
			return Decision{Redirect: LoginPath}
		}
	case Unauthed:
		if role != RoleAnonymous {
			return Decision{Redirect: HomePath}
		}
	case Admin:
		if role == RoleAnonymous {
			return Decision{Redirect: LoginPath}
		}
		if role != RoleAdmin {
			return Decision{Redirect: HomePath}
		}
	}
	return Decision{Allow: true}
}
