// Package state holds the client's application state: who is signed in and
// the last document listing. State changes go through Reduce, keyed by the
// action kind, and the Store applies them one at a time.
package state

import (
	"gosshub/client/internal/model"
)

type Kind string

const (
	JWTSet       Kind = "jwt/set"
	AuthLogin    Kind = "auth/login"
	AuthLogout   Kind = "auth/logout"
	UserSet      Kind = "user/set"
	DocumentsSet Kind = "documents/set"
)

// Identity is what the bearer token says about the signed in user.
type Identity struct {
	Username string
	Admin    bool
}

type State struct {
	LoggedIn  bool
	JWT       string
	User      Identity
	Documents []model.Document
}

type Action struct {
	Kind      Kind
	JWT       string
	User      Identity
	Documents []model.Document
}

func SetJWT(token string) Action {
	return Action{Kind: JWTSet, JWT: token}
}

func Login() Action {
	return Action{Kind: AuthLogin}
}

func Logout() Action {
	return Action{Kind: AuthLogout}
}

func SetUser(user Identity) Action {
	return Action{Kind: UserSet, User: user}
}

func SetDocuments(documents []model.Document) Action {
	return Action{Kind: DocumentsSet, Documents: documents}
}

// Reduce returns the state that results from applying action to s. Unknown
// kinds return s unchanged.
func Reduce(s State, action Action) State {
	switch action.Kind {
	case JWTSet:
		s.JWT = action.JWT
		s.LoggedIn = action.JWT != ""
	case AuthLogin:
		s.LoggedIn = true
	case AuthLogout:
		s.LoggedIn = false
		s.JWT = ""
		s.User = Identity{}
	case UserSet:
		s.User = action.User
	case DocumentsSet:
		s.Documents = append([]model.Document(nil), action.Documents...)
	}
	return s
}
