package view

import (
	"context"
	"fmt"
	"strings"

	"gosshub/client/internal/api"
	"gosshub/client/internal/model"
	"gosshub/client/internal/state"
)

type AccountAPI interface {
	User(ctx context.Context, username string) (model.User, error)
	UpdateUser(ctx context.Context, fields map[string]any) (api.Message, error)
	DeleteUser(ctx context.Context, id model.ID) (api.Message, error)
}

// Editable account fields.
const (
	FieldUsername = "username"
	FieldEmail    = "email"
	FieldPassword = "password"
)

type Account struct {
	api   AccountAPI
	store Dispatcher
	User  model.User
}

func LoadAccount(ctx context.Context, client AccountAPI, store Dispatcher, username string) (*Account, error) {
	user, err := client.User(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	return &Account{api: client, store: store, User: user}, nil
}

func (a *Account) current(field string) (string, error) {
	switch field {
	case FieldUsername:
		return a.User.Username, nil
	case FieldEmail:
		return a.User.Email, nil
	case FieldPassword:
		return "", nil
	default:
		return "", fmt.Errorf("unknown account field %q", field)
	}
}

// Update sends field only when the trimmed value differs from the current
// one. It reports whether a request was made.
func (a *Account) Update(ctx context.Context, field, value string) (bool, error) {
	current, err := a.current(field)
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(value) == strings.TrimSpace(current) {
		return false, nil
	}
	if _, err := a.api.UpdateUser(ctx, map[string]any{field: value}); err != nil {
		return false, fmt.Errorf("update %s: %w", field, err)
	}
	switch field {
	case FieldUsername:
		a.User.Username = value
	case FieldEmail:
		a.User.Email = value
	}
	return true, nil
}

// Delete removes the account and logs out.
func (a *Account) Delete(ctx context.Context) error {
	if _, err := a.api.DeleteUser(ctx, ""); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if a.store == nil {
		return nil
	}
	_, err := a.store.Dispatch(ctx, state.Logout())
	return err
}
