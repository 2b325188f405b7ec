package api

import (
	"context"
	"net/http"
	"net/url"

	"gosshub/client/internal/model"
)

type Registration struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	RepeatPassword string `json:"repeat_password"`
}

func (c *Client) Register(ctx context.Context, reg Registration) (Message, error) {
	var msg Message
	err := c.do(ctx, request{method: http.MethodPost, route: "/user", body: reg}, &msg)
	return msg, err
}

// Users lists accounts. A non-empty username filters by substring.
func (c *Client) Users(ctx context.Context, username string) ([]model.User, error) {
	var query url.Values
	if username != "" {
		query = url.Values{"username": {username}}
	}
	var users []model.User
	err := c.do(ctx, request{method: http.MethodGet, route: "/user", query: query, authorize: true}, &users)
	return users, err
}

// User returns the first account matching username exactly.
func (c *Client) User(ctx context.Context, username string) (model.User, error) {
	users, err := c.Users(ctx, username)
	if err != nil {
		return model.User{}, err
	}
	for _, user := range users {
		if user.Username == username {
			return user, nil
		}
	}
	return model.User{}, &Error{Status: http.StatusNotFound, Reason: "Not Found", Message: "No user found with this username."}
}

// UpdateUser sends fields as given. Without an "id" the signed in account is
// updated; admins pass one to edit other accounts.
func (c *Client) UpdateUser(ctx context.Context, fields map[string]any) (Message, error) {
	var msg Message
	err := c.do(ctx, request{method: http.MethodPut, route: "/user", authorize: true, body: fields}, &msg)
	return msg, err
}

func (c *Client) SetUserFlag(ctx context.Context, id model.ID, flag string, value bool) (Message, error) {
	return c.UpdateUser(ctx, map[string]any{"id": id, flag: value})
}

// DeleteUser removes the account with id, or the signed in account when id
// is zero.
func (c *Client) DeleteUser(ctx context.Context, id model.ID) (Message, error) {
	var query url.Values
	if !id.IsZero() {
		query = url.Values{"id": {id.String()}}
	}
	var msg Message
	err := c.do(ctx, request{method: http.MethodDelete, route: "/user", query: query, authorize: true}, &msg)
	return msg, err
}

func (c *Client) Pages(ctx context.Context) ([]model.Page, error) {
	var pages []model.Page
	err := c.do(ctx, request{method: http.MethodGet, route: "/page", authorize: true}, &pages)
	return pages, err
}

func (c *Client) Page(ctx context.Context, slug string) (model.Page, error) {
	var page model.Page
	err := c.do(ctx, request{method: http.MethodGet, route: "/page", query: url.Values{"slug": {slug}}}, &page)
	return page, err
}

func (c *Client) CreatePage(ctx context.Context, page model.Page) (Message, error) {
	var msg Message
	err := c.do(ctx, request{method: http.MethodPost, route: "/page", authorize: true, body: page}, &msg)
	return msg, err
}

func (c *Client) UpdatePage(ctx context.Context, slug, title, body string) (Message, error) {
	var msg Message
	err := c.do(ctx, request{
		method:    http.MethodPut,
		route:     "/page",
		query:     url.Values{"slug": {slug}},
		authorize: true,
		body:      map[string]string{"title": title, "body": body},
	}, &msg)
	return msg, err
}

func (c *Client) DeletePage(ctx context.Context, slug string) (Message, error) {
	var msg Message
	err := c.do(ctx, request{method: http.MethodDelete, route: "/page", query: url.Values{"slug": {slug}}, authorize: true}, &msg)
	return msg, err
}
