package api

import (
	"context"
	"fmt"
	"net/http"

	"gosshub/client/internal/state"
)

type tokenResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a bearer token and hands it to the
// session as jwt/set.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp tokenResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		route:  "/login",
		body:   map[string]string{"username": username, "password": password},
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("%w: login response has no token", ErrTransport)
	}
	if c.session != nil {
		if _, err := c.session.Dispatch(ctx, state.SetJWT(resp.Token)); err != nil {
			return resp.Token, fmt.Errorf("store token: %w", err)
		}
	}
	return resp.Token, nil
}

// Logout forgets the token locally. The API keeps no server side session.
func (c *Client) Logout(ctx context.Context) error {
	if c.session == nil {
		return nil
	}
	_, err := c.session.Dispatch(ctx, state.Logout())
	return err
}

// CheckSession checks whether the held token is still accepted by making an
// authorised GET /user. Only a 401 logs out; after a transport or server
// error the token is kept and the session stays logged out for this run.
func (c *Client) CheckSession(ctx context.Context) error {
	if c.session == nil || c.session.Token() == "" {
		return ErrUnauthorized
	}
	return c.do(ctx, request{method: http.MethodGet, route: "/user", authorize: true}, nil)
}

func (c *Client) VerifyEmail(ctx context.Context, verificationToken string) (Message, error) {
	var msg Message
	err := c.do(ctx, request{
		method: http.MethodPost,
		route:  "/verify-email",
		body:   map[string]string{"verification_token": verificationToken},
	}, &msg)
	return msg, err
}

func (c *Client) ResetToken(ctx context.Context, email string) (Message, error) {
	var msg Message
	err := c.do(ctx, request{method: http.MethodPost, route: "/reset-token", body: map[string]string{"email": email}}, &msg)
	return msg, err
}

func (c *Client) ResetPassword(ctx context.Context, email string) (Message, error) {
	var msg Message
	err := c.do(ctx, request{method: http.MethodPost, route: "/reset-password", body: map[string]string{"email": email}}, &msg)
	return msg, err
}

func (c *Client) NewPassword(ctx context.Context, password, repeatPassword, verificationToken string) (Message, error) {
	var msg Message
	err := c.do(ctx, request{
		method: http.MethodPost,
		route:  "/new-password",
		body: map[string]string{
			"password":           password,
			"repeat_password":    repeatPassword,
			"verification_token": verificationToken,
		},
	}, &msg)
	return msg, err
}

// Ping reaches a public endpoint to check the API is up.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, request{method: http.MethodGet, route: "/tag"}, nil)
}
