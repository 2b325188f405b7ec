package view

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"gosshub/client/internal/api"
	"gosshub/client/internal/model"
)

var ErrNotAdmin = errors.New("admin access required")

type AdminAPI interface {
	User(ctx context.Context, username string) (model.User, error)
	Users(ctx context.Context, username string) ([]model.User, error)
	Pages(ctx context.Context) ([]model.Page, error)
	SetUserFlag(ctx context.Context, id model.ID, flag string, value bool) (api.Message, error)
	DeleteUser(ctx context.Context, id model.ID) (api.Message, error)
	CreatePage(ctx context.Context, page model.Page) (api.Message, error)
	UpdatePage(ctx context.Context, slug, title, body string) (api.Message, error)
	DeletePage(ctx context.Context, slug string) (api.Message, error)
}

type AdminPanel struct {
	api   AdminAPI
	Admin model.User
	Users []model.User
	Pages []model.Page
}

// LoadAdminPanel confirms username is an admin on the server, then loads
// users and pages concurrently.
func LoadAdminPanel(ctx context.Context, client AdminAPI, username string) (*AdminPanel, error) {
	if username == "" {
		return nil, ErrNotAdmin
	}
	me, err := client.User(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("load admin: %w", err)
	}
	if !me.IsAdmin {
		return nil, ErrNotAdmin
	}

	panel := &AdminPanel{api: client, Admin: me}
	if err := panel.Refresh(ctx); err != nil {
		return nil, err
	}
	return panel, nil
}

func (p *AdminPanel) Refresh(ctx context.Context) error {
	var (
		users []model.User
		pages []model.Page
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = p.api.Users(gctx, "")
		if err != nil {
			return fmt.Errorf("load users: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		pages, err = p.api.Pages(gctx)
		if err != nil {
			return fmt.Errorf("load pages: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	p.Users, p.Pages = users, pages
	return nil
}

func (p *AdminPanel) SetAdmin(ctx context.Context, id model.ID, admin bool) error {
	return p.mutate(ctx, func() error {
		_, err := p.api.SetUserFlag(ctx, id, "is_admin", admin)
		return err
	})
}

func (p *AdminPanel) SetVerified(ctx context.Context, id model.ID, verified bool) error {
	return p.mutate(ctx, func() error {
		_, err := p.api.SetUserFlag(ctx, id, "is_verified", verified)
		return err
	})
}

func (p *AdminPanel) DeleteUser(ctx context.Context, id model.ID) error {
	if id.IsZero() {
		return fmt.Errorf("delete user: missing id")
	}
	return p.mutate(ctx, func() error {
		_, err := p.api.DeleteUser(ctx, id)
		return err
	})
}

func (p *AdminPanel) SavePage(ctx context.Context, page model.Page, create bool) error {
	return p.mutate(ctx, func() error {
		var err error
		if create {
			_, err = p.api.CreatePage(ctx, page)
		} else {
			_, err = p.api.UpdatePage(ctx, page.Slug, page.Title, page.Body)
		}
		return err
	})
}

func (p *AdminPanel) DeletePage(ctx context.Context, slug string) error {
	return p.mutate(ctx, func() error {
		_, err := p.api.DeletePage(ctx, slug)
		return err
	})
}

// mutate runs a write and reloads the panel from the server.
func (p *AdminPanel) mutate(ctx context.Context, write func() error) error {
	if err := write(); err != nil {
		return err
	}
	return p.Refresh(ctx)
}
