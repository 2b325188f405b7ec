package view

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gosshub/client/internal/model"
)

func TestLoadAdminPanelRequiresAdmin(t *testing.T) {
	fake := &fakeAdminAPI{me: model.User{Username: "avery"}}
	_, err := LoadAdminPanel(context.Background(), fake, "avery")
	assert.ErrorIs(t, err, ErrNotAdmin)
	assert.Equal(t, []string{"user avery"}, fake.calls)

	_, err = LoadAdminPanel(context.Background(), fake, "")
	assert.ErrorIs(t, err, ErrNotAdmin)
}

func TestLoadAdminPanel(t *testing.T) {
	fake := &fakeAdminAPI{
		me:    model.User{ID: "1", Username: "root", IsAdmin: true},
		users: []model.User{{ID: "1", Username: "root", IsAdmin: true}, {ID: "2", Username: "avery"}},
		pages: []model.Page{{Slug: "about", Title: "About"}},
	}
	panel, err := LoadAdminPanel(context.Background(), fake, "root")
	require.NoError(t, err)
	assert.Len(t, panel.Users, 2)
	assert.Len(t, panel.Pages, 1)
	assert.ElementsMatch(t, []string{"user root", "users", "pages"}, fake.calls)

	require.NoError(t, panel.SetAdmin(context.Background(), "2", true))
	assert.True(t, panel.Users[1].IsAdmin)

	require.NoError(t, panel.SetVerified(context.Background(), "2", true))
	assert.True(t, panel.Users[1].IsVerified)

	require.NoError(t, panel.DeleteUser(context.Background(), "2"))
	assert.Len(t, panel.Users, 1)
	assert.Error(t, panel.DeleteUser(context.Background(), ""))

	require.NoError(t, panel.SavePage(context.Background(), model.Page{Slug: "faq", Title: "FAQ"}, true))
	assert.Len(t, panel.Pages, 2)
	require.NoError(t, panel.SavePage(context.Background(), model.Page{Slug: "faq", Title: "FAQ", Body: "x"}, false))
	require.NoError(t, panel.DeletePage(context.Background(), "faq"))
	assert.Contains(t, fake.calls, "update page faq")
	assert.Contains(t, fake.calls, "delete page faq")
}

func TestLoadAdminPanelPartialFailure(t *testing.T) {
	boom := errors.New("users down")
	fake := &fakeAdminAPI{me: model.User{Username: "root", IsAdmin: true}, usersErr: boom}
	_, err := LoadAdminPanel(context.Background(), fake, "root")
	assert.ErrorIs(t, err, boom)
}
