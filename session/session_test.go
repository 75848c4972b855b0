package session_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmarkez/muza/api"
	"github.com/dmarkez/muza/session"
	"github.com/dmarkez/muza/store"
)

type fakeAuth struct {
	user *api.User
	err  error
}

func (f *fakeAuth) Login(context.Context, string, string) (*api.User, error) {
	return f.user, f.err
}

func (f *fakeAuth) Register(context.Context, string, string) (*api.User, error) {
	return f.user, f.err
}

func newStateDir(t *testing.T) store.StateDir {
	t.Helper()
	dir, err := store.New(t.TempDir())
	require.NoError(t, err)
	return dir
}

func TestLoadWithoutStoredSession(t *testing.T) {
	t.Parallel()

	s := session.Load(newStateDir(t), zerolog.Nop())
	assert.False(t, s.LoggedIn())

	_, err := s.User()
	assert.ErrorIs(t, err, session.ErrLoggedOut)
	_, err = s.UserID()
	assert.ErrorIs(t, err, session.ErrLoggedOut)
}

func TestLoadWithCorruptSessionFailsOpen(t *testing.T) {
	t.Parallel()

	dir := newStateDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(string(dir), "session.json"), []byte("not json at all"), 0o0600))

	s := session.Load(dir, zerolog.Nop())
	assert.False(t, s.LoggedIn(), "corrupt session data reads as logged out")
}

func TestLoginPersistsAcrossLoad(t *testing.T) {
	t.Parallel()

	dir := newStateDir(t)
	s := session.Load(dir, zerolog.Nop())

	auth := &fakeAuth{user: &api.User{ID: 7, Username: "santi", Email: "santi@example.com", Plan: "premium"}, err: nil}
	require.NoError(t, s.Login(t.Context(), auth, "santi", "secreto"))
	require.True(t, s.LoggedIn())

	reloaded := session.Load(dir, zerolog.Nop())
	require.True(t, reloaded.LoggedIn())
	user, err := reloaded.User()
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, "santi", user.Username)
}

func TestLogoutDestroysSession(t *testing.T) {
	t.Parallel()

	dir := newStateDir(t)
	s := session.Load(dir, zerolog.Nop())

	auth := &fakeAuth{user: &api.User{ID: 7, Username: "santi", Email: "", Plan: ""}, err: nil}
	require.NoError(t, s.Login(t.Context(), auth, "santi", "secreto"))

	require.NoError(t, s.Logout())
	assert.False(t, s.LoggedIn())
	assert.False(t, session.Load(dir, zerolog.Nop()).LoggedIn())
}

func TestLoginFailureLeavesLoggedOut(t *testing.T) {
	t.Parallel()

	s := session.Load(newStateDir(t), zerolog.Nop())
	auth := &fakeAuth{user: nil, err: api.ErrBadCredentials}

	err := s.Login(t.Context(), auth, "santi", "mal")
	require.ErrorIs(t, err, api.ErrBadCredentials)
	assert.False(t, s.LoggedIn())
}

func TestHumanizeAuthError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Incorrect username or password.", session.HumanizeAuthError(api.ErrBadCredentials))
	assert.Equal(t, "No account exists with that username.", session.HumanizeAuthError(api.ErrAccountNotFound))
	assert.Contains(t, session.HumanizeAuthError(assert.AnError), "Could not reach the server")
}
