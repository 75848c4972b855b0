package session

import (
	"context"
	"errors"
	"os"

	"github.com/rs/zerolog"

	"github.com/dmarkez/muza/api"
	"github.com/dmarkez/muza/store"
)

var ErrLoggedOut = errors.New("logged out")

type Authenticator interface {
	Login(ctx context.Context, username, password string) (*api.User, error)
	Register(ctx context.Context, username, password string) (*api.User, error)
}

// Session is the device-local login state: the user blob persisted at login,
// read once at process start and destroyed at logout.
type Session struct {
	file   store.SessionFile
	user   *api.User
	logger zerolog.Logger
}

// Load reads the persisted session. Anything wrong with the stored data
// (missing file, unreadable file, corrupt JSON) fails open to logged-out.
func Load(dir store.StateDir, logger zerolog.Logger) *Session {
	s := &Session{
		file:   dir.Session(),
		user:   nil,
		logger: logger,
	}

	content, err := s.file.Read()
	if nil != err {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn().Err(err).Msg("Stored session is unreadable, treating as logged out")
		}
		return s
	}

	s.user = &api.User{
		ID:       content.UserID,
		Username: content.Username,
		Email:    content.Email,
		Plan:     content.Plan,
	}
	return s
}

func (s *Session) LoggedIn() bool {
	return nil != s.user
}

func (s *Session) User() (*api.User, error) {
	if nil == s.user {
		return nil, ErrLoggedOut
	}
	return s.user, nil
}

func (s *Session) UserID() (int64, error) {
	if nil == s.user {
		return 0, ErrLoggedOut
	}
	return s.user.ID, nil
}

func (s *Session) Login(ctx context.Context, auth Authenticator, username, password string) error {
	user, err := auth.Login(ctx, username, password)
	if nil != err {
		return err
	}
	return s.store(user)
}

func (s *Session) Register(ctx context.Context, auth Authenticator, username, password string) error {
	user, err := auth.Register(ctx, username, password)
	if nil != err {
		return err
	}
	return s.store(user)
}

func (s *Session) store(user *api.User) error {
	content := store.SessionFileContent{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Plan:     user.Plan,
	}
	if err := s.file.Write(content); nil != err {
		return err
	}
	s.user = user
	return nil
}

func (s *Session) Logout() error {
	if err := s.file.Delete(); nil != err {
		return err
	}
	s.user = nil
	return nil
}

// HumanizeAuthError turns an authentication failure into the single message
// shown to the user.
func HumanizeAuthError(err error) string {
	switch {
	case errors.Is(err, api.ErrBadCredentials):
		return "Incorrect username or password."
	case errors.Is(err, api.ErrAccountNotFound):
		return "No account exists with that username."
	default:
		return "Could not reach the server. Check your connection and try again."
	}
}
