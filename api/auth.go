package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/xeptore/flaw/v8"

	"github.com/dmarkez/muza/config"
	"github.com/dmarkez/muza/errutil"
	"github.com/dmarkez/muza/httputil"
)

var (
	ErrBadCredentials  = errors.New("bad credentials")
	ErrAccountNotFound = errors.New("account not found")
)

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Plan     string `json:"plan"`
}

func (c *Client) Login(ctx context.Context, username, password string) (*User, error) {
	return c.authenticate(ctx, "login", username, password, config.LoginRequestTimeout)
}

func (c *Client) Register(ctx context.Context, username, password string) (*User, error) {
	return c.authenticate(ctx, "registro", username, password, config.RegisterRequestTimeout)
}

func (c *Client) authenticate(ctx context.Context, action, username, password string, timeout time.Duration) (*User, error) {
	reqURL, err := url.JoinPath(c.baseURL, "auth", action)
	if nil != err {
		flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, flaw.From(fmt.Errorf("failed to build auth URL: %v", err)).Append(flawP)
	}
	flawP := flaw.P{"url": reqURL, "username": username}

	payload, err := json.Marshal(map[string]string{"username": username, "password": password})
	if nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return nil, flaw.From(fmt.Errorf("failed to encode auth request payload: %v", err)).Append(flawP)
	}

	res, err := c.send(ctx, http.MethodPost, reqURL, payload, timeout)
	if nil != err {
		return nil, err
	}

	switch res.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusUnauthorized:
		return nil, ErrBadCredentials
	case http.StatusNotFound:
		return nil, ErrAccountNotFound
	case http.StatusTooManyRequests:
		return nil, ErrTooManyRequests
	default:
		flawP["status_code"] = res.StatusCode
		flawP["response_body"] = string(res.Body)
		if msg := httputil.ErrorMessage(res.Body); msg != "" {
			flawP["server_message"] = msg
		}
		return nil, flaw.From(fmt.Errorf("unexpected auth status code: %d", res.StatusCode)).Append(flawP)
	}

	var user User
	if err := json.Unmarshal(res.Body, &user); nil != err {
		flawP["response_body"] = string(res.Body)
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return nil, flaw.From(fmt.Errorf("failed to decode auth response: %v", err)).Append(flawP)
	}
	return &user, nil
}
