package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/xeptore/flaw/v8"

	"github.com/dmarkez/muza/config"
	"github.com/dmarkez/muza/errutil"
	"github.com/dmarkez/muza/httputil"
	"github.com/dmarkez/muza/ratelimit"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrTooManyRequests = errors.New("too many requests")
	ErrUnauthorized    = errors.New("unauthorized")
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	logger     zerolog.Logger
}

func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.APIBaseURL, "/"),
		httpClient: &http.Client{}, //nolint:exhaustruct
		limiter:    ratelimit.NewLimiter(ctx, cfg.RequestsPerMinute, time.Minute),
		logger:     logger,
	}
}

func (c *Client) Close() {
	c.limiter.Close()
}

func newBackoff(timeout time.Duration) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.Multiplier = 1.1
	b.MaxElapsedTime = timeout
	b.MaxInterval = 10 * time.Second
	return b
}

type response struct {
	StatusCode int
	Body       []byte
}

var errRetryableStatus = errors.New("retryable response status")

// send performs a single API round trip. Idempotent GETs are retried with
// exponential backoff on transport failures and 5xx responses; every attempt
// passes through the shared request limiter.
func (c *Client) send(ctx context.Context, method, reqURL string, payload []byte, timeout time.Duration) (*response, error) {
	flawP := flaw.P{"method": method, "url": reqURL}

	attempt := func() (*response, error) {
		reqCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		var reqBody *bytes.Buffer
		if nil != payload {
			reqBody = bytes.NewBuffer(payload)
		} else {
			reqBody = bytes.NewBuffer(nil)
		}

		req, err := http.NewRequestWithContext(reqCtx, method, reqURL, reqBody)
		if nil != err {
			if errutil.IsContext(ctx) {
				return nil, ctx.Err()
			}
			flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
			return nil, flaw.From(fmt.Errorf("failed to create %s request: %v", method, err)).Append(flawP)
		}
		req.Header.Set("Accept", "application/json")
		if nil != payload {
			req.Header.Set("Content-Type", "application/json")
		}

		var resp *http.Response
		if err := c.limiter.Do(ctx, func() error {
			var doErr error
			resp, doErr = c.httpClient.Do(req) //nolint:bodyclose
			return doErr
		}); nil != err {
			switch {
			case errutil.IsContext(ctx):
				return nil, ctx.Err()
			case errors.Is(err, context.DeadlineExceeded):
				return nil, context.DeadlineExceeded
			default:
				flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
				return nil, flaw.From(fmt.Errorf("failed to send %s request: %v", method, err)).Append(flawP)
			}
		}
		defer func() {
			if closeErr := resp.Body.Close(); nil != closeErr {
				c.logger.Warn().Err(closeErr).Str("url", reqURL).Msg("Failed to close response body")
			}
		}()

		body, err := httputil.ReadOptionalResponseBody(reqCtx, resp)
		if nil != err {
			return nil, err
		}

		if resp.StatusCode >= http.StatusBadRequest {
			flawP["response"] = errutil.HTTPResponseFlawPayload(resp)
		}
		return &response{StatusCode: resp.StatusCode, Body: body}, nil
	}

	if method != http.MethodGet {
		return attempt()
	}

	var out *response
	op := func() error {
		res, err := attempt()
		if nil != err {
			switch {
			case errutil.IsContext(ctx), errors.Is(err, context.DeadlineExceeded):
				return backoff.Permanent(err)
			case errutil.IsFlaw(err):
				return err
			default:
				return backoff.Permanent(err)
			}
		}
		if res.StatusCode >= http.StatusInternalServerError {
			flawP["status_code"] = res.StatusCode
			return errRetryableStatus
		}
		out = res
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(newBackoff(30*time.Second), ctx)); nil != err {
		if errors.Is(err, errRetryableStatus) {
			return nil, flaw.From(errors.New("server kept failing the request")).Append(flawP)
		}
		return nil, err
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, reqURL string, timeout time.Duration) ([]byte, error) {
	res, err := c.send(ctx, http.MethodGet, reqURL, nil, timeout)
	if nil != err {
		return nil, err
	}

	switch res.StatusCode {
	case http.StatusOK:
		return res.Body, nil
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusTooManyRequests:
		return nil, ErrTooManyRequests
	case http.StatusUnauthorized:
		return nil, ErrUnauthorized
	default:
		flawP := flaw.P{"url": reqURL, "status_code": res.StatusCode, "response_body": string(res.Body)}
		if msg := httputil.ErrorMessage(res.Body); msg != "" {
			flawP["server_message"] = msg
		}
		return nil, flaw.From(fmt.Errorf("unexpected status code: %d", res.StatusCode)).Append(flawP)
	}
}

// mutate covers the bodyless write endpoints (follow/unfollow, playlist
// membership). The backend answers these with 200/201/204 and no meaningful
// body.
func (c *Client) mutate(ctx context.Context, method, reqURL string, timeout time.Duration) error {
	res, err := c.send(ctx, method, reqURL, nil, timeout)
	if nil != err {
		return err
	}

	switch res.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrTooManyRequests
	case http.StatusUnauthorized:
		return ErrUnauthorized
	default:
		flawP := flaw.P{"method": method, "url": reqURL, "status_code": res.StatusCode, "response_body": string(res.Body)}
		if msg := httputil.ErrorMessage(res.Body); msg != "" {
			flawP["server_message"] = msg
		}
		return flaw.From(fmt.Errorf("unexpected status code: %d", res.StatusCode)).Append(flawP)
	}
}
