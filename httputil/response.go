package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"
	"github.com/xeptore/flaw/v8"

	"github.com/dmarkez/muza/errutil"
)

func readResponseBody(ctx context.Context, resp *http.Response) ([]byte, error) {
	respBody, err := io.ReadAll(resp.Body)
	if nil != err {
		switch {
		case errors.Is(err, io.EOF):
			return nil, io.EOF
		case errutil.IsContext(ctx):
			return nil, ctx.Err()
		case errors.Is(err, context.DeadlineExceeded):
			return nil, context.DeadlineExceeded
		default:
			flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP()}
			return nil, flaw.From(fmt.Errorf("failed to read response body: %v", err)).Append(flawP)
		}
	}
	return respBody, nil
}

// ReadOptionalResponseBody reads the response body, treating an empty body
// as nil rather than an error. Bodyless write endpoints answer 204s.
func ReadOptionalResponseBody(ctx context.Context, resp *http.Response) ([]byte, error) {
	respBody, err := readResponseBody(ctx, resp)
	if nil != err {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	return respBody, nil
}

// ErrorMessage extracts the human-readable message the backend attaches to
// error response bodies. Empty string when the body is not JSON or carries no
// recognizable message field.
func ErrorMessage(b []byte) string {
	if !gjson.ValidBytes(b) {
		return ""
	}
	if msg := gjson.GetBytes(b, "message"); msg.Type == gjson.String {
		return msg.Str
	}
	if msg := gjson.GetBytes(b, "error"); msg.Type == gjson.String {
		return msg.Str
	}
	return ""
}
