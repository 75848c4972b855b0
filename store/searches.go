package store

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/samber/lo"
	"github.com/xeptore/flaw/v8"

	"github.com/dmarkez/muza/errutil"
	"github.com/dmarkez/muza/must"
)

// MaxRecentSearches bounds the persisted search history; the oldest entry is
// evicted first.
const MaxRecentSearches = 10

// PushRecent prepends term to the history, dropping any case-insensitive
// duplicate so a repeated query moves to the front instead of appearing
// twice, and truncates to MaxRecentSearches.
func PushRecent(history []string, term string) []string {
	term = strings.TrimSpace(term)
	if term == "" {
		return history
	}

	out := append([]string{term}, lo.Filter(history, func(h string, _ int) bool {
		return !strings.EqualFold(h, term)
	})...)
	if len(out) > MaxRecentSearches {
		out = out[:MaxRecentSearches]
	}
	return out
}

type SearchesFile string

func (f SearchesFile) path() string {
	return string(f)
}

// Read returns the stored history, most recent first. A missing or corrupt
// file reads as empty history.
func (f SearchesFile) Read() (terms []string, err error) {
	file, err := os.OpenFile(f.path(), os.O_RDONLY, 0o0600)
	if nil != err {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, flaw.From(fmt.Errorf("failed to open searches file: %v", err)).Append(flawP)
	}
	defer func() {
		if closeErr := file.Close(); nil != closeErr {
			flawP := flaw.P{"err_debug_tree": errutil.Tree(closeErr).FlawP()}
			closeErr = flaw.From(fmt.Errorf("failed to close searches file: %v", closeErr)).Append(flawP)
			switch {
			case nil == err:
				err = closeErr
			case errutil.IsFlaw(err):
				err = must.BeFlaw(err).Join(closeErr)
			}
		}
	}()

	if err := json.NewDecoder(file).Decode(&terms); nil != err {
		return nil, nil
	}
	return terms, nil
}

func (f SearchesFile) Write(terms []string) (err error) {
	file, err := os.OpenFile(f.path(), os.O_CREATE|os.O_WRONLY|os.O_TRUNC|os.O_SYNC, 0o0600)
	if nil != err {
		flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP()}
		return flaw.From(fmt.Errorf("failed to open searches file: %v", err)).Append(flawP)
	}
	defer func() {
		if closeErr := file.Close(); nil != closeErr {
			flawP := flaw.P{"err_debug_tree": errutil.Tree(closeErr).FlawP()}
			closeErr = flaw.From(fmt.Errorf("failed to close searches file: %v", closeErr)).Append(flawP)
			if nil != err {
				err = must.BeFlaw(err).Join(closeErr)
			} else {
				err = closeErr
			}
		}
	}()

	if err := json.NewEncoder(file).Encode(terms); nil != err {
		flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP()}
		return flaw.From(fmt.Errorf("failed to encode searches file: %v", err)).Append(flawP)
	}
	return nil
}
