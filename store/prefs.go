package store

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/xeptore/flaw/v8"

	"github.com/dmarkez/muza/errutil"
	"github.com/dmarkez/muza/must"
)

type PrefsFile string

func (f PrefsFile) path() string {
	return string(f)
}

type PrefsFileContent struct {
	LastLibraryFilter string `json:"last_library_filter"`
}

// Read returns the stored preferences. Missing or corrupt prefs read as
// zero-valued, never as an error the caller has to care about.
func (f PrefsFile) Read() (c PrefsFileContent, err error) {
	file, err := os.OpenFile(f.path(), os.O_RDONLY, 0o0600)
	if nil != err {
		if errors.Is(err, os.ErrNotExist) {
			return PrefsFileContent{}, nil //nolint:exhaustruct
		}
		flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP()}
		return PrefsFileContent{}, flaw.From(fmt.Errorf("failed to open prefs file: %v", err)).Append(flawP) //nolint:exhaustruct
	}
	defer func() {
		if closeErr := file.Close(); nil != closeErr {
			flawP := flaw.P{"err_debug_tree": errutil.Tree(closeErr).FlawP()}
			closeErr = flaw.From(fmt.Errorf("failed to close prefs file: %v", closeErr)).Append(flawP)
			switch {
			case nil == err:
				err = closeErr
			case errutil.IsFlaw(err):
				err = must.BeFlaw(err).Join(closeErr)
			}
		}
	}()

	if err := json.NewDecoder(file).Decode(&c); nil != err {
		return PrefsFileContent{}, nil //nolint:exhaustruct
	}
	return c, nil
}

func (f PrefsFile) Write(c PrefsFileContent) (err error) {
	file, err := os.OpenFile(f.path(), os.O_CREATE|os.O_WRONLY|os.O_TRUNC|os.O_SYNC, 0o0600)
	if nil != err {
		flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP()}
		return flaw.From(fmt.Errorf("failed to open prefs file: %v", err)).Append(flawP)
	}
	defer func() {
		if closeErr := file.Close(); nil != closeErr {
			flawP := flaw.P{"err_debug_tree": errutil.Tree(closeErr).FlawP()}
			closeErr = flaw.From(fmt.Errorf("failed to close prefs file: %v", closeErr)).Append(flawP)
			if nil != err {
				err = must.BeFlaw(err).Join(closeErr)
			} else {
				err = closeErr
			}
		}
	}()

	if err := json.NewEncoder(file).Encode(c); nil != err {
		flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP()}
		return flaw.From(fmt.Errorf("failed to encode prefs file: %v", err)).Append(flawP)
	}
	return nil
}
