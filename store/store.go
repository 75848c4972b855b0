package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xeptore/flaw/v8"

	"github.com/dmarkez/muza/errutil"
)

const (
	sessionFileName  = "session.json"
	searchesFileName = "searches.json"
	prefsFileName    = "prefs.json"
)

// StateDir is the device-local directory holding the client's persisted
// state: session user blob, recent search terms and UI preferences.
type StateDir string

func New(dir string) (StateDir, error) {
	if err := os.MkdirAll(dir, 0o0700); nil != err {
		flawP := flaw.P{"dir": dir, "err_debug_tree": errutil.Tree(err).FlawP()}
		return "", flaw.From(fmt.Errorf("failed to create state directory: %v", err)).Append(flawP)
	}
	return StateDir(dir), nil
}

func (d StateDir) Session() SessionFile {
	return SessionFile(filepath.Join(string(d), sessionFileName))
}

func (d StateDir) Searches() SearchesFile {
	return SearchesFile(filepath.Join(string(d), searchesFileName))
}

func (d StateDir) Prefs() PrefsFile {
	return PrefsFile(filepath.Join(string(d), prefsFileName))
}
