package pgctl

import (
	"fmt"
	"path/filepath"
)

// Layout holds the fixed filesystem locations a local PostgreSQL server is
// controlled through. All paths are absolute once produced by Resolve.
type Layout struct {
	Root      string // installation root, e.g. /usr/lib/postgresql/16
	DataDir   string // cluster data directory (pg_ctl -D)
	LogFile   string // server log (pg_ctl -l)
	SocketDir string // unix socket directory, created on start
}

// BinDir returns the directory holding the server binaries.
func (l Layout) BinDir() string { return filepath.Join(l.Root, "bin") }

// LibDir returns the directory holding the server's shared libraries.
func (l Layout) LibDir() string { return filepath.Join(l.Root, "lib") }

// PgCtl returns the absolute path of the pg_ctl binary.
func (l Layout) PgCtl() string { return filepath.Join(l.BinDir(), "pg_ctl") }

// Resolve returns a copy of the layout with every path made absolute.
// Empty paths are rejected.
func (l Layout) Resolve() (Layout, error) {
	fields := []struct {
		name string
		ptr  *string
	}{
		{"installation root", &l.Root},
		{"data directory", &l.DataDir},
		{"log file", &l.LogFile},
		{"socket directory", &l.SocketDir},
	}
	for _, f := range fields {
		if *f.ptr == "" {
			return Layout{}, fmt.Errorf("%s is not set", f.name)
		}
		abs, err := filepath.Abs(*f.ptr)
		if err != nil {
			return Layout{}, fmt.Errorf("resolve %s %q: %w", f.name, *f.ptr, err)
		}
		*f.ptr = abs
	}
	return l, nil
}
