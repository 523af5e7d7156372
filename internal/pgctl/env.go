package pgctl

import (
	"os"
	"strings"
)

const libraryPathVar = "LD_LIBRARY_PATH"

// BuildEnv returns base with PATH and LD_LIBRARY_PATH pointing at the
// layout's bin and lib directories first. Inherited values are appended
// after a colon when they are non-empty. Every other variable passes
// through unchanged.
func BuildEnv(base []string, layout Layout) []string {
	env := make([]string, 0, len(base)+2)
	var inheritedPath, inheritedLib string
	for _, kv := range base {
		key, value, _ := strings.Cut(kv, "=")
		switch key {
		case "PATH":
			inheritedPath = value
		case libraryPathVar:
			inheritedLib = value
		default:
			env = append(env, kv)
		}
	}
	env = append(env,
		"PATH="+prependList(layout.BinDir(), inheritedPath),
		libraryPathVar+"="+prependList(layout.LibDir(), inheritedLib),
	)
	return env
}

func prependList(dir, inherited string) string {
	if inherited == "" {
		return dir
	}
	return dir + string(os.PathListSeparator) + inherited
}

// socketOption renders the postgres "-k" option for pg_ctl -o. pg_ctl
// hands the string to a shell, so directories with shell metacharacters
// are single-quoted.
func socketOption(dir string) string {
	if !strings.ContainsAny(dir, " \t\n'\"\\$`*?;&|<>()") {
		return "-k " + dir
	}
	return "-k '" + strings.ReplaceAll(dir, "'", `'\''`) + "'"
}
