package recycle

import "strings"

// extendedPathPrefix marks an extended-length path. The parsing-name API
// used for deletion rejects the prefix, so it is stripped before handing
// paths to the shell.
const extendedPathPrefix = `\\?\`

func stripExtendedPrefix(path string) string {
	return strings.TrimPrefix(path, extendedPathPrefix)
}
