package router

import "strings"

// SplitPath turns a request path into the segment sequence a lookup
// consumes. The path is taken as-is: no normalization happens here, the
// caller decides the encoding convention and must use the same one at
// registration time for literal segments.
func SplitPath(path string) []string {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
