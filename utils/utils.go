package utils

import (
	"fmt"
	"strings"
)

func UrlQuery(s string) string { return strings.ReplaceAll(s, " ", "+") }

func Str(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

// Domain extracts the authority segment of a URL: everything between the
// scheme separator and the first following slash. Malformed input yields "".
func Domain(link string) string {
	rest := link
	if i := strings.Index(link, "//"); i >= 0 {
		rest = link[i+2:]
	} else {
		return ""
	}
	if j := strings.IndexByte(rest, '/'); j >= 0 {
		rest = rest[:j]
	}
	return rest
}
