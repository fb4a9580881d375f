package extract

import "strings"

// Repair applies a single best-effort pass to near-JSON text: single quotes
// become double quotes, surrounding whitespace is trimmed and missing outer
// braces are added. It does not validate the result.
func Repair(content string) string {
	s := strings.ReplaceAll(content, "'", `"`)
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") {
		s = "{" + s
	}
	if !strings.HasSuffix(s, "}") {
		s = s + "}"
	}
	return s
}
