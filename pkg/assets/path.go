package assets

import "strings"

// hasSuffix reports whether name ends with suffix.
func hasSuffix(name, suffix string) bool {
	return strings.HasSuffix(name, suffix)
}

// joinPaths joins path fragments with exactly one "/" between them.
// Empty fragments are skipped. A leading "/" on the first fragment and a
// trailing "/" on the last one are preserved.
func joinPaths(parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	if len(nonEmpty) == 0 {
		return ""
	}

	var b strings.Builder
	last := len(nonEmpty) - 1
	for i, p := range nonEmpty {
		if i > 0 {
			p = strings.TrimLeft(p, "/")
		}
		if i < last {
			p = strings.TrimRight(p, "/")
		}
		if i > 0 {
			b.WriteByte('/')
		}
		b.WriteString(p)
	}
	return b.String()
}
