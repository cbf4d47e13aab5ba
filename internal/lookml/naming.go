package lookml

import "strings"

// sanitizeSegment rewrites one path segment into a valid LookML identifier:
// lower-case letters, digits and underscores. Anything else collapses to an
// underscore, which is why two distinct paths can sanitize to the same view
// name and need suffixing.
func sanitizeSegment(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// sanitizePath rewrites a dotted column path into a field or view name
// component, joining segments with double underscores.
func sanitizePath(path string) string {
	segs := strings.Split(path, ".")
	for i, s := range segs {
		segs[i] = sanitizeSegment(s)
	}
	return strings.Join(segs, "__")
}

// titleLabel turns a snake_case name into a human label: "order_items"
// becomes "Order Items".
func titleLabel(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '.' || r == ' '
	})
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
