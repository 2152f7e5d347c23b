package slug

import "strings"

// Reason identifies why a slug candidate failed validation.
type Reason string

const (
	ReasonNone       Reason = ""
	ReasonEmpty      Reason = "empty"
	ReasonWhitespace Reason = "whitespace"
	ReasonDisallowed Reason = "disallowed-characters"
)

// Generate derives a URL-safe slug from a class name: lowercase, whitespace
// runs become single hyphens, everything outside [a-z0-9-] is stripped,
// repeated hyphens collapse and leading/trailing hyphens are trimmed.
func Generate(name string) string {
	lowered := strings.ToLower(name)

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			b.WriteByte('-')
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		}
	}

	out := b.String()
	for strings.Contains(out, "--") {
		out = strings.ReplaceAll(out, "--", "-")
	}
	return strings.Trim(out, "-")
}

// Validate checks a user-supplied slug candidate. Exactly one reason is
// reported, checked in priority order: emptiness before whitespace,
// whitespace before character set.
func Validate(candidate string) (bool, Reason) {
	if candidate == "" {
		return false, ReasonEmpty
	}
	if strings.ContainsAny(candidate, " \t\n\r") {
		return false, ReasonWhitespace
	}
	for _, r := range candidate {
		if !isAllowed(r) {
			return false, ReasonDisallowed
		}
	}
	return true, ReasonNone
}

// ShouldAutoDerive reports whether an edited class name should overwrite the
// current slug. The slug keeps tracking the name only while it still equals
// the value derived from the previous name; once the user diverges it, name
// edits leave it alone. A user edit that happens to reproduce the derived
// value is indistinguishable from never having touched the field, and that
// ambiguity is kept as-is.
func ShouldAutoDerive(currentSlug, previousName string) bool {
	return currentSlug == Generate(previousName)
}

func isAllowed(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '-' || r == '_':
		return true
	}
	return false
}
