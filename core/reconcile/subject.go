package reconcile

import "strings"

// Normalize strips presentation noise from a meeting title so that
// matching focuses on the meaningful core: everything up to and
// including the first colon is removed, then one leading bracketed tag
// ("[Confidential]") or one leading word prefix ("FW:") is stripped
// from what remains, and the result is trimmed. Case is preserved;
// callers compare case-insensitively. Empty or whitespace-only input
// yields "".
func Normalize(raw string) string {
	s := raw
	if i := strings.IndexByte(s, ':'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "[") {
		if i := strings.IndexByte(s, ']'); i >= 0 {
			s = s[i+1:]
		}
	} else if i := strings.IndexByte(s, ':'); i >= 0 && !strings.ContainsAny(s[:i], " \t") {
		// A single-word prefix like "FW:" or "WG:"; multi-word text
		// before a colon is part of the title, not a prefix.
		s = s[i+1:]
	}

	return strings.TrimSpace(s)
}
