package binder

import "strings"

// SafeURL normalizes an untrusted URL-like value for use in an href
// attribute. Fragment, site-relative, http(s), mailto and tel values pass
// through; anything else (javascript:, data:, garbage) collapses to "#".
func SafeURL(raw string) string {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "#"
	}
	if strings.HasPrefix(v, "#") || strings.HasPrefix(v, "/") {
		return v
	}
	lower := strings.ToLower(v)
	switch {
	case strings.HasPrefix(lower, "http://"),
		strings.HasPrefix(lower, "https://"),
		strings.HasPrefix(lower, "mailto:"),
		strings.HasPrefix(lower, "tel:"):
		return v
	}
	return "#"
}

// SafeSrc normalizes an untrusted image source. Site-relative, http(s) and
// data:image/ values pass through; anything else yields "" and the caller
// must not write the attribute at all.
func SafeSrc(raw string) string {
	v := strings.TrimSpace(raw)
	if v == "" {
		return ""
	}
	if strings.HasPrefix(v, "/") {
		return v
	}
	lower := strings.ToLower(v)
	switch {
	case strings.HasPrefix(lower, "http://"),
		strings.HasPrefix(lower, "https://"),
		strings.HasPrefix(lower, "data:image/"):
		return v
	}
	return ""
}

// WhatsAppURL derives a wa.me deep link from a phone number by stripping
// every non-digit character. An empty result yields "#".
func WhatsAppURL(raw string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return "#"
	}
	return "https://wa.me/" + digits.String()
}
