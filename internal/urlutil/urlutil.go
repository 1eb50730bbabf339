package urlutil

import (
	"net/url"
	"path"
	"strings"
)

// IsValid reports whether raw is an absolute http(s) URL worth fetching.
func IsValid(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// Normalize resolves a possibly relative href against base, defaults the
// scheme to https and strips fragments. Returns the absolute URL and host.
func Normalize(base *url.URL, href string) (string, string, error) {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", "", err
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	u.Fragment = ""
	return u.String(), strings.ToLower(u.Hostname()), nil
}

// FileName derives the bare filename from a URL or href, ignoring any query.
func FileName(raw string) string {
	raw = strings.TrimSpace(raw)
	if u, err := url.Parse(raw); err == nil {
		raw = u.Path
	} else if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	name := path.Base(raw)
	if name == "." || name == "/" {
		return ""
	}
	return name
}

// SanitizeFilename keeps only characters that are safe on every filesystem,
// replaces spaces with underscores and caps the length at 255. Always
// returns a non-empty name.
func SanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.' || r == '(' || r == ')':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	out := b.String()
	if len(out) > 255 {
		ext := path.Ext(out)
		out = out[:255-len(ext)] + ext
	}
	if out == "" {
		return "unnamed_file"
	}
	return out
}
