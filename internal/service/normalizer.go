package service

import (
	"net/url"
	"strings"
)

// NormalizeURL canonicalizes a user-supplied URL for deduplication. The
// raw input is never mutated for storage as long_url; only the return
// value of this function is stored as normalized_url.
//
// Rules, applied in order:
//  1. Parse as an absolute URL; reject non-http(s) schemes or an empty host.
//  2. Lowercase scheme and host.
//  3. Drop the default port for the scheme (:80 for http, :443 for https).
//  4. Drop the fragment.
//  5. Collapse an empty path to "/".
//  6. Leave the query string untouched — callers expect ?a=1&b=2 and
//     ?b=2&a=1 to remain distinct short links.
func NormalizeURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", ValidationError("invalid URL format", map[string]any{"reason": err.Error()})
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", ValidationError("only http and https URLs are allowed", map[string]any{"scheme": u.Scheme})
	}
	if u.Host == "" {
		return "", ValidationError("URL must have a host", nil)
	}

	u.Scheme = scheme
	u.Host = lowercaseHost(u.Host)
	u.Host = dropDefaultPort(u.Scheme, u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String(), nil
}

func lowercaseHost(host string) string {
	// url.Parse keeps userinfo out of Host, but a zone-id or port may be
	// present; lowercase only affects ASCII letters, so this is safe for
	// both plain hostnames and literal IPs.
	return strings.ToLower(host)
}

func dropDefaultPort(scheme, host string) string {
	switch scheme {
	case "http":
		return strings.TrimSuffix(host, ":80")
	case "https":
		return strings.TrimSuffix(host, ":443")
	}
	return host
}
