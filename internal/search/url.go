package search

import (
	"net/url"
	"strings"
)

// trackingParams are query parameters stripped during URL normalization so
// the same page reached through different campaigns deduplicates to one
// candidate.
var trackingParams = map[string]bool{
	"fbclid": true, "gclid": true, "msclkid": true, "ref": true,
	"ref_src": true, "mc_cid": true, "mc_eid": true, "igshid": true,
}

// NormalizeURL canonicalizes a URL for deduplication: lowercase scheme and
// host, www. prefix removed, tracking parameters stripped, trailing slash
// and fragment dropped. Returns "" for unparseable or non-HTTP URLs.
func NormalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return ""
	}

	host := strings.ToLower(u.Host)
	host = strings.TrimPrefix(host, "www.")

	q := u.Query()
	for param := range q {
		if trackingParams[param] || strings.HasPrefix(param, "utm_") {
			q.Del(param)
		}
	}

	u.Scheme = scheme
	u.Host = host
	u.RawQuery = q.Encode()
	u.Fragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/")

	return u.String()
}

// DomainOf extracts the lowercase host (without www.) from a URL.
func DomainOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}

// authorityTier classifies a domain for diversity capping: 0 is highest.
func authorityTier(domain string) int {
	switch {
	case strings.HasSuffix(domain, ".gov"), strings.HasSuffix(domain, ".mil"),
		strings.HasSuffix(domain, ".edu"), strings.HasSuffix(domain, ".europa.eu"):
		return 0
	case strings.HasSuffix(domain, ".org"), strings.HasSuffix(domain, ".int"):
		return 1
	default:
		return 2
	}
}
