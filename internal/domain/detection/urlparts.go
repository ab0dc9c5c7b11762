package detection

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// URLParts is the decomposed form of a scanned URL.
//
// Domain is the registrable domain (second-level label + public suffix, e.g.
// "example.co.uk"): the smallest unit a registrant can own, and the anchor for
// allowlist and brand-impersonation checks. Parsing failures degrade to empty
// strings rather than errors; empty fields simply fail all downstream
// substring checks.
type URLParts struct {
	Raw       string // normalized URL (scheme guaranteed)
	Host      string // full hostname as it appears in the URL
	Subdomain string // labels left of the registrable domain
	Domain    string // registrable domain, "" when unresolvable
	Suffix    string // public suffix without leading dot, "" when unresolvable
	IsIP      bool   // host is an IP literal
}

// Hostname returns subdomain + registrable domain, matching the host for
// well-formed URLs.
func (p URLParts) Hostname() string {
	if p.Subdomain == "" {
		return p.Domain
	}
	return p.Subdomain + "." + p.Domain
}

// NormalizeURL guarantees a scheme prefix so net/url parses the host portion
// correctly. Bare domains are treated as http.
func NormalizeURL(raw string) string {
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return "http://" + raw
	}
	return raw
}

// ParseURL normalizes a raw URL and splits its host into subdomain,
// registrable domain and public suffix. It never fails: anything the public
// suffix list cannot resolve (malformed hosts, bare labels like "localhost")
// yields empty domain fields.
func ParseURL(raw string) URLParts {
	normalized := NormalizeURL(raw)
	parts := URLParts{Raw: normalized}

	u, err := url.Parse(normalized)
	if err != nil {
		return parts
	}

	host := strings.ToLower(u.Hostname())
	parts.Host = host
	if host == "" {
		return parts
	}

	if ip := net.ParseIP(host); ip != nil {
		// IP literals have no registrable domain; keep the address in Domain
		// so length/entropy features still see the host.
		parts.Domain = host
		parts.IsIP = true
		return parts
	}

	registrable, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return parts
	}
	parts.Domain = registrable
	parts.Suffix, _ = publicsuffix.PublicSuffix(host)

	if host != registrable {
		parts.Subdomain = strings.TrimSuffix(host, "."+registrable)
	}

	return parts
}
