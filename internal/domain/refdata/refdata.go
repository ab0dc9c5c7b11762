package refdata

// Lists bundles the static reference data consumed by the detection engine.
// It is built once at startup and treated as read-only afterwards; any number
// of concurrent scans may share a single instance.
type Lists struct {
	// ProtectedBrands maps a brand name to the domains that legitimately
	// represent that brand. Used for the impersonation hard-block.
	ProtectedBrands map[string][]string

	// SafeDomains is the union of all legitimate brand domains, used as the
	// allowlist fast pass by the rules engine.
	SafeDomains map[string]bool

	// SuspiciousKeywords are matched as substrings against the domain and
	// subdomain of a URL.
	SuspiciousKeywords []string

	// SuspiciousTLDs are public suffixes frequently abused by phishing
	// campaigns, with a leading dot (".xyz").
	SuspiciousTLDs []string

	// ShortenerDomains are URL-shortening services; a shortened link hides
	// its destination and is a weak phishing indicator.
	ShortenerDomains []string

	// EmailUrgencyKeywords are pressure/urgency phrases matched against email
	// bodies by the email analyzer.
	EmailUrgencyKeywords []string
}

// Default returns the built-in reference lists.
//
// In production these would be loaded from a feed or a database table so the
// security team can update them without a redeploy; the curated defaults below
// cover the most commonly impersonated consumer brands.
func Default() *Lists {
	brands := map[string][]string{
		"paypal":     {"paypal.com", "paypal.me"},
		"google":     {"google.com", "accounts.google.com", "drive.google.com"},
		"microsoft":  {"microsoft.com", "live.com", "office.com", "azure.com"},
		"amazon":     {"amazon.com", "aws.amazon.com"},
		"facebook":   {"facebook.com", "fb.com", "messenger.com"},
		"apple":      {"apple.com", "icloud.com"},
		"netflix":    {"netflix.com"},
		"instagram":  {"instagram.com"},
		"linkedin":   {"linkedin.com"},
		"chase":      {"chase.com"},
		"wellsfargo": {"wellsfargo.com"},
		"dropbox":    {"dropbox.com"},
		"adobe":      {"adobe.com"},
		"twitter":    {"twitter.com", "x.com"},
		"whatsapp":   {"whatsapp.com"},
		"telegram":   {"telegram.org"},
		"zoom":       {"zoom.us"},
		"tiktok":     {"tiktok.com"},
		"roblox":     {"roblox.com"},
		"steam":      {"steampowered.com", "steamcommunity.com"},
		"coinbase":   {"coinbase.com"},
		"blockchain": {"blockchain.com"},
		"binance":    {"binance.com"},
	}

	safe := make(map[string]bool)
	for _, domains := range brands {
		for _, d := range domains {
			safe[d] = true
		}
	}

	return &Lists{
		ProtectedBrands: brands,
		SafeDomains:     safe,
		SuspiciousKeywords: []string{
			"verify", "urgent", "account", "suspended", "login", "password",
			"credential", "update", "confirm", "security", "alert",
			"security-alert", "verify-account", "update-payment", "login-attempt",
			"unusual-activity", "locked", "confirm-identity", "secure-login",
			"account-recovery", "password-reset", "billing-issue",
		},
		SuspiciousTLDs: []string{
			".xyz", ".top", ".gq", ".tk", ".ml", ".cf", ".ga", ".bd", ".ke",
			".pk", ".cn", ".ru", ".rest", ".fit",
		},
		ShortenerDomains: []string{
			"bit.ly", "goo.gl", "tinyurl.com", "t.co", "is.gd", "cli.gs",
			"yfrog.com", "migre.me", "ff.im", "tiny.cc", "url4.eu", "twit.ac",
			"su.pr", "twurl.nl", "snipurl.com", "cl.lz",
		},
		EmailUrgencyKeywords: []string{
			"urgently", "immediate action", "verify your account",
			"password expiration", "unauthorized access", "suspended",
			"cancell", "bitcoin", "fund transfer",
		},
	}
}

// IsSafeDomain reports whether the registrable domain is on the brand
// allowlist.
func (l *Lists) IsSafeDomain(domain string) bool {
	return l.SafeDomains[domain]
}

// IsShortener reports whether the registrable domain belongs to a known
// URL-shortening service.
func (l *Lists) IsShortener(domain string) bool {
	for _, s := range l.ShortenerDomains {
		if domain == s {
			return true
		}
	}
	return false
}

// IsSuspiciousTLD reports whether the given public suffix (without leading
// dot) is on the suspicious-TLD list.
func (l *Lists) IsSuspiciousTLD(suffix string) bool {
	if suffix == "" {
		return false
	}
	dotted := "." + suffix
	for _, t := range l.SuspiciousTLDs {
		if dotted == t {
			return true
		}
	}
	return false
}
