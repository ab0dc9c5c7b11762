package detection

import (
	"math"
	"strings"

	"github.com/phishguard/phishguard/internal/domain/refdata"
)

// FeatureVector is the fixed lexical/structural feature schema shared between
// model training and inference. The field set and the order of FeatureNames
// are part of the model contract: the training pipeline emits columns under
// exactly these names, so schema drift is caught by tests instead of showing
// up as silently wrong probabilities.
type FeatureVector struct {
	URLLength      float64
	DomainLength   float64
	HostnameLength float64

	CountDots    float64
	CountHyphens float64
	CountAt      float64
	CountPercent float64
	CountDigits  float64

	URLEntropy    float64
	DomainEntropy float64

	IsIP                 float64
	IsSuspiciousTLD      float64
	HasHTTPS             float64
	IsShortened          float64
	HasSuspiciousKeyword float64
}

// FeatureNames returns the canonical feature order used for model input.
func FeatureNames() []string {
	return []string{
		"url_length", "domain_length", "hostname_length",
		"count_dots", "count_hyphens", "count_at", "count_percent", "count_digits",
		"url_entropy", "domain_entropy",
		"is_ip", "is_suspicious_tld", "has_https", "is_shortened",
		"has_suspicious_keyword",
	}
}

// Values returns the feature values in FeatureNames order, ready to feed the
// classifier.
func (f FeatureVector) Values() []float64 {
	return []float64{
		f.URLLength, f.DomainLength, f.HostnameLength,
		f.CountDots, f.CountHyphens, f.CountAt, f.CountPercent, f.CountDigits,
		f.URLEntropy, f.DomainEntropy,
		f.IsIP, f.IsSuspiciousTLD, f.HasHTTPS, f.IsShortened,
		f.HasSuspiciousKeyword,
	}
}

// Map returns the named form of the vector, mirroring the training-side
// column layout.
func (f FeatureVector) Map() map[string]float64 {
	names := FeatureNames()
	values := f.Values()
	m := make(map[string]float64, len(names))
	for i, name := range names {
		m[name] = values[i]
	}
	return m
}

// FeatureExtractor turns a URL into a FeatureVector. It is a pure function of
// its input plus the static reference lists and is safe for concurrent use.
type FeatureExtractor struct {
	lists *refdata.Lists
}

// NewFeatureExtractor creates an extractor backed by the given reference lists.
func NewFeatureExtractor(lists *refdata.Lists) *FeatureExtractor {
	return &FeatureExtractor{lists: lists}
}

// Extract computes the feature vector for a raw URL. Malformed input never
// fails: unparseable hosts degrade to empty domain fields, which zero out the
// domain-derived features.
func (e *FeatureExtractor) Extract(rawURL string) FeatureVector {
	parts := ParseURL(rawURL)
	return e.extractParts(parts)
}

func (e *FeatureExtractor) extractParts(parts URLParts) FeatureVector {
	u := parts.Raw
	urlLower := strings.ToLower(u)

	digits := 0
	for _, c := range u {
		if c >= '0' && c <= '9' {
			digits++
		}
	}

	hasKeyword := 0.0
	for _, kw := range e.lists.SuspiciousKeywords {
		if strings.Contains(urlLower, kw) {
			hasKeyword = 1.0
			break
		}
	}

	return FeatureVector{
		URLLength:      float64(len(u)),
		DomainLength:   float64(len(parts.Domain)),
		HostnameLength: float64(len(parts.Hostname())),

		CountDots:    float64(strings.Count(u, ".")),
		CountHyphens: float64(strings.Count(u, "-")),
		CountAt:      float64(strings.Count(u, "@")),
		CountPercent: float64(strings.Count(u, "%")),
		CountDigits:  float64(digits),

		URLEntropy:    ShannonEntropy(u),
		DomainEntropy: ShannonEntropy(parts.Domain),

		IsIP:                 boolFeature(parts.IsIP),
		IsSuspiciousTLD:      boolFeature(e.lists.IsSuspiciousTLD(parts.Suffix)),
		HasHTTPS:             boolFeature(strings.HasPrefix(u, "https")),
		IsShortened:          boolFeature(e.lists.IsShortener(parts.Domain)),
		HasSuspiciousKeyword: hasKeyword,
	}
}

// ShannonEntropy computes -Σ p(c)·log2(p(c)) over the character frequency
// distribution of s. The entropy of an empty string is 0.
func ShannonEntropy(s string) float64 {
	if s == "" {
		return 0.0
	}

	freq := make(map[rune]int)
	total := 0
	for _, c := range s {
		freq[c]++
		total++
	}

	entropy := 0.0
	for _, count := range freq {
		p := float64(count) / float64(total)
		entropy -= p * math.Log2(p)
	}
	return entropy
}

func boolFeature(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}
