package detection

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/phishguard/phishguard/internal/domain"
	"github.com/phishguard/phishguard/internal/domain/refdata"
)

// Heuristic weights. Tuned against the curated reference lists; keyword hits
// accumulate, the rest fire at most once per scan.
const (
	keywordWeight = 0.3
	tldWeight     = 0.2
	ipWeight      = 0.4

	// heuristicCap keeps heuristics below certainty. Only the brand
	// impersonation block may produce 1.0.
	heuristicCap = 0.9

	// highScoreNote threshold for the informational "High Heuristic Score"
	// reason appended to the trigger list.
	highScoreNote = 0.7
)

var ipPattern = regexp.MustCompile(`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`)

// RulesEngine is the deterministic heuristic evaluator. It runs independently
// of the learned model and owns the brand-impersonation hard block.
type RulesEngine struct {
	lists *refdata.Lists

	// brands holds the protected brand names in sorted order so trigger
	// output is deterministic across runs.
	brands []string
}

// NewRulesEngine creates a rules engine backed by the given reference lists.
func NewRulesEngine(lists *refdata.Lists) *RulesEngine {
	brands := make([]string, 0, len(lists.ProtectedBrands))
	for brand := range lists.ProtectedBrands {
		brands = append(brands, brand)
	}
	sort.Strings(brands)

	return &RulesEngine{lists: lists, brands: brands}
}

// Evaluate runs the rule pipeline against a URL and returns the accumulated
// result. Evaluation order matters: the allowlist pass overrides everything,
// and a brand-impersonation hit stops the pipeline with a hard block.
func (r *RulesEngine) Evaluate(rawURL string) domain.RuleResult {
	parts := ParseURL(rawURL)
	return r.evaluateParts(parts)
}

func (r *RulesEngine) evaluateParts(parts URLParts) domain.RuleResult {
	triggered := make([]string, 0)
	score := 0.0

	// Allowlist fast pass: URLs on a brand's own registrable domain are never
	// flagged by heuristics.
	if r.lists.IsSafeDomain(parts.Domain) {
		return domain.RuleResult{Blocked: false, Score: 0.0, Triggered: []string{"Safe Domain"}}
	}

	// Brand impersonation: a protected brand name anywhere in the URL must
	// resolve to that brand's own domain. Substring matching is deliberately
	// fuzzy: it false-positives on incidental occurrences, trading precision
	// for recall on impersonation.
	urlLower := strings.ToLower(parts.Raw)
	for _, brand := range r.brands {
		if !strings.Contains(urlLower, brand) {
			continue
		}

		isValid := false
		for _, valid := range r.lists.ProtectedBrands[brand] {
			if parts.Domain == valid || strings.HasSuffix(parts.Domain, "."+valid) {
				isValid = true
				break
			}
		}

		if !isValid {
			return domain.RuleResult{
				Blocked:   true,
				Score:     1.0,
				Triggered: append(triggered, fmt.Sprintf("Brand Impersonation Detected: %s", brand)),
			}
		}
	}

	// Suspicious keywords in the domain or subdomain. Hits accumulate; the
	// final clamp bounds the total.
	for _, kw := range r.lists.SuspiciousKeywords {
		if strings.Contains(parts.Domain, kw) || strings.Contains(parts.Subdomain, kw) {
			score += keywordWeight
			triggered = append(triggered, fmt.Sprintf("Suspicious Keyword: %s", kw))
		}
	}

	// Suspicious TLD.
	if r.lists.IsSuspiciousTLD(parts.Suffix) {
		score += tldWeight
		triggered = append(triggered, fmt.Sprintf("Suspicious TLD: .%s", parts.Suffix))
	}

	// Dotted-quad anywhere in the URL. Legitimate services do not ask users
	// to visit bare IP addresses.
	if ipPattern.MatchString(parts.Raw) {
		score += ipWeight
		triggered = append(triggered, "IP Address Detected")
	}

	score = math.Min(score, heuristicCap)

	if score > highScoreNote {
		triggered = append(triggered, "High Heuristic Score")
	}

	return domain.RuleResult{Blocked: false, Score: score, Triggered: triggered}
}
