package emailscan

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/phishguard/phishguard/internal/domain"
	"github.com/phishguard/phishguard/internal/domain/detection"
	"github.com/phishguard/phishguard/internal/domain/refdata"
)

// Signal weights for the final email score. URLs carry the most weight: a
// confirmed phishing link is a stronger indicator than wording or header
// quirks.
const (
	spoofingWeight   = 0.4
	keywordBase      = 0.2
	keywordIncrement = 0.05
	urlWeight        = 0.6

	phishingThreshold   = 0.75
	suspiciousThreshold = 0.4
)

var (
	// The $-_ range spans 0x24-0x5F, covering digits, /, :, ;, =, ? and @,
	// so paths and query strings stay attached to the extracted URL.
	urlPattern = regexp.MustCompile(`https?://(?:[a-zA-Z0-9]|[$-_@.&+]|[!*(),]|%[0-9a-fA-F]{2})+`)

	// addressPattern pulls the bare address out of a header value like
	// "Alice <alice@example.com>".
	addressPattern = regexp.MustCompile(`[\w.+-]+@[\w-]+\.[\w.-]+`)
)

// Analyzer inspects raw email messages for phishing indicators: sender
// spoofing, urgency language and embedded malicious links. Embedded URLs are
// delegated to the URL detector.
type Analyzer struct {
	detector *detection.Detector
	lists    *refdata.Lists
}

// NewAnalyzer creates an email analyzer delegating URL scans to detector.
func NewAnalyzer(detector *detection.Detector, lists *refdata.Lists) *Analyzer {
	return &Analyzer{detector: detector, lists: lists}
}

// Analyze parses and scores a raw email. It always returns a well-formed
// result: parse failures are reported in the Error field alongside SAFE
// defaults, and no failure propagates to the caller.
func (a *Analyzer) Analyze(rawContent string) (result domain.EmailScanResult) {
	result = domain.EmailScanResult{
		Verdict:        domain.VerdictSafe,
		SuspiciousURLs: make([]domain.URLFinding, 0),
		KeywordsFound:  make([]string, 0),
	}

	// The caller must always receive a response object, whatever goes wrong
	// inside parsing or scanning.
	defer func() {
		if r := recover(); r != nil {
			result.Error = fmt.Sprintf("email analysis failed: %v", r)
		}
	}()

	parsed, err := parseMessage(rawContent)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Details.Headers = map[string]string{
		"From":        parsed.From,
		"Return-Path": parsed.ReturnPath,
		"Subject":     parsed.Subject,
	}
	result.Details.AttachmentCount = parsed.AttachmentCount
	result.Details.BodyPreview = preview(parsed.Body, 200)
	result.Details.AuthFailures = authFailures(parsed)

	// Spoofing: the envelope sender and the displayed sender should agree.
	fromAddr := extractAddress(parsed.From)
	returnAddr := extractAddress(parsed.ReturnPath)
	if fromAddr != "" && returnAddr != "" && fromAddr != returnAddr {
		result.SpoofingDetected = true
		result.Details.SpoofingReason = fmt.Sprintf("Mismatch: From(%s) != Return-Path(%s)", fromAddr, returnAddr)
	}

	// Urgency keywords, substring match against the lowercased body.
	bodyLower := strings.ToLower(parsed.Body)
	for _, kw := range a.lists.EmailUrgencyKeywords {
		if strings.Contains(bodyLower, kw) {
			result.KeywordsFound = append(result.KeywordsFound, kw)
		}
	}

	// Embedded URLs, each scanned by the URL detector. We track the worst
	// sub-score among flagged URLs only.
	maxURLScore := 0.0
	for _, u := range urlPattern.FindAllString(parsed.Body, -1) {
		scan := a.detector.ScanURL(u)
		if scan.Verdict.IsThreat() {
			result.SuspiciousURLs = append(result.SuspiciousURLs, domain.URLFinding{
				URL:     u,
				Verdict: scan.Verdict,
				Score:   scan.Score,
			})
			maxURLScore = math.Max(maxURLScore, scan.Score)
		}
	}

	score := 0.0
	if result.SpoofingDetected {
		score += spoofingWeight
	}
	if n := len(result.KeywordsFound); n > 0 {
		score += keywordBase + float64(n)*keywordIncrement
	}
	score += maxURLScore * urlWeight

	result.Score = math.Min(score, 1.0)

	switch {
	case result.Score > phishingThreshold:
		result.Verdict = domain.VerdictPhishing
	case result.Score > suspiciousThreshold:
		result.Verdict = domain.VerdictSuspicious
	}

	return result
}

// extractAddress returns the bare address from a header value, or "" when no
// address is present.
func extractAddress(header string) string {
	return addressPattern.FindString(header)
}

// authFailures collects SPF/DKIM/DMARC failure markers from authentication
// headers. Two or more failures usually mean spoofing rather than a single
// misconfigured protocol.
func authFailures(parsed parsedEmail) []string {
	var failures []string

	if strings.Contains(strings.ToLower(parsed.ReceivedSPF), "fail") {
		failures = append(failures, "SPF_FAIL")
	}

	authResults := strings.ToLower(parsed.AuthResults)
	if strings.Contains(authResults, "dkim=fail") {
		failures = append(failures, "DKIM_FAIL")
	}
	if strings.Contains(authResults, "dmarc=fail") {
		failures = append(failures, "DMARC_FAIL")
	}

	return failures
}

func preview(body string, limit int) string {
	runes := []rune(body)
	if len(runes) > limit {
		return string(runes[:limit]) + "..."
	}
	return body
}
