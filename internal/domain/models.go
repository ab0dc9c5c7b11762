package domain

import (
	"time"

	"github.com/google/uuid"
)

// Verdict is the categorical outcome of a scan.
type Verdict string

const (
	// URL scan verdicts, derived from the fused confidence score.
	VerdictLegitimate Verdict = "LEGITIMATE"
	VerdictSuspicious Verdict = "SUSPICIOUS"
	VerdictPhishing   Verdict = "PHISHING"

	// VerdictSafe is the default verdict for email and image scans that
	// surfaced no threat signal.
	VerdictSafe Verdict = "SAFE"

	// VerdictCautionQR means an image carried a machine-readable QR payload
	// that scanned clean. It is deliberately distinct from SAFE: the presence
	// of a scannable payload is always worth signalling to the caller.
	VerdictCautionQR Verdict = "CAUTION (QR Found)"
)

// IsThreat reports whether a verdict should be treated as a positive signal.
func (v Verdict) IsThreat() bool {
	return v == VerdictPhishing || v == VerdictSuspicious
}

// RuleResult is the output of the deterministic rules engine.
//
// Blocked is the brand-impersonation short circuit: when set, Score is exactly
// 1.0 and no further heuristics ran. Otherwise Score accumulates heuristic
// weights and is clamped to 0.9; heuristics alone never reach certainty.
type RuleResult struct {
	Blocked   bool     `json:"blocked"`
	Score     float64  `json:"score"`
	Triggered []string `json:"rules_triggered"`
}

// ScanDetails carries the sub-scores behind a URL verdict for auditability.
type ScanDetails struct {
	// MLScore is the classifier probability for non-blocked URLs. Nil when
	// the ML step was skipped (brand block).
	MLScore *float64 `json:"ml_score,omitempty"`

	// MLDegraded is set when the model was unavailable or failed and the
	// neutral 0.5 probability was substituted. It lets callers distinguish
	// "confidently safe" from "could not determine".
	MLDegraded bool `json:"ml_degraded,omitempty"`

	RuleResult RuleResult `json:"rule_result"`
}

// ScanResult is the outcome of scanning a single URL.
type ScanResult struct {
	URL     string      `json:"url"`
	Score   float64     `json:"score"` // fused score, rounded to 4 decimals
	Verdict Verdict     `json:"verdict"`
	Reason  string      `json:"reason,omitempty"` // set on rule blocks
	Details ScanDetails `json:"details"`
}

// URLFinding summarizes a flagged URL embedded in an email body.
type URLFinding struct {
	URL     string  `json:"url"`
	Verdict Verdict `json:"verdict"`
	Score   float64 `json:"score"`
}

// EmailDetails holds the parsed evidence behind an email verdict.
type EmailDetails struct {
	Headers        map[string]string `json:"headers"`
	BodyPreview    string            `json:"body_preview"`
	SpoofingReason string            `json:"spoofing_reason,omitempty"`

	// AuthFailures lists SPF/DKIM/DMARC failure markers found in the
	// Authentication-Results header. Informational only; it does not feed
	// the score.
	AuthFailures []string `json:"auth_failures,omitempty"`

	AttachmentCount int `json:"attachment_count"`
}

// EmailScanResult is the outcome of analyzing a raw email message.
type EmailScanResult struct {
	Verdict          Verdict      `json:"verdict"`
	Score            float64      `json:"score"`
	SpoofingDetected bool         `json:"spoofing_detected"`
	SuspiciousURLs   []URLFinding `json:"suspicious_urls"`
	KeywordsFound    []string     `json:"keywords_found"`
	Details          EmailDetails `json:"details"`

	// Error captures a parse failure. The rest of the result holds SAFE
	// defaults in that case; the analyzer never propagates the failure.
	Error string `json:"error,omitempty"`
}

// QRCodeFinding pairs a decoded QR payload with the URL scan it triggered.
type QRCodeFinding struct {
	Data       string     `json:"data"`
	ScanResult ScanResult `json:"scan_result"`
}

// ImageScanResult is the outcome of analyzing an uploaded image.
type ImageScanResult struct {
	Filename           string          `json:"filename"`
	ThreatDetected     bool            `json:"threat_detected"`
	QRCodes            []QRCodeFinding `json:"qr_codes"`
	MetadataSuspicious bool            `json:"metadata_suspicious"`
	Verdict            Verdict         `json:"verdict"`
	Error              string          `json:"error,omitempty"`
}

// ScanRecord is the persisted form of a completed URL scan.
//
// Simplification: email and image scans are not persisted, matching the
// original pipeline where only URL scans feed the history view. Extending the
// record with a kind column would be the natural next step.
type ScanRecord struct {
	ID        uuid.UUID   `json:"id"`
	URL       string      `json:"url"`
	Score     float64     `json:"score"`
	Verdict   Verdict     `json:"verdict"`
	Details   ScanDetails `json:"details"`
	ScannedAt time.Time   `json:"scanned_at"`
}

// NewScanRecord stamps a scan result for persistence.
func NewScanRecord(res ScanResult, at time.Time) ScanRecord {
	return ScanRecord{
		ID:        uuid.New(),
		URL:       res.URL,
		Score:     res.Score,
		Verdict:   res.Verdict,
		Details:   res.Details,
		ScannedAt: at,
	}
}
