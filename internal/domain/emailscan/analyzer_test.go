package emailscan

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phishguard/phishguard/internal/domain"
	"github.com/phishguard/phishguard/internal/domain/detection"
	"github.com/phishguard/phishguard/internal/domain/refdata"
)

// stubModel returns a fixed probability so URL sub-scans are deterministic.
type stubModel struct {
	prob float64
}

func (m stubModel) PredictProba(features []float64) (float64, error) {
	return m.prob, nil
}

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	lists := refdata.Default()
	classifier, err := detection.NewVerdictClassifier(0.8, 0.5)
	require.NoError(t, err)

	detector := detection.NewDetector(lists, stubModel{prob: 0.1}, nil, classifier)
	return NewAnalyzer(detector, lists)
}

func TestAnalyzer_PhishingEmail(t *testing.T) {
	analyzer := newTestAnalyzer(t)

	raw := "From: PayPal Support <support@paypal.com>\n" +
		"Return-Path: <bounce@evil-sender.net>\n" +
		"Subject: Account Suspended\n" +
		"\n" +
		"Please verify your account urgently at http://paypal-security-alert.com/login\n"

	result := analyzer.Analyze(raw)

	assert.Empty(t, result.Error)
	assert.True(t, result.SpoofingDetected)
	assert.Contains(t, result.Details.SpoofingReason, "support@paypal.com")
	assert.Contains(t, result.Details.SpoofingReason, "bounce@evil-sender.net")

	assert.ElementsMatch(t, []string{"urgently", "verify your account"}, result.KeywordsFound)

	require.Len(t, result.SuspiciousURLs, 1)
	assert.Equal(t, domain.VerdictPhishing, result.SuspiciousURLs[0].Verdict)
	assert.Equal(t, 1.0, result.SuspiciousURLs[0].Score)

	// 0.4 spoofing + 0.3 keywords + 0.6 from the blocked URL, clamped.
	assert.Equal(t, 1.0, result.Score)
	assert.Equal(t, domain.VerdictPhishing, result.Verdict)
}

func TestAnalyzer_BenignEmail(t *testing.T) {
	analyzer := newTestAnalyzer(t)

	raw := "From: Bob <bob@example.com>\n" +
		"Return-Path: <bob@example.com>\n" +
		"Subject: Lunch tomorrow?\n" +
		"\n" +
		"Menu is at http://example.com/menu - see you at noon.\n"

	result := analyzer.Analyze(raw)

	assert.Empty(t, result.Error)
	assert.False(t, result.SpoofingDetected)
	assert.Empty(t, result.KeywordsFound)
	assert.Empty(t, result.SuspiciousURLs)
	assert.Equal(t, 0.0, result.Score)
	assert.Equal(t, domain.VerdictSafe, result.Verdict)
	assert.Equal(t, "Lunch tomorrow?", result.Details.Headers["Subject"])
}

func TestAnalyzer_SpoofingWithKeywordIsSuspicious(t *testing.T) {
	analyzer := newTestAnalyzer(t)

	raw := "From: IT Desk <it@company.com>\n" +
		"Return-Path: <noreply@other-host.org>\n" +
		"Subject: Notice\n" +
		"\n" +
		"Your mailbox was suspended. Contact the helpdesk.\n"

	result := analyzer.Analyze(raw)

	// 0.4 spoofing + 0.25 for one keyword.
	assert.InDelta(t, 0.65, result.Score, 0.0001)
	assert.Equal(t, domain.VerdictSuspicious, result.Verdict)
}

func TestAnalyzer_KeywordsAloneStaySafe(t *testing.T) {
	analyzer := newTestAnalyzer(t)

	raw := "From: News <digest@example.com>\n" +
		"Subject: Weekly digest\n" +
		"\n" +
		"Researchers analyzed unauthorized access patterns and responded urgently.\n"

	result := analyzer.Analyze(raw)

	assert.Len(t, result.KeywordsFound, 2)
	// 0.2 + 2 * 0.05 = 0.3, below the suspicious threshold.
	assert.InDelta(t, 0.3, result.Score, 0.0001)
	assert.Equal(t, domain.VerdictSafe, result.Verdict)
}

func TestAnalyzer_MultipartPrefersPlainText(t *testing.T) {
	analyzer := newTestAnalyzer(t)

	raw := "From: Alice <alice@example.com>\n" +
		"Subject: Report\n" +
		"Content-Type: multipart/mixed; boundary=\"frontier\"\n" +
		"\n" +
		"--frontier\n" +
		"Content-Type: text/html\n" +
		"\n" +
		"<p>html variant</p>\n" +
		"--frontier\n" +
		"Content-Type: text/plain\n" +
		"\n" +
		"plain variant\n" +
		"--frontier\n" +
		"Content-Type: application/pdf\n" +
		"Content-Disposition: attachment; filename=\"report.pdf\"\n" +
		"\n" +
		"JVBERi0=\n" +
		"--frontier--\n"

	result := analyzer.Analyze(raw)

	assert.Empty(t, result.Error)
	assert.Contains(t, result.Details.BodyPreview, "plain variant")
	assert.NotContains(t, result.Details.BodyPreview, "html variant")
	assert.Equal(t, 1, result.Details.AttachmentCount)
}

func TestAnalyzer_URLPathAndQuerySurviveExtraction(t *testing.T) {
	analyzer := newTestAnalyzer(t)

	raw := "From: Support <help@evil-host.net>\n" +
		"Subject: Action required\n" +
		"\n" +
		"Click http://evil-host.net/paypal/verify?session=1 now.\n"

	result := analyzer.Analyze(raw)

	// The brand name lives only in the path, so truncating the URL at the
	// first slash would let the impersonation through.
	require.Len(t, result.SuspiciousURLs, 1)
	assert.Equal(t, "http://evil-host.net/paypal/verify?session=1", result.SuspiciousURLs[0].URL)
	assert.Equal(t, domain.VerdictPhishing, result.SuspiciousURLs[0].Verdict)
	assert.Equal(t, 1.0, result.SuspiciousURLs[0].Score)
}

func TestAnalyzer_NestedMultipartBodyIsScanned(t *testing.T) {
	analyzer := newTestAnalyzer(t)

	raw := "From: Billing <billing@evil-host.net>\n" +
		"Subject: Invoice\n" +
		"Content-Type: multipart/mixed; boundary=\"outer\"\n" +
		"\n" +
		"--outer\n" +
		"Content-Type: multipart/alternative; boundary=\"inner\"\n" +
		"\n" +
		"--inner\n" +
		"Content-Type: text/plain\n" +
		"\n" +
		"Please verify your account urgently at http://paypal-security-alert.com\n" +
		"--inner\n" +
		"Content-Type: text/html\n" +
		"\n" +
		"<p>html variant</p>\n" +
		"--inner--\n" +
		"--outer\n" +
		"Content-Type: application/pdf\n" +
		"Content-Disposition: attachment; filename=\"invoice.pdf\"\n" +
		"\n" +
		"JVBERi0=\n" +
		"--outer--\n"

	result := analyzer.Analyze(raw)

	assert.Empty(t, result.Error)
	assert.Contains(t, result.Details.BodyPreview, "verify your account")
	assert.ElementsMatch(t, []string{"urgently", "verify your account"}, result.KeywordsFound)
	require.Len(t, result.SuspiciousURLs, 1)
	assert.Equal(t, domain.VerdictPhishing, result.SuspiciousURLs[0].Verdict)
	assert.Equal(t, 1, result.Details.AttachmentCount)
}

func TestAnalyzer_MalformedEmailReturnsErrorResult(t *testing.T) {
	analyzer := newTestAnalyzer(t)

	result := analyzer.Analyze("this is not an email at all")

	assert.NotEmpty(t, result.Error)
	assert.Equal(t, domain.VerdictSafe, result.Verdict)
	assert.Equal(t, 0.0, result.Score)
	assert.Empty(t, result.SuspiciousURLs)
}

func TestAnalyzer_AuthFailureMarkers(t *testing.T) {
	analyzer := newTestAnalyzer(t)

	raw := "From: Payroll <payroll@example.com>\n" +
		"Received-SPF: fail (sender IP not authorized)\n" +
		"Authentication-Results: mx.example.com; dkim=fail; dmarc=fail\n" +
		"Subject: Payslip\n" +
		"\n" +
		"Your payslip is attached.\n"

	result := analyzer.Analyze(raw)

	assert.ElementsMatch(t,
		[]string{"SPF_FAIL", "DKIM_FAIL", "DMARC_FAIL"},
		result.Details.AuthFailures)
	// Informational only: the markers never move the score.
	assert.Equal(t, 0.0, result.Score)
}

func TestAnalyzer_BodyPreviewTruncated(t *testing.T) {
	analyzer := newTestAnalyzer(t)

	body := ""
	for i := 0; i < 30; i++ {
		body += "lorem ipsum dolor sit amet "
	}
	raw := "From: a@example.com\nSubject: long\n\n" + body

	result := analyzer.Analyze(raw)

	assert.Len(t, result.Details.BodyPreview, 203) // 200 chars + "..."
}

func TestAnalyzer_BodyPreviewCountsRunes(t *testing.T) {
	analyzer := newTestAnalyzer(t)

	raw := "From: a@example.com\nSubject: accents\n\n" + strings.Repeat("é", 250)

	result := analyzer.Analyze(raw)

	assert.True(t, utf8.ValidString(result.Details.BodyPreview))
	assert.Equal(t, 203, utf8.RuneCountInString(result.Details.BodyPreview))
	assert.True(t, strings.HasSuffix(result.Details.BodyPreview, "..."))
}
