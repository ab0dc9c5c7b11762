package imagescan

import (
	"bytes"
	"fmt"
	"image"

	// Raster formats accepted for upload.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"

	"github.com/phishguard/phishguard/internal/domain"
	"github.com/phishguard/phishguard/internal/domain/detection"
)

// sizeSuspicionThreshold flags unusually large uploads. Size alone never
// changes the verdict.
const sizeSuspicionThreshold = 10 << 20 // 10 MiB

// Analyzer inspects uploaded images for machine-readable threats. QR payloads
// are decoded and delegated to the URL detector exactly as a URL scan.
type Analyzer struct {
	detector *detection.Detector
}

// NewAnalyzer creates an image analyzer delegating QR payloads to detector.
func NewAnalyzer(detector *detection.Detector) *Analyzer {
	return &Analyzer{detector: detector}
}

// Analyze decodes an image and scans any embedded QR payload.
//
// An undecodable byte buffer yields an error result with no verdict. A QR
// payload that scans clean still yields the CAUTION verdict: the analyzer
// always signals that a machine-readable payload was present, even a benign
// one.
func (a *Analyzer) Analyze(content []byte, filename string) (result domain.ImageScanResult) {
	result = domain.ImageScanResult{
		Filename: filename,
		QRCodes:  make([]domain.QRCodeFinding, 0),
		Verdict:  domain.VerdictSafe,
	}

	defer func() {
		if r := recover(); r != nil {
			result.Error = fmt.Sprintf("image analysis failed: %v", r)
			result.Verdict = ""
		}
	}()

	img, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		result.Error = "Invalid image format"
		result.Verdict = ""
		return result
	}

	if payload, ok := decodeQR(img); ok {
		scan := a.detector.ScanURL(payload)
		result.QRCodes = append(result.QRCodes, domain.QRCodeFinding{
			Data:       payload,
			ScanResult: scan,
		})

		if scan.Verdict.IsThreat() {
			result.ThreatDetected = true
			result.Verdict = scan.Verdict
		} else {
			result.Verdict = domain.VerdictCautionQR
		}
	}

	if len(content) > sizeSuspicionThreshold {
		result.MetadataSuspicious = true
	}

	return result
}

// decodeQR attempts QR detection on a decoded raster image. A missing or
// unreadable code is not an error, just an absent payload.
func decodeQR(img image.Image) (string, bool) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", false
	}

	// Readers keep per-decode state, so each call gets its own.
	reader := qrcode.NewQRCodeReader()
	decoded, err := reader.Decode(bmp, nil)
	if err != nil {
		return "", false
	}

	text := decoded.GetText()
	return text, text != ""
}
