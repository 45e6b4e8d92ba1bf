package audit

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gauravkdeore/ghostmap-go/internal/httpclient"
)

var wafLogger = log.New(log.Writer(), "ghostmap/audit/wafdetect: ", log.LstdFlags)

var wafSignatures = []struct {
	header string
	needle string
	name   string
}{
	{"Server", "cloudflare", "Cloudflare"},
	{"Cf-Ray", "", "Cloudflare"},
	{"Server", "akamaighost", "Akamai"},
	{"X-Cdn", "akamai", "Akamai"},
	{"Via", "cloudfront", "AWS CloudFront"},
	{"X-Amz-Cf-Id", "", "AWS CloudFront"},
	{"X-Iinfo", "", "Imperva Incapsula"},
	{"X-Cdn", "incapsula", "Imperva Incapsula"},
}

var activeWAFPayloads = []string{
	`<script>alert(1)</script>`,
	`' OR 1=1 --`,
}

// WAFDetection is the outcome of WAF fingerprinting: whether one was found,
// its name, and a confidence score (2.0 = passive header signature, 1.0 =
// active behavioral signal).
type WAFDetection struct {
	Detected   bool
	Name       string
	Confidence float64
}

// WAFDetector fingerprints a target's edge WAF/CDN, passively from response
// headers and, if that fails, actively by sending two benign-looking
// malicious payloads and watching for a block response the baseline didn't
// produce.
type WAFDetector struct {
	client *httpclient.Client
}

// NewWAFDetector builds a WAFDetector using client for its probe requests.
func NewWAFDetector(client *httpclient.Client) *WAFDetector {
	return &WAFDetector{client: client}
}

// Detect runs the passive check first, falling back to the active check
// only if nothing passive was found.
func (d *WAFDetector) Detect(ctx context.Context, baseURL string) WAFDetection {
	resp, err := d.client.Get(ctx, baseURL, nil)
	if err != nil {
		wafLogger.Printf("waf detect baseline request failed for %s: %v", baseURL, err)
		return WAFDetection{}
	}
	baselineStatus := resp.StatusCode
	resp.Body.Close()

	if detection, ok := detectPassive(resp); ok {
		return detection
	}

	return d.detectActive(ctx, baseURL, baselineStatus)
}

func detectPassive(resp *http.Response) (WAFDetection, bool) {
	for _, sig := range wafSignatures {
		value := strings.ToLower(resp.Header.Get(sig.header))
		if value == "" {
			continue
		}
		if sig.needle == "" || strings.Contains(value, sig.needle) {
			return WAFDetection{Detected: true, Name: sig.name, Confidence: 2.0}, true
		}
	}
	return WAFDetection{}, false
}

func (d *WAFDetector) detectActive(ctx context.Context, baseURL string, baselineStatus int) WAFDetection {
	blockingStatus := map[int]bool{403: true, 406: true, 501: true}

	for i, payload := range activeWAFPayloads {
		testURL := baseURL + "?q=" + payload
		resp, err := d.client.Get(ctx, testURL, nil)
		if err != nil {
			continue
		}
		resp.Body.Close()

		if blockingStatus[resp.StatusCode] && !blockingStatus[baselineStatus] {
			return WAFDetection{Detected: true, Name: "Generic WAF (Behavioral)", Confidence: 1.0}
		}
		if i < len(activeWAFPayloads)-1 {
			time.Sleep(500 * time.Millisecond)
		}
	}
	return WAFDetection{}
}
