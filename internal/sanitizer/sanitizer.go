// Package sanitizer redacts sensitive data from a collected URL record set
// before it is persisted or handed to a lower-trust consumer. The Python
// tool's sanitizer.py module is a near-empty stub; this package follows the
// behavior pinned down by its test suite instead (redaction rules, strict
// mode, suspicious-pattern flagging, JSON round-trip validation).
package sanitizer

import (
	"encoding/json"
	"log"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/gauravkdeore/ghostmap-go/internal/model"
)

var logger = log.New(log.Writer(), "ghostmap/sanitizer: ", log.LstdFlags)

// sensitiveQueryParams are query keys removed outright rather than redacted
// in place, since the key name itself already identifies the secret.
var sensitiveQueryParams = map[string]bool{
	"token": true, "access_token": true, "api_key": true, "apikey": true,
	"secret": true, "password": true, "passwd": true, "pwd": true,
	"session": true, "session_id": true, "sessionid": true,
	"auth": true, "authorization": true, "bearer": true,
	"email": true, "user": true, "username": true,
	"key": true, "client_secret": true, "refresh_token": true,
}

var (
	emailPattern     = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	jwtPattern       = regexp.MustCompile(`eyJ[A-Za-z0-9_\-]+\.[A-Za-z0-9_\-]+\.[A-Za-z0-9_\-]+`)
	bearerPattern    = regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._\-]+`)
	basicPattern     = regexp.MustCompile(`(?i)Basic\s+[A-Za-z0-9+/=]+`)
	sessionIDPattern = regexp.MustCompile(`(?i)session_id=[A-Za-z0-9_\-]+`)
	awsKeyPattern    = regexp.MustCompile(`AKIA[0-9A-Z]{16}`)
	privateIPPattern = regexp.MustCompile(`\b(?:10\.\d{1,3}\.\d{1,3}\.\d{1,3}|172\.(?:1[6-9]|2\d|3[01])\.\d{1,3}\.\d{1,3}|192\.168\.\d{1,3}\.\d{1,3})\b`)

	sqliPattern          = regexp.MustCompile(`(?i)(union\s+select|\bor\s+1\s*=\s*1\b|drop\s+table|--\s|;\s*--)`)
	scriptTagPattern     = regexp.MustCompile(`(?i)<script[^>]*>`)
	pathTraversalPattern = regexp.MustCompile(`\.\./|\.\.\\`)
	shellExecPattern     = regexp.MustCompile(`(?i)(;|\||&&)\s*(cat|ls|whoami|wget|curl|nc|bash|sh)\b`)
)

// Report summarizes the redactions and flags applied by one Sanitize call.
type Report struct {
	TotalProcessed      int `json:"total_processed"`
	EmailsRemoved       int `json:"emails_removed"`
	JWTsRemoved         int `json:"jwts_removed"`
	BearerTokensRemoved int `json:"bearer_tokens_removed"`
	SessionIDsRemoved   int `json:"session_ids_removed"`
	AWSKeysRemoved      int `json:"aws_keys_removed"`
	IPsRemoved          int `json:"ips_removed"`
	QueryParamsRemoved  int `json:"query_params_removed"`
	SuspiciousPatterns  int `json:"suspicious_patterns"`
}

// Sanitizer deep-copies and redacts a URLRecord batch. Strict mode additionally
// blanks every remaining query value and any RFC1918 IP literal.
type Sanitizer struct {
	Strict bool

	report Report
}

// New builds a Sanitizer. strict enables the more aggressive redaction mode
// (§4.7): every remaining query value is replaced, and private IPs are
// scrubbed even outside a query string.
func New(strict bool) *Sanitizer {
	return &Sanitizer{Strict: strict}
}

// Report returns the counts accumulated by the most recent Sanitize call.
func (s *Sanitizer) Report() Report {
	return s.report
}

// Sanitize returns a redacted deep copy of records. The input is never
// mutated.
func (s *Sanitizer) Sanitize(records []*model.URLRecord) []*model.URLRecord {
	s.report = Report{TotalProcessed: len(records)}

	out := make([]*model.URLRecord, len(records))
	for i, rec := range records {
		out[i] = s.sanitizeOne(rec)
	}

	logger.Printf("sanitize complete: %d processed, %d emails, %d jwts, %d session ids, %d aws keys, %d suspicious patterns flagged",
		s.report.TotalProcessed, s.report.EmailsRemoved, s.report.JWTsRemoved,
		s.report.SessionIDsRemoved, s.report.AWSKeysRemoved, s.report.SuspiciousPatterns)
	return out
}

func (s *Sanitizer) sanitizeOne(rec *model.URLRecord) *model.URLRecord {
	out := *rec
	out.Sources = append([]model.Source(nil), rec.Sources...)
	out.Timestamps = append([]time.Time(nil), rec.Timestamps...)
	out.ObservedStatusCodes = append([]string(nil), rec.ObservedStatusCodes...)
	out.ObservedMimeTypes = append([]string(nil), rec.ObservedMimeTypes...)
	out.PatternNames = append([]string(nil), rec.PatternNames...)
	out.SourceFiles = append([]string(nil), rec.SourceFiles...)
	out.Suspicious = append([]string(nil), rec.Suspicious...)

	out.URL = s.sanitizeURLString(rec.URL, &out)
	if rec.OriginalURL != "" {
		out.OriginalURL = s.sanitizeURLString(rec.OriginalURL, &out)
	}
	out.NormalizedURL = s.redactFreeText(rec.NormalizedURL, &out)
	out.Payload = s.redactFreeText(rec.Payload, &out)
	out.Redacted = true

	sort.Strings(out.Suspicious)
	out.Suspicious = dedupeStrings(out.Suspicious)
	return &out
}

// sanitizeURLString parses url as a URL, strips/redacts sensitive query
// params, and redacts pattern matches across the whole string afterward.
func (s *Sanitizer) sanitizeURLString(raw string, out *model.URLRecord) string {
	if raw == "" {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.RawQuery == "" {
		return s.redactFreeText(raw, out)
	}

	var kept []string
	for _, pair := range strings.Split(u.RawQuery, "&") {
		if pair == "" {
			continue
		}
		rawKey, _, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			key = rawKey
		}
		if sensitiveQueryParams[strings.ToLower(key)] {
			s.report.QueryParamsRemoved++
			continue
		}
		if s.Strict {
			pair = rawKey + "=REDACTED"
		}
		kept = append(kept, pair)
	}
	u.RawQuery = strings.Join(kept, "&")
	return s.redactFreeText(u.String(), out)
}

// redactFreeText applies the fixed-token pattern redactions and suspicious
// pattern flags to an arbitrary string field.
func (s *Sanitizer) redactFreeText(text string, out *model.URLRecord) string {
	if text == "" {
		return text
	}

	if emailPattern.MatchString(text) {
		n := len(emailPattern.FindAllString(text, -1))
		s.report.EmailsRemoved += n
		text = emailPattern.ReplaceAllString(text, "[EMAIL_REDACTED]")
	}
	if jwtPattern.MatchString(text) {
		n := len(jwtPattern.FindAllString(text, -1))
		s.report.JWTsRemoved += n
		text = jwtPattern.ReplaceAllString(text, "[JWT_REDACTED]")
	}
	if bearerPattern.MatchString(text) {
		n := len(bearerPattern.FindAllString(text, -1))
		s.report.BearerTokensRemoved += n
		text = bearerPattern.ReplaceAllString(text, "Bearer [TOKEN_REDACTED]")
	}
	if basicPattern.MatchString(text) {
		text = basicPattern.ReplaceAllString(text, "Basic [AUTH_REDACTED]")
	}
	if sessionIDPattern.MatchString(text) {
		n := len(sessionIDPattern.FindAllString(text, -1))
		s.report.SessionIDsRemoved += n
		text = sessionIDPattern.ReplaceAllString(text, "[SESSION_REDACTED]")
	}
	if awsKeyPattern.MatchString(text) {
		n := len(awsKeyPattern.FindAllString(text, -1))
		s.report.AWSKeysRemoved += n
		text = awsKeyPattern.ReplaceAllString(text, "[AWS_KEY_REDACTED]")
	}

	if s.Strict && privateIPPattern.MatchString(text) {
		n := len(privateIPPattern.FindAllString(text, -1))
		s.report.IPsRemoved += n
		text = privateIPPattern.ReplaceAllString(text, "[IP_REDACTED]")
	}

	s.flagSuspicious(text, out)
	return text
}

func (s *Sanitizer) flagSuspicious(text string, out *model.URLRecord) {
	checks := []struct {
		tag string
		re  *regexp.Regexp
	}{
		{"sqli", sqliPattern},
		{"script_tag", scriptTagPattern},
		{"path_traversal", pathTraversalPattern},
		{"shell_exec", shellExecPattern},
	}
	for _, c := range checks {
		if c.re.MatchString(text) {
			s.report.SuspiciousPatterns++
			if !containsString(out.Suspicious, c.tag) {
				out.Suspicious = append(out.Suspicious, c.tag)
			}
		}
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func dedupeStrings(sorted []string) []string {
	out := sorted[:0:0]
	var prev string
	first := true
	for _, s := range sorted {
		if first || s != prev {
			out = append(out, s)
			prev = s
			first = false
		}
	}
	return out
}

// redactablePatterns lists the regexes Validate checks for survival; they
// must mirror the patterns redactFreeText acts on (minus the ones that only
// remove query keys, which Validate cannot see once re-serialized).
var redactablePatterns = []*regexp.Regexp{emailPattern, jwtPattern, sessionIDPattern, awsKeyPattern}

// Validate round-trips records through JSON and asserts no redactable
// pattern survived the sanitize pass. It returns false (and logs) rather
// than erroring, mirroring the Python tool's validate()/get_report() split:
// callers decide whether to proceed on a detected leak.
func Validate(records []*model.URLRecord) bool {
	data, err := json.Marshal(records)
	if err != nil {
		logger.Printf("validate: marshal failed: %v", err)
		return false
	}
	text := string(data)
	for _, p := range redactablePatterns {
		if p.MatchString(text) {
			logger.Printf("validate: sanitization leak detected (pattern %s)", p.String())
			return false
		}
	}
	if basicPattern.MatchString(text) || bearerPattern.MatchString(text) {
		logger.Printf("validate: sanitization leak detected (auth header pattern)")
		return false
	}
	return true
}
