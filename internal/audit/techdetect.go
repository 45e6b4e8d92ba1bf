package audit

import (
	"context"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gauravkdeore/ghostmap-go/internal/httpclient"
)

var techLogger = log.New(log.Writer(), "ghostmap/audit/techdetect: ", log.LstdFlags)

// TechDetector fingerprints a target's technology stack from a single GET
// request, to select relevant fuzzing wordlists.
type TechDetector struct {
	client *httpclient.Client
}

// NewTechDetector builds a TechDetector using client for its probe request.
func NewTechDetector(client *httpclient.Client) *TechDetector {
	return &TechDetector{client: client}
}

// Detect returns the technology tags found for baseURL. "common" is always
// present. Any request failure is swallowed and yields just "common",
// matching the passive, best-effort nature of fingerprinting.
func (d *TechDetector) Detect(ctx context.Context, baseURL string) []string {
	tags := map[string]bool{"common": true}

	resp, err := d.client.Get(ctx, baseURL, nil)
	if err != nil {
		techLogger.Printf("tech detect request failed for %s: %v", baseURL, err)
		return tagSlice(tags)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	bodyLower := strings.ToLower(string(body))

	server := strings.ToLower(resp.Header.Get("Server"))
	poweredBy := strings.ToLower(resp.Header.Get("X-Powered-By"))
	setCookie := strings.ToLower(resp.Header.Get("Set-Cookie"))
	generator := strings.ToLower(resp.Header.Get("X-Generator"))

	applyHeaderRules(tags, server, poweredBy, setCookie)
	applyBodyRules(tags, bodyLower, server, generator, resp.Header)

	return tagSlice(tags)
}

func applyHeaderRules(tags map[string]bool, server, poweredBy, setCookie string) {
	switch {
	case strings.Contains(poweredBy, "php") || strings.Contains(setCookie, "phpsessid"):
		tags["php"] = true
	case strings.Contains(poweredBy, "asp.net") || strings.Contains(server, "microsoft-iis"):
		tags["aspnet"] = true
	case strings.Contains(poweredBy, "express") || strings.Contains(server, "node"):
		tags["node"] = true
	case strings.Contains(setCookie, "csrftoken") || strings.Contains(setCookie, "django"):
		tags["django"] = true
	}
}

func applyBodyRules(tags map[string]bool, bodyLower, server, generator string, headers http.Header) {
	switch {
	case strings.Contains(bodyLower, "whitelabel error page") || strings.Contains(bodyLower, "spring boot"):
		tags["spring"] = true
	case strings.Contains(bodyLower, "laravel"):
		tags["laravel"] = true
		tags["php"] = true
	case strings.Contains(bodyLower, "ruby on rails") || strings.Contains(bodyLower, "action_dispatch"):
		tags["rails"] = true
	}

	if strings.Contains(bodyLower, "liferay") || headers.Get("Liferay-Portal") != "" {
		tags["liferay"] = true
	}
	if strings.Contains(bodyLower, "wp-content") || strings.Contains(bodyLower, "wordpress") {
		tags["wordpress"] = true
		tags["php"] = true
	}
	if strings.Contains(bodyLower, "drupal") || generator != "" && strings.Contains(generator, "drupal") {
		tags["drupal"] = true
		tags["php"] = true
	}
	if strings.Contains(server, "apache-coyote") || strings.Contains(bodyLower, "apache tomcat") {
		tags["tomcat"] = true
		tags["java"] = true
	}
	if strings.Contains(bodyLower, "jboss") {
		tags["jboss"] = true
		tags["java"] = true
	}
}

func tagSlice(tags map[string]bool) []string {
	out := make([]string, 0, len(tags))
	for t := range tags {
		out = append(out, t)
	}
	return out
}
