// Package forms extracts security-relevant HTML forms (ones carrying a
// CSRF token or a sensitive field) from a probed endpoint's response body.
package forms

import (
	"crypto/sha256"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/gauravkdeore/ghostmap-go/internal/model"
)

var csrfPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(csrf[_-]?token|_token|authenticity_token)`),
	regexp.MustCompile(`(?i)(x-csrf-token|csrf)`),
}

var sensitiveFieldNames = []string{"password", "pass", "secret", "token", "key", "ssn", "credit"}

// Extractor parses HTML and pulls out forms worth flagging during audit.
type Extractor struct{}

// New returns an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// ExtractForms finds forms in htmlContent that carry a CSRF token or a
// sensitive field. Forms with no action (or action="#") are skipped since
// they don't submit anywhere interesting.
func (e *Extractor) ExtractForms(htmlContent string) []model.FormInfo {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil
	}

	var forms []model.FormInfo

	doc.Find("form").Each(func(i int, s *goquery.Selection) {
		action, _ := s.Attr("action")
		method, _ := s.Attr("method")
		if method == "" {
			method = "GET"
		}
		if action == "" || action == "#" {
			return
		}

		form := model.FormInfo{
			ID:     generateFormID(action, method),
			Action: action,
			Method: strings.ToUpper(method),
		}

		s.Find("input, select, textarea").Each(func(j int, field *goquery.Selection) {
			fieldType, _ := field.Attr("type")
			if fieldType == "" {
				fieldType = "text"
			}
			name, _ := field.Attr("name")
			if name == "" {
				return
			}

			if !form.HasCSRFToken {
				for _, p := range csrfPatterns {
					if p.MatchString(name) {
						form.HasCSRFToken = true
						break
					}
				}
			}
			if isSensitiveField(fieldType, name) {
				form.HasSensitiveField = true
			}

			form.Fields = append(form.Fields, name)
		})

		if form.HasCSRFToken || form.HasSensitiveField {
			forms = append(forms, form)
		}
	})

	return forms
}

func generateFormID(action, method string) string {
	hash := sha256.Sum256([]byte(action + "|" + method))
	return fmt.Sprintf("%x", hash)[:16]
}

func isSensitiveField(fieldType, name string) bool {
	name = strings.ToLower(name)
	fieldType = strings.ToLower(fieldType)

	if fieldType == "password" || fieldType == "email" || fieldType == "tel" {
		return true
	}
	for _, pattern := range sensitiveFieldNames {
		if strings.Contains(name, pattern) {
			return true
		}
	}
	return false
}
