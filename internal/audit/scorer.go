package audit

import (
	"regexp"
	"sort"
	"strings"

	"github.com/gauravkdeore/ghostmap-go/internal/config"
	"github.com/gauravkdeore/ghostmap-go/internal/model"
)

// riskBand buckets a numeric score into a human label and UI color.
type riskBand struct {
	min   int
	level string
	color string
}

var riskBands = []riskBand{
	{70, "HIGH", "red"},
	{40, "MEDIUM", "orange"},
	{0, "LOW", "green"},
}

// Scorer computes a weighted additive risk score for each URLRecord from
// its documentation status, probe outcome, and sensitive-keyword matches.
type Scorer struct {
	cfg          *config.Config
	keywordRegex []*regexp.Regexp
	keywords     []string
}

// NewScorer builds a Scorer using cfg's weights and sensitive keyword list.
func NewScorer(cfg *config.Config) *Scorer {
	s := &Scorer{cfg: cfg, keywords: cfg.SensitiveKeywords}
	for _, kw := range cfg.SensitiveKeywords {
		s.keywordRegex = append(s.keywordRegex, regexp.MustCompile(`(?:^|[/\-_.])`+regexp.QuoteMeta(kw)+`(?:$|[/\-_.])`))
	}
	return s
}

// Score assigns RiskScore, RiskLevel, RiskColor, RiskFactors, and IsGhost to
// rec in place.
func (s *Scorer) Score(rec *model.URLRecord) {
	var factors []model.RiskFactor
	total := 0

	if !rec.Documented {
		total += s.cfg.WeightUndocumented
		factors = append(factors, model.RiskFactor{Factor: "undocumented", Points: s.cfg.WeightUndocumented, Detail: "not present in the API specification"})
	}

	if rec.Probe != nil {
		total += s.scoreProbe(rec, &factors)
	}

	total += s.scoreKeywords(rec, &factors)

	if len(rec.Sources) == 1 && rec.Sources[0] == model.SourceWayback {
		total += s.cfg.WeightStaleness
		factors = append(factors, model.RiskFactor{Factor: "stale", Points: s.cfg.WeightStaleness, Detail: "seen only in historical archive data"})
	}

	sort.Slice(factors, func(i, j int) bool { return factors[i].Points > factors[j].Points })

	if total > 100 {
		total = 100
	}
	rec.RiskScore = total
	rec.IsGhost = !rec.Documented && total >= 40
	rec.RiskFactors = factors
	rec.RiskLevel, rec.RiskColor = band(total)
}

func (s *Scorer) scoreProbe(rec *model.URLRecord, factors *[]model.RiskFactor) int {
	probe := rec.Probe
	points := 0

	switch probe.Outcome {
	case "active":
		weight := s.cfg.WeightActive
		if probe.HasAuth {
			weight = int(float64(weight) * 0.6)
		}
		points += weight
		*factors = append(*factors, model.RiskFactor{Factor: "active", Points: weight, Detail: "endpoint responds and is reachable"})

		if !probe.HasAuth {
			points += s.cfg.WeightNoAuth
			*factors = append(*factors, model.RiskFactor{Factor: "no_auth", Points: s.cfg.WeightNoAuth, Detail: "no authentication challenge observed"})
		}
	case "auth_required":
		weight := int(float64(s.cfg.WeightActive) * 0.6)
		points += weight
		*factors = append(*factors, model.RiskFactor{Factor: "active_auth_required", Points: weight, Detail: "endpoint exists behind an authentication challenge"})
	}

	if probe.IsDebug {
		points += 10
		*factors = append(*factors, model.RiskFactor{Factor: "debug_exposure", Points: 10, Detail: "response contains debug/stack trace indicators"})
	}
	if probe.IsAdmin {
		points += 10
		*factors = append(*factors, model.RiskFactor{Factor: "admin_exposure", Points: 10, Detail: "response contains admin/management indicators"})
	}

	return points
}

func (s *Scorer) scoreKeywords(rec *model.URLRecord, factors *[]model.RiskFactor) int {
	path := normalizeForKeywordScan(rec.URL)
	var matches []string
	for i, re := range s.keywordRegex {
		if re.MatchString(path) {
			matches = append(matches, s.keywords[i])
		}
	}
	if len(matches) == 0 {
		return 0
	}

	weight := s.cfg.WeightSensitiveKeywords
	points := len(matches) * (weight / 2)
	if points > weight {
		points = weight
	}
	*factors = append(*factors, model.RiskFactor{
		Factor: "sensitive_keywords",
		Points: points,
		Detail: "path contains: " + strings.Join(matches, ", "),
	})
	return points
}

func normalizeForKeywordScan(rawURL string) string {
	path := rawURL
	if idx := strings.IndexAny(path, "?#"); idx >= 0 {
		path = path[:idx]
	}
	return strings.ToLower(path)
}

func band(score int) (level, color string) {
	for _, b := range riskBands {
		if score >= b.min {
			return b.level, b.color
		}
	}
	return "LOW", "green"
}

// ScoreAll scores every record and returns them sorted by score descending.
func (s *Scorer) ScoreAll(records []*model.URLRecord) []*model.URLRecord {
	for _, rec := range records {
		s.Score(rec)
	}
	sort.SliceStable(records, func(i, j int) bool { return records[i].RiskScore > records[j].RiskScore })
	return records
}
