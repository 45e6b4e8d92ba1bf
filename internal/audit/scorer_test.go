package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gauravkdeore/ghostmap-go/internal/config"
	"github.com/gauravkdeore/ghostmap-go/internal/model"
)

func TestScoreUndocumentedActiveNoAuth(t *testing.T) {
	cfg := config.Default()
	s := NewScorer(cfg)

	rec := &model.URLRecord{
		URL:        "https://example.com/api/admin/users",
		Documented: false,
		Probe:      &model.ProbeResult{Outcome: "active", HasAuth: false},
	}
	s.Score(rec)

	assert.True(t, rec.IsGhost)
	assert.Equal(t, cfg.WeightUndocumented+cfg.WeightActive+cfg.WeightNoAuth+(len([]string{"admin"})*(cfg.WeightSensitiveKeywords/2)), rec.RiskScore)
}

func TestScoreActiveWithAuthAppliesReducedWeight(t *testing.T) {
	cfg := config.Default()
	s := NewScorer(cfg)

	rec := &model.URLRecord{
		URL:        "https://example.com/api/data",
		Documented: true,
		Probe:      &model.ProbeResult{Outcome: "active", HasAuth: true},
	}
	s.Score(rec)

	expected := int(float64(cfg.WeightActive) * 0.6)
	assert.Equal(t, expected, rec.RiskScore)
	assert.False(t, rec.IsGhost)
}

func TestScoreDebugAndAdminIndicatorsAddPoints(t *testing.T) {
	cfg := config.Default()
	s := NewScorer(cfg)

	rec := &model.URLRecord{
		URL:        "https://example.com/console",
		Documented: true,
		Probe:      &model.ProbeResult{Outcome: "dead", IsDebug: true, IsAdmin: true},
	}
	s.Score(rec)
	assert.GreaterOrEqual(t, rec.RiskScore, 20)
}

func TestScoreStaleWaybackOnlyRecord(t *testing.T) {
	cfg := config.Default()
	s := NewScorer(cfg)

	rec := &model.URLRecord{
		URL:        "https://example.com/old/page",
		Documented: true,
		Sources:    []model.Source{model.SourceWayback},
	}
	s.Score(rec)
	// "old" is a default sensitive keyword, so it adds half its weight.
	assert.Equal(t, cfg.WeightStaleness+cfg.WeightSensitiveKeywords/2, rec.RiskScore)
}

func TestScoreLevelsBands(t *testing.T) {
	assert.Equal(t, "HIGH", levelOnly(t, 70))
	assert.Equal(t, "MEDIUM", levelOnly(t, 40))
	assert.Equal(t, "MEDIUM", levelOnly(t, 69))
	assert.Equal(t, "LOW", levelOnly(t, 39))
	assert.Equal(t, "LOW", levelOnly(t, 0))
}

func levelOnly(t *testing.T, score int) string {
	level, _ := band(score)
	return level
}

func TestScoreAllSortsDescending(t *testing.T) {
	cfg := config.Default()
	s := NewScorer(cfg)

	low := &model.URLRecord{URL: "/x", Documented: true}
	high := &model.URLRecord{URL: "/admin/secret/config", Documented: false, Probe: &model.ProbeResult{Outcome: "active"}}

	sorted := s.ScoreAll([]*model.URLRecord{low, high})
	assert.Equal(t, high, sorted[0])
	assert.Equal(t, low, sorted[1])
}
