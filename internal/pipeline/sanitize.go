package pipeline

import (
	"github.com/gauravkdeore/ghostmap-go/internal/model"
	"github.com/gauravkdeore/ghostmap-go/internal/noisefilter"
	"github.com/gauravkdeore/ghostmap-go/internal/sanitizer"
)

// SanitizeResult is the output of the sanitize stage.
type SanitizeResult struct {
	Records       []*model.URLRecord
	SanitizeStats sanitizer.Report
	NoiseStats    noisefilter.Stats
}

// Sanitize redacts sensitive query values, flags suspicious records, and
// drops tracking/analytics noise from a collected record set. strict widens
// what sanitizer.Sanitize treats as sensitive.
func Sanitize(records []*model.URLRecord, strict bool) SanitizeResult {
	s := sanitizer.New(strict)
	sanitized := s.Sanitize(records)

	f := noisefilter.New()
	filtered := f.FilterEndpoints(sanitized)

	return SanitizeResult{
		Records:       filtered,
		SanitizeStats: s.Report(),
		NoiseStats:    f.Stats(),
	}
}
