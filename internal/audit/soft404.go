package audit

import (
	"math"

	"github.com/gauravkdeore/ghostmap-go/internal/model"
)

func isRedirectStatus(statusCode int) bool {
	switch statusCode {
	case 301, 302, 307, 308:
		return true
	default:
		return false
	}
}

// soft404Match reports whether a candidate response is indistinguishable
// from the host's baseline not-found response. Both require the same
// status code; redirects additionally require the same redirect target,
// everything else additionally requires a body length within 10% (+10
// bytes of slack) of baseline. Shared by the fuzzer and the prober so both
// apply the same soft-404 rule.
func soft404Match(baseline model.BaselineRecord, statusCode int, redirectLoc string, bodyLength int) bool {
	if statusCode != baseline.StatusCode {
		return false
	}
	if isRedirectStatus(statusCode) {
		return redirectLoc == baseline.RedirectLoc
	}
	tolerance := int(math.Round(float64(baseline.BodyLength)*0.1)) + 10
	diff := bodyLength - baseline.BodyLength
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance
}
