package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gauravkdeore/ghostmap-go/internal/model"
)

func TestSoft404MatchSameStatusAndRedirect(t *testing.T) {
	baseline := model.BaselineRecord{StatusCode: 302, RedirectLoc: "/login", BodyLength: 500}
	assert.True(t, soft404Match(baseline, 302, "/login", 9999))
}

func TestSoft404MatchWithinBodyLengthTolerance(t *testing.T) {
	baseline := model.BaselineRecord{StatusCode: 200, BodyLength: 1000}
	assert.True(t, soft404Match(baseline, 200, "", 1090))
	assert.False(t, soft404Match(baseline, 200, "", 1200))
}

func TestSoft404MatchDifferentStatus(t *testing.T) {
	baseline := model.BaselineRecord{StatusCode: 404, BodyLength: 50}
	assert.False(t, soft404Match(baseline, 200, "", 5000))
}
