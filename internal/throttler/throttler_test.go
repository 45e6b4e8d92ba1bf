package throttler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReportBacksOffOn429(t *testing.T) {
	th := New(5.0, 100*time.Millisecond)
	before := th.CurrentDelay()
	th.Report(429)
	assert.True(t, th.IsThrottled())
	assert.Greater(t, th.CurrentDelay(), before)
}

func TestReportBacksOffOn403AfterRepeatedErrors(t *testing.T) {
	th := New(5.0, 100*time.Millisecond)
	for i := 0; i < 6; i++ {
		th.Report(500)
	}
	assert.False(t, th.IsThrottled())
	th.Report(403)
	assert.True(t, th.IsThrottled())
}

func TestReportResetsErrorsOnSuccess(t *testing.T) {
	th := New(5.0, 100*time.Millisecond)
	th.Report(429)
	th.Report(200)
	assert.Equal(t, 0, th.consecutiveErrors)
}

func TestReportTimeoutBackoffAfterThreeFailures(t *testing.T) {
	th := New(5.0, 100*time.Millisecond)
	th.Report(0)
	th.Report(0)
	th.Report(0)
	assert.False(t, th.IsThrottled())
	th.Report(0)
	assert.True(t, th.IsThrottled())
}

func TestWaitDoesNotPanicWithZeroDelay(t *testing.T) {
	th := New(0, 0)
	assert.NotPanics(t, func() { th.Wait() })
}
