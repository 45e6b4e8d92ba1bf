package audit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWAFDetectPassiveCloudflareHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", "cloudflare")
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	d := NewWAFDetector(newTestClient())
	result := d.Detect(context.Background(), srv.URL)
	assert.True(t, result.Detected)
	assert.Equal(t, "Cloudflare", result.Name)
	assert.Equal(t, 2.0, result.Confidence)
}

func TestWAFDetectPassiveCfRayHeaderPresenceOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cf-Ray", "abc123-SJC")
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	d := NewWAFDetector(newTestClient())
	result := d.Detect(context.Background(), srv.URL)
	assert.True(t, result.Detected)
	assert.Equal(t, "Cloudflare", result.Name)
}

func TestWAFDetectActiveBehavioralBlock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewWAFDetector(newTestClient())
	result := d.Detect(context.Background(), srv.URL)
	assert.True(t, result.Detected)
	assert.Equal(t, "Generic WAF (Behavioral)", result.Name)
	assert.Equal(t, 1.0, result.Confidence)
}

func TestWAFDetectNoSignal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	d := NewWAFDetector(newTestClient())
	result := d.Detect(context.Background(), srv.URL)
	assert.False(t, result.Detected)
}
