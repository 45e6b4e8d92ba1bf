package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gauravkdeore/ghostmap-go/internal/model"
)

func TestBuildSummaryTalliesRiskBands(t *testing.T) {
	records := []*model.URLRecord{
		{RiskLevel: "HIGH", Documented: false},
		{RiskLevel: "HIGH"},
		{RiskLevel: "MEDIUM"},
		{RiskLevel: "LOW", Documented: true},
		{RiskLevel: ""},
	}

	summary := BuildSummary(records)

	assert.Equal(t, 5, summary.TotalEndpoints)
	assert.Equal(t, 2, summary.HighRisk)
	assert.Equal(t, 1, summary.MediumRisk)
	assert.Equal(t, 2, summary.LowRisk)
	assert.Equal(t, 1, summary.Documented)
}

func TestWriteAndReadDocumentRoundTrips(t *testing.T) {
	doc := Document{
		Meta:    Meta{Tool: "ghostmap", Version: ToolVersion, Domain: "example.com"},
		Summary: Summary{TotalEndpoints: 1},
		Endpoints: []*model.URLRecord{
			{URL: "https://example.com/api/users", NormalizedURL: "/api/users"},
		},
	}

	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, WriteDocument(path, doc))

	_, err := os.Stat(path)
	require.NoError(t, err)

	loaded, err := ReadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, "example.com", loaded.Meta.Domain)
	assert.Len(t, loaded.Endpoints, 1)
	assert.Equal(t, "/api/users", loaded.Endpoints[0].NormalizedURL)
}

func TestReadDocumentMissingFileReturnsError(t *testing.T) {
	_, err := ReadDocument(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
