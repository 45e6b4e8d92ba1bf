package pipeline

import (
	"encoding/json"
	"os"
	"time"

	"github.com/gauravkdeore/ghostmap-go/internal/model"
)

// ToolVersion is stamped into every persisted document's meta block.
const ToolVersion = "1.0.0"

// Meta is the document's provenance block: what produced it and how.
type Meta struct {
	Tool            string      `json:"tool"`
	Version         string      `json:"version"`
	Timestamp       string      `json:"timestamp"`
	Domain          string      `json:"domain,omitempty"`
	InputFile       string      `json:"input_file,omitempty"`
	BaseURL         string      `json:"base_url,omitempty"`
	SwaggerSpec     string      `json:"swagger_spec,omitempty"`
	GitRepo         string      `json:"git_repo,omitempty"`
	ProbingEnabled  bool        `json:"probing_enabled"`
	Stats           interface{} `json:"stats,omitempty"`
}

// Summary is the document's at-a-glance risk breakdown.
type Summary struct {
	TotalEndpoints int `json:"total_endpoints"`
	HighRisk       int `json:"high_risk"`
	MediumRisk     int `json:"medium_risk"`
	LowRisk        int `json:"low_risk"`
	Documented     int `json:"documented"`
}

// Document is the full persisted JSON artifact written by every subcommand.
type Document struct {
	Meta      Meta               `json:"meta"`
	Summary   Summary            `json:"summary"`
	Endpoints []*model.URLRecord `json:"endpoints"`
}

// BuildSummary tallies risk bands across a scored record set. Bands below
// "MEDIUM" (i.e. "LOW" and unscored) fold into LowRisk.
func BuildSummary(records []*model.URLRecord) Summary {
	s := Summary{TotalEndpoints: len(records)}
	for _, rec := range records {
		if rec.Documented {
			s.Documented++
		}
		switch rec.RiskLevel {
		case "HIGH":
			s.HighRisk++
		case "MEDIUM":
			s.MediumRisk++
		default:
			s.LowRisk++
		}
	}
	return s
}

// WriteDocument marshals doc as indented JSON to path.
func WriteDocument(path string, doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadDocument loads a previously persisted document, e.g. as sanitize's or
// audit's --input.
func ReadDocument(path string) (Document, error) {
	var doc Document
	data, err := os.ReadFile(path)
	if err != nil {
		return doc, err
	}
	err = json.Unmarshal(data, &doc)
	return doc, err
}

// nowRFC3339 is kept as a tiny seam so callers stamping a document don't
// each need the time import.
func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}
