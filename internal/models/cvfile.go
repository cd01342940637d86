package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type CvProcessingStatus string

const (
	CvUploaded CvProcessingStatus = "UPLOADED"
	CvParsing  CvProcessingStatus = "PARSING"
	CvParsed   CvProcessingStatus = "PARSED"
	CvFailed   CvProcessingStatus = "FAILED"
)

// CvAnalysis is the structured result returned by the AI service for a parsed
// CV. The JSON field names are the wire format exchanged with that service and
// must not change.
type CvAnalysis struct {
	Text      string         `json:"text"`
	Sections  map[string]any `json:"sections,omitempty"`
	Embedding []float64      `json:"embedding,omitempty"`
	ModelUsed string         `json:"model_used,omitempty"`
}

// EmbeddingVector returns the analysis embedding, or nil when it is absent or
// empty. Callers treat nil as "no embedding available".
func (a *CvAnalysis) EmbeddingVector() []float64 {
	if a == nil || len(a.Embedding) == 0 {
		return nil
	}
	return a.Embedding
}

// SkillList extracts the string entries under sections["skills"], if any.
func (a *CvAnalysis) SkillList() []string {
	if a == nil || a.Sections == nil {
		return nil
	}
	raw, ok := a.Sections["skills"].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

type CvFile struct {
	ID      string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Version int64  `gorm:"column:version;not null" json:"-"`

	OwnerUsername    string `gorm:"column:owner_username;type:varchar(150);not null;index" json:"owner_username"`
	OriginalFilename string `gorm:"column:original_filename;type:varchar(1024);not null" json:"original_filename"`
	ContentType      string `gorm:"column:content_type;type:text;not null" json:"content_type"`
	SizeBytes        int64  `gorm:"column:size_bytes;not null" json:"size_bytes"`
	StoragePath      string `gorm:"column:storage_path;type:varchar(1024);not null" json:"-"`

	Status       CvProcessingStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	AnalysisJSON datatypes.JSON     `gorm:"column:analysis_json;type:jsonb" json:"-"`
	AnalyzedAt   *time.Time         `gorm:"column:analyzed_at" json:"analyzed_at,omitempty"`
	ErrorMessage string             `gorm:"column:error_message;type:text" json:"error_message,omitempty"`

	UploadedAt time.Time `gorm:"column:uploaded_at;type:timestamptz;not null" json:"uploaded_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;type:timestamptz;not null" json:"updated_at"`
}

func (CvFile) TableName() string { return "cv_file" }

// Analysis decodes the stored analysis document, once, into its typed form.
// Returns nil when no analysis has been stored.
func (c *CvFile) Analysis() (*CvAnalysis, error) {
	if len(c.AnalysisJSON) == 0 {
		return nil, nil
	}
	var a CvAnalysis
	if err := json.Unmarshal(c.AnalysisJSON, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *CvFile) SetAnalysis(a *CvAnalysis) error {
	b, err := json.Marshal(a)
	if err != nil {
		return err
	}
	c.AnalysisJSON = datatypes.JSON(b)
	return nil
}

// HasAnalysis reports whether a complete analysis is stored. Together with
// AnalyzedAt it backs the PARSED invariant: both present or both absent.
func (c *CvFile) HasAnalysis() bool {
	return len(c.AnalysisJSON) > 0 && c.AnalyzedAt != nil
}
