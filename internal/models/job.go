package models

import (
	"strings"
	"time"

	"github.com/pgvector/pgvector-go"
)

type JobStatus string

const (
	JobDraft     JobStatus = "DRAFT"
	JobPublished JobStatus = "PUBLISHED"
	JobArchived  JobStatus = "ARCHIVED"
)

func ParseJobStatus(raw string) (JobStatus, bool) {
	switch JobStatus(strings.ToUpper(strings.TrimSpace(raw))) {
	case JobDraft:
		return JobDraft, true
	case JobPublished:
		return JobPublished, true
	case JobArchived:
		return JobArchived, true
	}
	return "", false
}

type Job struct {
	ID      string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Version int64  `gorm:"column:version;not null" json:"-"`

	OwnerUsername string    `gorm:"column:owner_username;type:varchar(150);not null;index" json:"owner_username"`
	Title         string    `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Description   string    `gorm:"column:description;type:text" json:"description,omitempty"`
	Location      string    `gorm:"column:location;type:varchar(255)" json:"location,omitempty"`
	ContractType  string    `gorm:"column:contract_type;type:varchar(80)" json:"contract_type,omitempty"`
	Seniority     string    `gorm:"column:seniority;type:varchar(80)" json:"seniority,omitempty"`
	Lat           *float64  `gorm:"column:lat" json:"lat,omitempty"`
	Lon           *float64  `gorm:"column:lon" json:"lon,omitempty"`
	Status        JobStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	ApplyURL      string    `gorm:"column:apply_url;type:varchar(500)" json:"apply_url,omitempty"`

	PublishedAt *time.Time `gorm:"column:published_at" json:"published_at,omitempty"`
	ArchivedAt  *time.Time `gorm:"column:archived_at" json:"archived_at,omitempty"`

	// Immutable once set: the embedding is never recomputed unless
	// explicitly cleared, so published jobs don't trigger redundant AI calls.
	Embedding          pgvector.Vector `gorm:"column:embedding;type:vector(768)" json:"-"`
	EmbeddingModel     string          `gorm:"column:embedding_model;type:varchar(120)" json:"embedding_model,omitempty"`
	EmbeddingUpdatedAt *time.Time      `gorm:"column:embedding_updated_at" json:"embedding_updated_at,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz;not null" json:"updated_at"`
}

func (Job) TableName() string { return "job" }

func (j *Job) HasEmbedding() bool { return len(j.Embedding.Slice()) > 0 }

// EmbeddingVector returns the stored embedding as float64s, or nil when none
// has been computed yet.
func (j *Job) EmbeddingVector() []float64 {
	src := j.Embedding.Slice()
	if len(src) == 0 {
		return nil
	}
	out := make([]float64, len(src))
	for i, v := range src {
		out[i] = float64(v)
	}
	return out
}

// SearchText is the token source used for keyword matching against CV text.
func (j *Job) SearchText() string {
	var sb strings.Builder
	for _, part := range []string{j.Title, j.Description, j.ContractType, j.Seniority, j.Location} {
		if part != "" {
			sb.WriteString(part)
			sb.WriteString(" ")
		}
	}
	return sb.String()
}

// EmbeddingText is the blob sent to the embedding service when the job is
// published.
func (j *Job) EmbeddingText() string {
	var sb strings.Builder
	if j.Title != "" {
		sb.WriteString(j.Title + "\n")
	}
	if j.Description != "" {
		sb.WriteString(j.Description + "\n")
	}
	if j.ContractType != "" {
		sb.WriteString("Contract: " + j.ContractType + "\n")
	}
	if j.Seniority != "" {
		sb.WriteString("Seniority: " + j.Seniority + "\n")
	}
	if j.Location != "" {
		sb.WriteString("Location: " + j.Location + "\n")
	}
	return strings.TrimSpace(sb.String())
}
