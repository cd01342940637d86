package models

import (
	"time"

	"github.com/lib/pq"
)

// CandidateProfile holds one candidate's contact data plus the pointer to the
// CV considered authoritative for matching. ActiveCvFileID is set as a side
// effect of a successful analysis, never by an explicit user action.
type CandidateProfile struct {
	ID      string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Version int64  `gorm:"column:version;not null" json:"-"`

	OwnerUsername string `gorm:"column:owner_username;type:varchar(150);not null;uniqueIndex" json:"owner_username"`
	FirstName     string `gorm:"column:first_name;type:varchar(120)" json:"first_name,omitempty"`
	LastName      string `gorm:"column:last_name;type:varchar(120)" json:"last_name,omitempty"`
	Email         string `gorm:"column:email;type:varchar(255)" json:"email,omitempty"`
	Phone         string `gorm:"column:phone;type:varchar(50)" json:"phone,omitempty"`
	Location      string `gorm:"column:location;type:varchar(255)" json:"location,omitempty"`

	// Mirrored from the active CV's analysis sections on each successful parse.
	Skills pq.StringArray `gorm:"column:skills;type:text[]" json:"skills,omitempty"`

	ActiveCvFileID *string `gorm:"column:active_cv_file_id;type:uuid" json:"active_cv_file_id,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz;not null" json:"updated_at"`
}

func (CandidateProfile) TableName() string { return "candidate_profile" }
