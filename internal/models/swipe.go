package models

import (
	"strings"
	"time"
)

type SwipeAction string

const (
	SwipeLike    SwipeAction = "LIKE"
	SwipeDislike SwipeAction = "DISLIKE"
)

func ParseSwipeAction(raw string) (SwipeAction, bool) {
	switch SwipeAction(strings.ToUpper(strings.TrimSpace(raw))) {
	case SwipeLike:
		return SwipeLike, true
	case SwipeDislike:
		return SwipeDislike, true
	}
	return "", false
}

// JobSwipe records the most recent LIKE/DISLIKE of a candidate on a job.
// One row per (candidate, job); re-swiping updates the action in place while
// created_at keeps the first-swipe time.
type JobSwipe struct {
	ID      string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Version int64  `gorm:"column:version;not null" json:"-"`

	CandidateUsername string      `gorm:"column:candidate_username;type:varchar(150);not null;uniqueIndex:uk_job_swipe_candidate_job" json:"candidate_username"`
	JobID             string      `gorm:"column:job_id;type:uuid;not null;uniqueIndex:uk_job_swipe_candidate_job" json:"job_id"`
	Action            SwipeAction `gorm:"column:action;type:varchar(16);not null" json:"action"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;not null" json:"created_at"`
}

func (JobSwipe) TableName() string { return "job_swipe" }
