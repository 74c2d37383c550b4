package domain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NewActivity builds an audit entry, marshalling detail to JSON. Unmarshalable detail is dropped.
func NewActivity(userID, action string, detail interface{}, at time.Time) ActivityLog {
	entry := ActivityLog{
		ID:        uuid.NewString(),
		UserID:    userID,
		Action:    action,
		CreatedAt: at.UTC(),
	}
	if detail != nil {
		if raw, err := json.Marshal(detail); err == nil {
			entry.Detail = raw
		}
	}
	return entry
}

// ActivityService records and lists audit entries.
type ActivityService struct {
	repo ActivityRepository
	now  func() time.Time
}

// NewActivityService constructs an ActivityService.
func NewActivityService(repo ActivityRepository) *ActivityService {
	return &ActivityService{repo: repo, now: time.Now}
}

// Record appends an audit entry for the user.
func (s *ActivityService) Record(ctx context.Context, userID, action string, detail interface{}) error {
	return s.repo.AppendActivity(ctx, NewActivity(userID, action, detail, s.now()))
}

// Recent returns a page of entries, newest first, starting after cursor. Page size is capped at 200.
func (s *ActivityService) Recent(ctx context.Context, userID string, cursor *Cursor, limit int) ([]ActivityLog, *Cursor, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListActivity(ctx, userID, cursor, limit)
}
