package shared

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ActivityType classifies an activity feed entry.
type ActivityType string

const (
	ActivityBoreholeCreated   ActivityType = "borehole_created"
	ActivityBoreholeUpdated   ActivityType = "borehole_updated"
	ActivityWaterLevelReading ActivityType = "water_level_reading"
	ActivityWaterLevelUpdated ActivityType = "water_level_updated"
	ActivitySiteCreated       ActivityType = "site_created"
	ActivitySiteUpdated       ActivityType = "site_updated"
)

// EntityType returns the record kind the activity refers to.
func (t ActivityType) EntityType() string {
	switch t {
	case ActivityBoreholeCreated, ActivityBoreholeUpdated:
		return "borehole"
	case ActivitySiteCreated, ActivitySiteUpdated:
		return "site"
	case ActivityWaterLevelReading, ActivityWaterLevelUpdated:
		return "water_level_reading"
	default:
		return ""
	}
}

// Activity is one entry of the dashboard activity feed.
type Activity struct {
	ID          uuid.UUID    `json:"id"`
	Type        ActivityType `json:"type"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	EntityID    uuid.UUID    `json:"entity_id"`
	EntityType  string       `json:"entity_type"`
	ActorID     uuid.UUID    `json:"-"`
	Timestamp   time.Time    `json:"timestamp"`
}

// ActivityRecorder persists feed entries. Services treat it as optional.
type ActivityRecorder interface {
	Record(ctx context.Context, activity Activity) error
}

// ChangeNotifier is told about writes that leave no feed entry, such as
// deletes, so views derived from the data can be refreshed.
type ChangeNotifier interface {
	Changed(ctx context.Context, entityType string) error
}

// NotifyChange forwards to recorder when it also implements ChangeNotifier.
func NotifyChange(ctx context.Context, recorder ActivityRecorder, entityType string) error {
	notifier, ok := recorder.(ChangeNotifier)
	if !ok {
		return nil
	}
	return notifier.Changed(ctx, entityType)
}

// ActivityLog writes entries into activity_log.
type ActivityLog struct {
	pool *pgxpool.Pool
}

// NewActivityLog returns an ActivityLog backed by pool.
func NewActivityLog(pool *pgxpool.Pool) *ActivityLog {
	return &ActivityLog{pool: pool}
}

// Record persists the entry.
func (l *ActivityLog) Record(ctx context.Context, activity Activity) error {
	if l == nil {
		return errors.New("activity log not initialised")
	}
	if err := activity.validate(); err != nil {
		return err
	}
	if activity.Timestamp.IsZero() {
		activity.Timestamp = time.Now().UTC()
	}
	var actor *uuid.UUID
	if activity.ActorID != uuid.Nil {
		actor = &activity.ActorID
	}
	_, err := l.pool.Exec(ctx, `INSERT INTO activity_log (type, title, description, entity_id, entity_type, actor_id, occurred_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		string(activity.Type), activity.Title, activity.Description, activity.EntityID, activity.Type.EntityType(), actor, activity.Timestamp)
	return err
}

// Recent returns the newest entries first.
func (l *ActivityLog) Recent(ctx context.Context, limit int) ([]Activity, error) {
	if l == nil {
		return nil, errors.New("activity log not initialised")
	}
	if limit <= 0 {
		limit = MaxActivityItems
	}
	rows, err := l.pool.Query(ctx, `SELECT id, type, title, description, entity_id, entity_type, occurred_at
FROM activity_log ORDER BY occurred_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Activity
	for rows.Next() {
		var a Activity
		var kind string
		if err := rows.Scan(&a.ID, &kind, &a.Title, &a.Description, &a.EntityID, &a.EntityType, &a.Timestamp); err != nil {
			return nil, err
		}
		a.Type = ActivityType(kind)
		out = append(out, a)
	}
	return out, rows.Err()
}

// MaxActivityItems caps the dashboard feed.
const MaxActivityItems = 50

func (a Activity) validate() error {
	if a.Type.EntityType() == "" {
		return errors.New("activity requires a known type")
	}
	if a.EntityID == uuid.Nil {
		return errors.New("activity requires entity_id")
	}
	if a.Title == "" {
		return errors.New("activity requires title")
	}
	return nil
}
