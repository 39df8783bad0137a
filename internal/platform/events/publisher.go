// Package events provides a fire-and-forget NATS publisher for application
// events. A nil *Publisher is a valid no-op, so ki3dex runs unchanged
// without NATS.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	SubjectFavoriteChanged      = "ki3dex.favorite.changed"
	SubjectFavoriteStorageError = "ki3dex.favorite.storage_error"
	SubjectMarkerPlaced         = "ki3dex.marker.placed"
	SubjectMarkerRemoved        = "ki3dex.marker.removed"
	SubjectCacheInvalidate      = "ki3dex.cache.invalidate"
)

// Event is the envelope sent to every ki3dex.* subject.
type Event struct {
	EventID    string         `json:"event_id"`
	EventName  string         `json:"event_name"`
	OccurredAt time.Time      `json:"occurred_at"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Conn is the subset of *nats.Conn used by the publisher.
type Conn interface {
	Publish(subj string, data []byte) error
}

type Publisher struct {
	conn Conn
	log  *zap.Logger
}

// New creates a Publisher on conn. Pass conn=nil for a no-op publisher.
func New(conn Conn, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{conn: conn, log: log}
}

// Publish sends an event. Failures are logged as warnings and never surface
// to the caller.
func (p *Publisher) Publish(subject, eventName string, props map[string]any) {
	if p == nil || p.conn == nil {
		return
	}
	ev := Event{
		EventID:    uuid.NewString(),
		EventName:  eventName,
		OccurredAt: time.Now().UTC(),
		Properties: props,
	}
	data, err := json.Marshal(ev)
	if err != nil {
		p.log.Warn("events: marshal failed", zap.String("event", eventName), zap.Error(err))
		return
	}
	if err := p.conn.Publish(subject, data); err != nil {
		p.log.Warn("events: publish failed", zap.String("subject", subject), zap.Error(err))
	}
}
