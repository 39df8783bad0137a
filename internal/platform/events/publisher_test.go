package events

import (
	"encoding/json"
	"errors"
	"testing"
)

type recordingConn struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (c *recordingConn) Publish(subj string, data []byte) error {
	c.subjects = append(c.subjects, subj)
	c.payloads = append(c.payloads, data)
	return c.err
}

func TestPublish_Envelope(t *testing.T) {
	conn := &recordingConn{}
	p := New(conn, nil)

	p.Publish(SubjectFavoriteChanged, "favorite_changed", map[string]any{"current": "25"})

	if len(conn.subjects) != 1 || conn.subjects[0] != SubjectFavoriteChanged {
		t.Fatalf("unexpected subjects: %v", conn.subjects)
	}
	var ev Event
	if err := json.Unmarshal(conn.payloads[0], &ev); err != nil {
		t.Fatal(err)
	}
	if ev.EventID == "" || ev.EventName != "favorite_changed" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.Properties["current"] != "25" {
		t.Fatalf("expected properties to be carried, got %v", ev.Properties)
	}
}

func TestPublish_NilSafe(t *testing.T) {
	var p *Publisher
	p.Publish(SubjectMarkerPlaced, "marker_placed", nil)

	New(nil, nil).Publish(SubjectMarkerPlaced, "marker_placed", nil)
}

func TestPublish_ErrorIsSwallowed(t *testing.T) {
	conn := &recordingConn{err: errors.New("nats down")}
	New(conn, nil).Publish(SubjectMarkerRemoved, "marker_removed", nil)
	if len(conn.subjects) != 1 {
		t.Fatal("expected publish to be attempted")
	}
}
