// Package notify publishes build-completed events so downstream consumers
// (deploy hooks, dashboards) can react to regenerated sites.
package notify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/mdsite/internal/logfields"
)

// Subject is the NATS subject build events are published on.
const Subject = "mdsite.builds"

// BuildEvent is the JSON payload published after each run.
type BuildEvent struct {
	BuildID     string    `json:"build_id"`
	Input       string    `json:"input"`
	Output      string    `json:"output"`
	Pages       int       `json:"pages"`
	Assets      int       `json:"assets"`
	Failures    int       `json:"failures"`
	DurationMS  int64     `json:"duration_ms"`
	CompletedAt time.Time `json:"completed_at"`
}

// Publisher publishes build events to a NATS server.
type Publisher struct {
	conn *nats.Conn
}

// Connect dials the NATS server at url.
func Connect(url string) (*Publisher, error) {
	conn, err := nats.Connect(url, nats.Name("mdsite"))
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	slog.Info("NATS publisher connected", logfields.URL(url))
	return &Publisher{conn: conn}, nil
}

// PublishBuildCompleted publishes one event and flushes the connection so
// short-lived processes do not drop it on exit.
func (p *Publisher) PublishBuildCompleted(ev BuildEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal build event: %w", err)
	}
	if err := p.conn.Publish(Subject, payload); err != nil {
		return fmt.Errorf("publish build event: %w", err)
	}
	if err := p.conn.Flush(); err != nil {
		return fmt.Errorf("flush nats connection: %w", err)
	}

	slog.Debug("Build event published", logfields.BuildID(ev.BuildID))
	return nil
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}
