package batch

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/local/batchprint/internal/store"
)

// Update is one item transition
type Update struct {
	JobID       string
	Index       int
	Total       int
	File        string
	State       State
	Message     string
	Destination string
	At          time.Time
}

// StatusPublisher receives every item transition
type StatusPublisher interface {
	Publish(ctx context.Context, u Update) error
}

// LogPublisher logs transitions through zerolog
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, u Update) error {
	ev := log.Info()
	switch u.State {
	case StateFailed:
		ev = log.Warn()
	case StateNormalizing, StateSubsetting, StateDispatching:
		ev = log.Debug()
	}
	ev.Str("job_id", u.JobID).
		Int("index", u.Index+1).
		Int("total", u.Total).
		Str("file", u.File).
		Str("state", string(u.State)).
		Str("message", u.Message).
		Str("destination", u.Destination).
		Msg("item status")
	return nil
}

// WriterPublisher prints one line per finished item, the CLI's status line
type WriterPublisher struct {
	W io.Writer
}

func (p WriterPublisher) Publish(_ context.Context, u Update) error {
	if !u.State.Terminal() {
		return nil
	}
	line := fmt.Sprintf("[%d/%d] %s: %s", u.Index+1, u.Total, filepath.Base(u.File), u.State)
	switch {
	case u.Message != "":
		line += " - " + u.Message
	case u.Destination != "":
		line += " -> " + u.Destination
	}
	_, err := fmt.Fprintln(p.W, line)
	return err
}

// Multi fans an update out to several publishers. Every publisher is called
// even if an earlier one fails; the first error is returned.
type Multi []StatusPublisher

func (m Multi) Publish(ctx context.Context, u Update) error {
	var first error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, u); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// redisPublisher mirrors item status into Redis for external pollers
type redisPublisher struct{ s *store.RedisStatus }

// NewRedisPublisher adapts a RedisStatus store to StatusPublisher
func NewRedisPublisher(s *store.RedisStatus) StatusPublisher { return &redisPublisher{s: s} }

func (r *redisPublisher) Publish(ctx context.Context, u Update) error {
	return r.s.SetItem(ctx, u.JobID, u.Index, store.ItemStatus{
		File:        u.File,
		State:       string(u.State),
		Message:     u.Message,
		Destination: u.Destination,
		Total:       u.Total,
		Updated:     u.At,
	})
}
