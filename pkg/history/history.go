// Package history records one entry per render request.
//
// Records are written after the artifact is produced (or the render fails)
// and listed newest first. Two stores exist: [Memory] for the CLI and tests,
// [MongoStore] for the server.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// DefaultLimit caps List when Filter.Limit is zero.
const DefaultLimit = 50

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("history: store closed")

// Record describes one render.
type Record struct {
	ID        string    `json:"id" bson:"_id"`
	DNI       string    `json:"dni" bson:"dni"`
	Kind      string    `json:"kind" bson:"kind"`
	Format    string    `json:"format" bson:"format"`
	Relatives int       `json:"relatives" bson:"relatives"`
	Pages     int       `json:"pages,omitempty" bson:"pages,omitempty"`
	Bytes     int       `json:"bytes" bson:"bytes"`
	CacheHit  bool      `json:"cache_hit" bson:"cache_hit"`
	Duration  Duration  `json:"duration" bson:"duration_ns"`
	ErrorCode string    `json:"error_code,omitempty" bson:"error_code,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Failed reports whether the render ended in an error.
func (r Record) Failed() bool { return r.ErrorCode != "" }

// Duration prints as a Go duration string in JSON. BSON keeps nanoseconds.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).Round(time.Millisecond).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Filter narrows List.
type Filter struct {
	DNI   string
	Limit int
}

func (f Filter) limit() int {
	if f.Limit <= 0 {
		return DefaultLimit
	}
	return f.Limit
}

// Store persists render records.
type Store interface {
	// Add stores r, filling ID and CreatedAt when empty, and returns the
	// stored record.
	Add(ctx context.Context, r Record) (Record, error)
	// List returns records newest first.
	List(ctx context.Context, f Filter) ([]Record, error)
	Close(ctx context.Context) error
}

func prepare(r Record, now time.Time) Record {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now.UTC()
	}
	return r
}
