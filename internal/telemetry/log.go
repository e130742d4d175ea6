package telemetry

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/dronectl/internal/events"
)

//go:embed schema.sql
var schemaSQL string

// DefaultCapacity is the number of entries kept when no capacity is given.
const DefaultCapacity = 512

// Category classifies a telemetry entry.
type Category string

const (
	CategoryEnabled  Category = "ENABLED"
	CategoryDisabled Category = "DISABLED"
	CategoryError    Category = "ERROR"
	CategoryState    Category = "STATE"
	CategoryRejected Category = "REJECTED"
	CategorySafety   Category = "SAFETY"
	CategoryInfo     Category = "INFO"
)

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{
		CategoryEnabled, CategoryDisabled, CategoryError, CategoryState,
		CategoryRejected, CategorySafety, CategoryInfo,
	}
}

// ParseCategory resolves a category name, case-sensitively.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories() {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Clock supplies entry timestamps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Entry is one telemetry record.
type Entry struct {
	Seq      int64
	At       time.Time
	Category Category
	Subject  string
	Detail   string
}

// Log is a bounded telemetry log fed by an event feed.
//
// Entries live in a private in-memory SQLite database. When the log holds
// capacity entries, appending evicts the oldest. The log only observes;
// it holds a Feed, which cannot publish.
//
// Thread-safety: none. Appends happen on the publishing goroutine.
type Log struct {
	db       *sql.DB
	session  string
	capacity int
	seq      *events.Clock
	clock    Clock
	logger   *slog.Logger
	sub      *events.Subscription
}

// Option allows configuration of log parameters.
type Option func(*Log)

// WithCapacity sets the maximum number of retained entries.
// Values below 1 select DefaultCapacity.
func WithCapacity(n int) Option {
	return func(l *Log) {
		if n < 1 {
			n = DefaultCapacity
		}
		l.capacity = n
	}
}

// WithClock sets the timestamp source. Default: wall clock.
func WithClock(c Clock) Option {
	return func(l *Log) {
		l.clock = c
	}
}

// WithLogger sets the logger used for storage failures.
func WithLogger(lg *slog.Logger) Option {
	return func(l *Log) {
		l.logger = lg
	}
}

// Open creates an empty log and subscribes it to feed. A nil feed yields
// a log that only receives LogInfo entries.
func Open(feed events.Feed, opts ...Option) (*Log, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open telemetry database: %w", err)
	}

	// Each connection to ":memory:" is a separate database, so the pool
	// must never grow past the one connection holding the schema.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply telemetry schema: %w", err)
	}

	l := &Log{
		db:       db,
		session:  uuid.Must(uuid.NewV7()).String(),
		capacity: DefaultCapacity,
		seq:      events.NewClock(),
		clock:    systemClock{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}

	if feed != nil {
		l.sub = feed.Subscribe(l.observe)
	}
	return l, nil
}

// Session returns the UUIDv7 identifying this log.
func (l *Log) Session() string { return l.session }

// Capacity returns the maximum number of retained entries.
func (l *Log) Capacity() int { return l.capacity }

// Close unsubscribes from the feed and releases the database.
func (l *Log) Close() error {
	l.sub.Close()
	l.sub = nil
	if l.db == nil {
		return nil
	}
	err := l.db.Close()
	l.db = nil
	return err
}

// observe maps one notification to an entry.
func (l *Log) observe(e events.Event) {
	switch e.Kind {
	case events.SubsystemChanged:
		if e.Enabled {
			l.append(CategoryEnabled, e.Subsystem, "enabled")
		} else {
			l.append(CategoryDisabled, e.Subsystem, "disabled")
		}
	case events.SubsystemError:
		l.append(CategoryError, e.Subsystem, e.Reason)
	case events.StateChanged:
		from := e.From
		if from == "" {
			from = "initial"
		}
		l.append(CategoryState, e.To, from+" -> "+e.To)
	case events.TransitionRejected:
		l.append(CategoryRejected, e.Command, e.Reason)
	case events.SafetyAlert:
		l.append(CategorySafety, e.Message, "")
	}
}

// LogInfo appends an informational entry.
func (l *Log) LogInfo(subject, detail string) {
	l.append(CategoryInfo, subject, detail)
}

// append stores an entry and evicts beyond capacity. Failures are logged,
// not returned: observers have no error channel.
func (l *Log) append(cat Category, subject, detail string) {
	if l.db == nil {
		return
	}
	seq := l.seq.Next()
	ctx := context.Background()

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO entries (seq, session, at_ns, category, subject, detail)
		VALUES (?, ?, ?, ?, ?, ?)
	`, seq, l.session, l.clock.Now().UnixNano(), string(cat), subject, detail)
	if err != nil {
		l.logger.Error("telemetry append failed", "category", cat, "subject", subject, "error", err)
		return
	}

	if _, err := l.db.ExecContext(ctx, `DELETE FROM entries WHERE seq <= ?`, seq-int64(l.capacity)); err != nil {
		l.logger.Error("telemetry eviction failed", "error", err)
	}
}

// Clear removes every entry. Sequence numbers keep increasing.
func (l *Log) Clear(ctx context.Context) error {
	if _, err := l.db.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return fmt.Errorf("clear telemetry: %w", err)
	}
	return nil
}
