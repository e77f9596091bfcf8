package events

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// StatusEvent is one persisted audit row.
type StatusEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID string    `gorm:"index;not null" json:"session_id"`
	Timestamp time.Time `gorm:"index;not null" json:"timestamp"`
	Message   string    `gorm:"not null" json:"message"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Store appends controller events to a sqlite database. Inserts run on a
// dedicated writer goroutine fed by a bounded queue, so the monitoring loop
// is never blocked on disk I/O; when the queue is full or the store is
// closed the event is dropped and counted.
type Store struct {
	db      *gorm.DB
	logger  *slog.Logger
	session atomic.Pointer[string]

	mu      sync.RWMutex
	closed  bool
	queue   chan StatusEvent
	done    chan struct{}
	dropped atomic.Uint64
}

// OpenStore opens (creating if needed) the sqlite event store at path and
// starts the background writer.
func OpenStore(path string, logger *slog.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open event store %s", path)
	}
	if err := db.AutoMigrate(&StatusEvent{}); err != nil {
		return nil, errors.Wrap(err, "migrate event store")
	}
	s := &Store{
		db:     db,
		logger: logger,
		queue:  make(chan StatusEvent, 256),
		done:   make(chan struct{}),
	}
	go s.writer()
	return s, nil
}

// SetSession attaches a session identifier to all subsequent rows.
func (s *Store) SetSession(id string) { s.session.Store(&id) }

func (s *Store) sessionID() string {
	if p := s.session.Load(); p != nil {
		return *p
	}
	return ""
}

// OnEvent implements Sink. It never blocks; events arriving after Close are
// dropped.
func (s *Store) OnEvent(ts time.Time, message string) {
	row := StatusEvent{SessionID: s.sessionID(), Timestamp: ts, Message: message}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.dropped.Add(1)
		return
	}
	select {
	case s.queue <- row:
	default:
		s.dropped.Add(1)
	}
}

func (s *Store) writer() {
	defer close(s.done)
	for row := range s.queue {
		if err := s.db.Create(&row).Error; err != nil && s.logger != nil {
			s.logger.Error("event store insert failed", "error", err)
		}
	}
}

// Recent returns up to limit rows, newest first.
func (s *Store) Recent(limit int) ([]StatusEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []StatusEvent
	if err := s.db.Order("timestamp DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "query status events")
	}
	return rows, nil
}

// Dropped returns the number of events lost to a full queue or a closed
// store.
func (s *Store) Dropped() uint64 { return s.dropped.Load() }

// Close drains the queue, stops the writer and closes the database. Calling
// Close more than once is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()
	<-s.done
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Wrap(err, "close event store")
	}
	return sqlDB.Close()
}
