// Package notice はストアの操作結果を利用者へ一時的に知らせる通知を管理します。
package notice

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// DefaultTTL は通知が表示され続ける既定時間です。
const DefaultTTL = 3 * time.Second

// Level は通知の種類を表します。
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

// Notice は一件の通知です。
type Notice struct {
	ID        uuid.UUID
	Level     Level
	Message   string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Notifier はストアが操作結果を報告する先です。
type Notifier interface {
	Success(message string)
	Info(message string)
	Error(message string)
}

// Center は Notifier の実装で、期限切れになるまで通知を保持します。
type Center struct {
	mu    sync.Mutex
	clock clockwork.Clock
	ttl   time.Duration
	items []Notice
	log   logrus.FieldLogger
}

// NewCenter は Center を生成します。ttl が 0 以下なら DefaultTTL を用います。
func NewCenter(clock clockwork.Clock, ttl time.Duration, log logrus.FieldLogger) *Center {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Center{clock: clock, ttl: ttl, log: log}
}

// Success は成功通知を追加します。
func (c *Center) Success(message string) { c.push(LevelSuccess, message) }

// Info は情報通知を追加します。
func (c *Center) Info(message string) { c.push(LevelInfo, message) }

// Error は失敗通知を追加します。
func (c *Center) Error(message string) { c.push(LevelError, message) }

func (c *Center) push(level Level, message string) {
	now := c.clock.Now()
	n := Notice{
		ID:        uuid.New(),
		Level:     level,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	}

	c.mu.Lock()
	c.items = append(c.pruneLocked(now), n)
	c.mu.Unlock()

	entry := c.log.WithFields(logrus.Fields{"notice_id": n.ID.String(), "level": string(level)})
	if level == LevelError {
		entry.Warn(message)
		return
	}
	entry.Info(message)
}

// Active は期限内の通知を古い順に返します。
func (c *Center) Active() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = c.pruneLocked(c.clock.Now())
	out := make([]Notice, len(c.items))
	copy(out, c.items)
	return out
}

// Drain は期限内の通知を返し、保持している通知をすべて破棄します。
func (c *Center) Drain() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	active := c.pruneLocked(c.clock.Now())
	c.items = nil
	return active
}

func (c *Center) pruneLocked(now time.Time) []Notice {
	kept := c.items[:0]
	for _, n := range c.items {
		if now.Before(n.ExpiresAt) {
			kept = append(kept, n)
		}
	}
	return kept
}
