// Package observer はストアの状態スナップショットを購読者へ配信する仕組みを提供します。
package observer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// ErrReentrantMutation は購読コールバック内からストアを更新しようとした場合に返却されます。
var ErrReentrantMutation = errors.New("observer: store mutation from within a notification callback")

type notifyingKey struct{}

// Notifying は ctx が購読コールバックに渡されたものかどうかを返します。
func Notifying(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	v, _ := ctx.Value(notifyingKey{}).(bool)
	return v
}

// GuardMutation はストアの更新系操作の先頭で呼び出します。
func GuardMutation(ctx context.Context) error {
	if Notifying(ctx) {
		return ErrReentrantMutation
	}
	return nil
}

// Listener はスナップショットを受け取るコールバックです。
type Listener[T any] func(ctx context.Context, snapshot T)

type subscription[T any] struct {
	fn     Listener[T]
	closed atomic.Bool

	mu      sync.Mutex
	running bool
	seen    uint64
	queued  uint64
	pending T
}

// offer は新しいスナップショットを受け付け、配信役を担うべき場合に true を返します。
// 既に配信中のゴルーチンがあれば最新のものだけを預けて戻ります。
func (s *subscription[T]) offer(version uint64, snapshot T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if version <= s.queued {
		return false
	}
	s.queued = version
	s.pending = snapshot
	if s.running {
		return false
	}
	s.running = true
	return true
}

// next は未配信のスナップショットを取り出します。なければ配信役を降ります。
func (s *subscription[T]) next() (uint64, T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queued <= s.seen || s.closed.Load() {
		s.running = false
		var zero T
		return 0, zero, false
	}
	s.seen = s.queued
	snapshot := s.pending
	var zero T
	s.pending = zero
	return s.seen, snapshot, true
}

// Hub はバージョン付きスナップショットを購読者へ配信します。
// 購読者ごとに同時に動く配信役は一つだけで、バージョンは単調増加順に届きます。
// 配信待ちの間に新しいバージョンが届いた場合、古いものは読み飛ばされます。
// コールバックはロックを保持せずに呼ばれるため、コールバック内から Publish されても
// デッドロックしません。
type Hub[T any] struct {
	mu   sync.Mutex
	subs []*subscription[T]
	log  logrus.FieldLogger
}

// NewHub は Hub を生成します。
func NewHub[T any](log logrus.FieldLogger) *Hub[T] {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Hub[T]{log: log}
}

// Subscribe は購読者を登録し、登録解除関数を返します。
func (h *Hub[T]) Subscribe(fn Listener[T]) func() {
	if fn == nil {
		return func() {}
	}

	sub := &subscription[T]{fn: fn}

	h.mu.Lock()
	h.subs = append(h.subs, sub)
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			sub.closed.Store(true)
			h.mu.Lock()
			defer h.mu.Unlock()
			for i, s := range h.subs {
				if s == sub {
					h.subs = append(h.subs[:i], h.subs[i+1:]...)
					break
				}
			}
		})
	}
}

// subscriberCount は現在の購読者数を返します。
func (h *Hub[T]) subscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Publish は version のスナップショットを全購読者へ配信します。
func (h *Hub[T]) Publish(version uint64, snapshot T) {
	h.mu.Lock()
	subs := make([]*subscription[T], len(h.subs))
	copy(subs, h.subs)
	h.mu.Unlock()

	ctx := context.WithValue(context.Background(), notifyingKey{}, true)
	for _, sub := range subs {
		if sub.closed.Load() || !sub.offer(version, snapshot) {
			continue
		}
		for {
			v, snap, ok := sub.next()
			if !ok {
				break
			}
			h.invoke(ctx, sub, v, snap)
		}
	}
}

func (h *Hub[T]) invoke(ctx context.Context, sub *subscription[T], version uint64, snapshot T) {
	defer func() {
		if r := recover(); r != nil {
			h.log.WithField("version", version).Errorf("observer: listener panicked: %v", r)
		}
	}()
	sub.fn(ctx, snapshot)
}
