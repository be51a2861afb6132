package employee

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/ogurasousui/codex-directory-client/internal/core/notice"
	"github.com/ogurasousui/codex-directory-client/internal/platform/apierror"
	"github.com/ogurasousui/codex-directory-client/internal/platform/observer"
	"github.com/sirupsen/logrus"
)

// Snapshot はある時点のストア状態のコピーです。
type Snapshot struct {
	Version   uint64
	Employees []Employee
	Selected  *Employee
	Loading   bool
	Err       error
}

// ErrorMessage は利用者向けのエラーメッセージを返します。エラーがなければ空文字です。
func (s Snapshot) ErrorMessage() string {
	if s.Err == nil {
		return ""
	}
	return apierror.MessageOf(s.Err, s.Err.Error())
}

// UseCase は社員コレクションストアの公開インターフェースです。
type UseCase interface {
	List(ctx context.Context) ([]Employee, error)
	GetByID(ctx context.Context, id ID) (*Employee, error)
	Create(ctx context.Context, in CreateInput) (*Employee, error)
	Update(ctx context.Context, id ID, in UpdateInput) (*Employee, error)
	Delete(ctx context.Context, id ID) error
	ClearSelected(ctx context.Context) error
	ClearError(ctx context.Context) error
	Snapshot() Snapshot
	Subscribe(fn observer.Listener[Snapshot]) func()
}

// Store はリモート API と同期する社員一覧のキャッシュです。
// 応答の反映はロック内で一括して行い、ネットワーク I/O 中はロックを保持しません。
// 並行した操作は直列化されず、応答が届いた順に反映されます。
type Store struct {
	gw     Gateway
	notify notice.Notifier
	log    logrus.FieldLogger
	hub    *observer.Hub[Snapshot]

	mu        sync.Mutex
	version   uint64
	employees []Employee
	selected  *Employee
	loading   bool
	err       error
}

// NewStore は Store を生成します。
func NewStore(gw Gateway, notify notice.Notifier, log logrus.FieldLogger) *Store {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if notify == nil {
		notify = notice.NewCenter(nil, 0, log)
	}
	return &Store{
		gw:        gw,
		notify:    notify,
		log:       log.WithField("store", "employee"),
		hub:       observer.NewHub[Snapshot](log),
		employees: []Employee{},
	}
}

// Subscribe は状態変更の購読者を登録します。
func (s *Store) Subscribe(fn observer.Listener[Snapshot]) func() {
	return s.hub.Subscribe(fn)
}

// Snapshot は現在の状態のコピーを返します。
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// List は一覧を取得し、キャッシュ全体を応答で置き換えます。
func (s *Store) List(ctx context.Context) ([]Employee, error) {
	if err := s.begin(ctx); err != nil {
		return nil, err
	}

	list, err := s.gw.List(ctx)
	if err != nil {
		return nil, s.fail("list", err, MessageListFailed)
	}

	replaced := dedupeByID(list)
	s.commit(func() {
		s.employees = replaced
	})
	s.log.WithField("count", len(replaced)).Debug("employee list replaced")

	return cloneEmployees(replaced), nil
}

// GetByID は一件取得して選択中レコードに設定します。一覧キャッシュには反映しません。
func (s *Store) GetByID(ctx context.Context, id ID) (*Employee, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	if err := s.begin(ctx); err != nil {
		return nil, err
	}

	found, err := s.gw.Get(ctx, id)
	if err == nil && (found == nil || found.ID == "") {
		err = apierror.FromStatus(http.StatusNotFound, "")
	}
	if err != nil {
		return nil, s.fail("get", err, MessageGetFailed)
	}

	selected := cloneEmployee(found)
	s.commit(func() {
		s.selected = selected
	})

	return cloneEmployee(selected), nil
}

// Create は社員を作成し、サーバーが返したレコードを一覧の末尾に追加します。
func (s *Store) Create(ctx context.Context, in CreateInput) (*Employee, error) {
	if err := s.begin(ctx); err != nil {
		return nil, err
	}

	created, err := s.gw.Create(ctx, in)
	if err == nil {
		err = checkRecord(created, "")
	}
	if err != nil {
		return nil, s.fail("create", err, failureMessage(err, MessageCreateFailed))
	}

	record := cloneEmployee(created)
	s.commit(func() {
		if idx := s.indexLocked(record.ID); idx >= 0 {
			s.employees[idx] = *record
			return
		}
		s.employees = append(s.employees, *record)
	})
	s.notify.Success(MessageCreated)

	return cloneEmployee(record), nil
}

// Update は社員を更新し、ID が一致する一覧の要素をサーバー応答で丸ごと置き換えます。
// 一覧に存在しない ID の場合は追加しません。選択中レコードは常に応答の値になります。
func (s *Store) Update(ctx context.Context, id ID, in UpdateInput) (*Employee, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	if err := s.begin(ctx); err != nil {
		return nil, err
	}

	updated, err := s.gw.Update(ctx, id, in)
	if err == nil {
		err = checkRecord(updated, id)
	}
	if err != nil {
		return nil, s.fail("update", err, failureMessage(err, MessageUpdateFailed))
	}

	record := cloneEmployee(updated)
	s.commit(func() {
		if idx := s.indexLocked(id); idx >= 0 {
			s.employees[idx] = *record
		}
		selected := *record
		s.selected = &selected
	})
	s.notify.Success(MessageUpdated)

	return cloneEmployee(record), nil
}

// Delete は社員を削除し、一覧から ID が一致する要素を取り除きます。
// 一覧に存在しない ID の削除はキャッシュに影響しません。
func (s *Store) Delete(ctx context.Context, id ID) error {
	if err := validateID(id); err != nil {
		return err
	}
	if err := s.begin(ctx); err != nil {
		return err
	}

	res, err := s.gw.Delete(ctx, id)
	if err != nil {
		return s.fail("delete", err, MessageDeleteFailed)
	}

	s.commit(func() {
		if idx := s.indexLocked(id); idx >= 0 {
			s.employees = append(s.employees[:idx], s.employees[idx+1:]...)
		}
	})

	msg := MessageDeleted
	if res != nil && strings.TrimSpace(res.Message) != "" {
		msg = res.Message
	}
	s.notify.Success(msg)

	return nil
}

// ClearSelected は選択中レコードを解除します。ネットワークには触れません。
func (s *Store) ClearSelected(ctx context.Context) error {
	if err := observer.GuardMutation(ctx); err != nil {
		return err
	}
	s.mutate(func() {
		s.selected = nil
	})
	return nil
}

// ClearError はエラー状態を解除します。
func (s *Store) ClearError(ctx context.Context) error {
	if err := observer.GuardMutation(ctx); err != nil {
		return err
	}
	s.mutate(func() {
		s.err = nil
	})
	return nil
}

func (s *Store) begin(ctx context.Context) error {
	if err := observer.GuardMutation(ctx); err != nil {
		return err
	}
	s.mutate(func() {
		s.loading = true
	})
	return nil
}

// commit は成功した応答を反映し、loading とエラーを解除します。
func (s *Store) commit(apply func()) {
	s.mutate(func() {
		apply()
		s.loading = false
		s.err = nil
	})
}

// fail はキャッシュを変更せずにエラー状態を記録し、通知します。
func (s *Store) fail(op string, cause error, message string) error {
	surfaced := surface(cause, message)
	s.mutate(func() {
		s.loading = false
		s.err = surfaced
	})
	s.notify.Error(surfaced.Message)
	s.log.WithError(cause).WithFields(logrus.Fields{
		"op":   op,
		"kind": string(surfaced.Kind),
	}).Warn("employee operation failed")
	return surfaced
}

func (s *Store) mutate(fn func()) {
	s.mu.Lock()
	fn()
	s.version++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.hub.Publish(snap.Version, snap)
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Version:   s.version,
		Employees: cloneEmployees(s.employees),
		Selected:  cloneEmployee(s.selected),
		Loading:   s.loading,
		Err:       s.err,
	}
}

func (s *Store) indexLocked(id ID) int {
	for i := range s.employees {
		if s.employees[i].ID == id {
			return i
		}
	}
	return -1
}

func surface(cause error, message string) *apierror.Error {
	out := &apierror.Error{Kind: apierror.KindServer, Message: message, Cause: cause}
	var apiErr *apierror.Error
	if errors.As(cause, &apiErr) {
		out.Kind = apiErr.Kind
		out.Status = apiErr.Status
		out.Fields = apiErr.Fields
	}
	return out
}

// checkRecord は成功応答のレコードがキャッシュに反映できるかを検証します。
// want が空でなければ応答の ID が一致することも確認します。
func checkRecord(rec *Employee, want ID) error {
	if rec == nil || rec.ID == "" {
		return ErrEmptyResponse
	}
	if want != "" && rec.ID != want {
		return fmt.Errorf("%w: requested %s, got %s", ErrIDMismatch, want, rec.ID)
	}
	return nil
}

// failureMessage はサーバーの文言を優先します。認証エラーでは fallback を返します。
func failureMessage(err error, fallback string) string {
	if apierror.Is(err, apierror.KindAuth) {
		return fallback
	}
	return apierror.MessageOf(err, fallback)
}

// dedupeByID は ID が重複する要素を後勝ちでまとめます。位置は最初の出現位置を保ちます。
func dedupeByID(list []Employee) []Employee {
	out := make([]Employee, 0, len(list))
	index := make(map[ID]int, len(list))
	for _, e := range list {
		if i, ok := index[e.ID]; ok {
			out[i] = e
			continue
		}
		index[e.ID] = len(out)
		out = append(out, e)
	}
	return out
}

func validateID(id ID) error {
	if strings.TrimSpace(string(id)) == "" {
		return ErrInvalidID
	}
	return nil
}

func cloneEmployee(e *Employee) *Employee {
	if e == nil {
		return nil
	}
	c := *e
	return &c
}

func cloneEmployees(list []Employee) []Employee {
	out := make([]Employee, len(list))
	copy(out, list)
	return out
}
