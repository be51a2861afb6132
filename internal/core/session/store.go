package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ogurasousui/codex-directory-client/internal/core/notice"
	"github.com/ogurasousui/codex-directory-client/internal/platform/apierror"
	"github.com/ogurasousui/codex-directory-client/internal/platform/observer"
	"github.com/sirupsen/logrus"
)

// Snapshot はある時点のセッション状態のコピーです。
// Loading は Initialize が完了するまでの一度きりのフラグで、Pending はログインまたは登録の通信中を示します。
type Snapshot struct {
	Version         uint64
	Token           string
	CurrentUser     *User
	IsAuthenticated bool
	Loading         bool
	Pending         bool
	Err             error
}

// ErrorMessage は利用者向けのエラーメッセージを返します。エラーがなければ空文字です。
func (s Snapshot) ErrorMessage() string {
	if s.Err == nil {
		return ""
	}
	return apierror.MessageOf(s.Err, s.Err.Error())
}

// UseCase はセッションストアの公開インターフェースです。
type UseCase interface {
	Initialize(ctx context.Context) error
	Login(ctx context.Context, creds Credentials) error
	Register(ctx context.Context, in RegisterInput) (*RegisteredUser, error)
	Logout(ctx context.Context) error
	Validate(ctx context.Context) error
	HandleUnauthorized(ctx context.Context)
	RequireAuthenticated() error
	Token() string
	ClearError(ctx context.Context) error
	Snapshot() Snapshot
	Subscribe(fn observer.Listener[Snapshot]) func()
}

// Store は認証状態を保持し、永続化領域へ書き込みながら購読者へ通知します。
// token と isAuthenticated は常に一致し、両者はロック内で同時に更新されます。
type Store struct {
	gw      Gateway
	storage Storage
	notify  notice.Notifier
	log     logrus.FieldLogger
	hub     *observer.Hub[Snapshot]

	mu          sync.Mutex
	version     uint64
	token       string
	user        *User
	loading     bool
	pending     bool
	err         error
	initialized bool
}

// NewStore は Store を生成します。Initialize が完了するまで Loading は true です。
func NewStore(gw Gateway, storage Storage, notify notice.Notifier, log logrus.FieldLogger) *Store {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if notify == nil {
		notify = notice.NewCenter(nil, 0, log)
	}
	return &Store{
		gw:      gw,
		storage: storage,
		notify:  notify,
		log:     log.WithField("store", "session"),
		hub:     observer.NewHub[Snapshot](log),
		loading: true,
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

// Token は現在のトークンを返します。未ログイン時は空文字です。
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// RequireAuthenticated は未ログインの場合に ErrNotAuthenticated を返します。
func (s *Store) RequireAuthenticated() error {
	if s.Token() == "" {
		return ErrNotAuthenticated
	}
	return nil
}

// Initialize は永続化領域からセッションを復元します。ネットワーク通信は行いません。
// 二回目以降の呼び出しは何もしません。
func (s *Store) Initialize(ctx context.Context) error {
	if err := observer.GuardMutation(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return nil
	}
	s.initialized = true
	s.mu.Unlock()

	var loadErr error
	p, err := s.storage.Load(ctx)
	if err != nil {
		loadErr = fmt.Errorf("session: load: %w", err)
		s.log.WithError(err).Warn("failed to restore session")
		p = Persisted{}
	}

	var user *User
	if !p.Empty() {
		u, err := DecodeUser(p.User)
		if err != nil {
			s.log.WithError(err).Warn("stored user is unreadable")
			u = User{}
		}
		user = &u
	}

	s.mutate(func() {
		if loadErr == nil && !p.Empty() {
			s.token = p.Token
			s.user = user
		}
		s.loading = false
	})
	s.log.WithField("authenticated", loadErr == nil && !p.Empty()).Debug("session initialized")

	return loadErr
}

// Login は認証に成功した場合にトークンと利用者を保存します。
// 失敗時は既存の認証状態を変更しません。
func (s *Store) Login(ctx context.Context, creds Credentials) error {
	if err := s.begin(ctx); err != nil {
		return err
	}

	res, err := s.gw.Login(ctx, creds)
	if err == nil && (res == nil || res.Token == "") {
		err = &apierror.Error{Kind: apierror.KindServer, Message: MessageInvalidResponse, Cause: ErrInvalidLoginResponse}
	}
	if err != nil {
		return s.fail("login", err, apierror.MessageOf(err, MessageLoginFailed))
	}

	user := User{Email: creds.Email}
	if err := s.persist(ctx, res.Token, user); err != nil {
		return s.fail("login", err, MessagePersistFailed)
	}

	s.commit(func() {
		s.token = res.Token
		s.user = &user
	})
	s.notify.Success(MessageLoginSucceeded)
	s.log.WithField("email", creds.Email).Info("logged in")

	return nil
}

// Register は利用者を登録します。成功しても認証状態は変わりません。
func (s *Store) Register(ctx context.Context, in RegisterInput) (*RegisteredUser, error) {
	if err := s.begin(ctx); err != nil {
		return nil, err
	}

	created, err := s.gw.Register(ctx, in)
	if err != nil {
		return nil, s.fail("register", err, apierror.MessageOf(err, MessageRegisterFailed))
	}

	s.commit(func() {})
	s.notify.Success(MessageRegistered)

	return created, nil
}

// Logout は永続化領域とメモリ上のセッションを破棄します。永続化領域の失敗は記録のみ行います。
func (s *Store) Logout(ctx context.Context) error {
	if err := observer.GuardMutation(ctx); err != nil {
		return err
	}
	s.clear(ctx)
	s.notify.Info(MessageLoggedOut)
	return nil
}

// HandleUnauthorized はトークンが拒否された場合にセッションを破棄します。
// 認証済みでなければ何もしません。
func (s *Store) HandleUnauthorized(ctx context.Context) {
	if !s.clear(ctx) {
		return
	}
	s.notify.Error(MessageSessionExpired)
	s.log.Warn("session rejected by server")
}

// Validate はトークンの有効性をサーバーに問い合わせます。拒否された場合はセッションを破棄します。
func (s *Store) Validate(ctx context.Context) error {
	if err := observer.GuardMutation(ctx); err != nil {
		return err
	}
	if err := s.RequireAuthenticated(); err != nil {
		return err
	}
	err := s.gw.Validate(ctx)
	if err == nil {
		return nil
	}
	if apierror.Is(err, apierror.KindAuth) {
		s.HandleUnauthorized(ctx)
	} else {
		s.notify.Error(apierror.MessageOf(err, MessageValidateFailed))
	}
	return fmt.Errorf("session: validate: %w", err)
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

func (s *Store) persist(ctx context.Context, token string, user User) error {
	raw, err := EncodeUser(user)
	if err != nil {
		return err
	}
	if err := s.storage.Save(ctx, Persisted{Token: token, User: raw}); err != nil {
		return fmt.Errorf("session: save: %w", err)
	}
	return nil
}

// clear はセッションを破棄し、破棄前に認証済みだったかを返します。
func (s *Store) clear(ctx context.Context) bool {
	if err := s.storage.Clear(ctx); err != nil {
		s.log.WithError(err).Warn("failed to clear stored session")
	}

	var was bool
	s.mutate(func() {
		was = s.token != ""
		s.token = ""
		s.user = nil
	})
	return was
}

func (s *Store) begin(ctx context.Context) error {
	if err := observer.GuardMutation(ctx); err != nil {
		return err
	}
	s.mutate(func() {
		s.pending = true
	})
	return nil
}

func (s *Store) commit(apply func()) {
	s.mutate(func() {
		apply()
		s.pending = false
		s.err = nil
	})
}

func (s *Store) fail(op string, cause error, message string) error {
	surfaced := &apierror.Error{Kind: apierror.KindServer, Message: message, Cause: cause}
	var apiErr *apierror.Error
	if errors.As(cause, &apiErr) {
		surfaced.Kind = apiErr.Kind
		surfaced.Status = apiErr.Status
		surfaced.Fields = apiErr.Fields
	}

	s.mutate(func() {
		s.pending = false
		s.err = surfaced
	})
	s.notify.Error(surfaced.Message)
	s.log.WithError(cause).WithFields(logrus.Fields{
		"op":   op,
		"kind": string(surfaced.Kind),
	}).Warn("session operation failed")
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
	var user *User
	if s.user != nil {
		u := *s.user
		user = &u
	}
	return Snapshot{
		Version:         s.version,
		Token:           s.token,
		CurrentUser:     user,
		IsAuthenticated: s.token != "",
		Loading:         s.loading,
		Pending:         s.pending,
		Err:             s.err,
	}
}
