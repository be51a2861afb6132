// Package httpapi はリモートのディレクトリ API に対する HTTP/JSON クライアントです。
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/ogurasousui/codex-directory-client/internal/platform/apierror"
	"github.com/ogurasousui/codex-directory-client/internal/platform/metrics"
	"github.com/ogurasousui/codex-directory-client/internal/platform/retry"
	"github.com/sirupsen/logrus"
)

const (
	// HeaderRequestID はリクエストごとに付与する相関 ID のヘッダーです。
	HeaderRequestID = "X-Request-ID"

	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

// ErrInvalidBaseURL は BaseURL が絶対 URL でない場合に返却されます。
var ErrInvalidBaseURL = errors.New("httpapi: base url must be absolute")

// TokenSource は認証付きリクエストに添付するトークンを返します。空文字の場合は添付しません。
type TokenSource interface {
	Token() string
}

// TokenFunc は関数を TokenSource として扱います。
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// UnauthorizedHandler はトークン付きのリクエストが 401 で拒否されたときに呼び出されます。
type UnauthorizedHandler func(ctx context.Context)

// Options は Client の生成オプションです。
type Options struct {
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
	HTTPClient     *http.Client
	Clock          clockwork.Clock
	Metrics        metrics.Recorder
	Logger         logrus.FieldLogger
}

// Client はリモート API への HTTP/JSON 呼び出しを行います。
type Client struct {
	base    *url.URL
	http    *http.Client
	policy  retry.Policy
	metrics metrics.Recorder
	log     logrus.FieldLogger

	mu             sync.RWMutex
	tokens         TokenSource
	onUnauthorized UnauthorizedHandler
}

// New は Client を生成します。
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	rec := opts.Metrics
	if rec == nil {
		rec = metrics.Nop{}
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("component", "httpapi")

	return &Client{
		base: base,
		http: httpClient,
		policy: retry.Policy{
			MaxAttempts:    opts.MaxRetries + 1,
			InitialBackoff: opts.RetryBaseDelay,
			Clock:          opts.Clock,
		},
		metrics: rec,
		log:     log,
	}, nil
}

// SetTokenSource は認証付きリクエストに使うトークンの取得元を設定します。
func (c *Client) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = ts
}

// OnUnauthorized は 401 応答時のハンドラーを設定します。
func (c *Client) OnUnauthorized(h UnauthorizedHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = h
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

func (c *Client) unauthorized(ctx context.Context) {
	c.mu.RLock()
	h := c.onUnauthorized
	c.mu.RUnlock()
	if h != nil {
		h(ctx)
	}
}

// StatusClassifier は失敗応答をエラーに変換します。
type StatusClassifier func(status int, serverMessage string) *apierror.Error

// call は一回の API 呼び出しの内容です。route はメトリクスのラベルに使うパスの型です。
type call struct {
	method   string
	route    string
	path     string
	body     any
	out      any
	auth     bool
	classify StatusClassifier
}

type response struct {
	status int
	body   []byte
}

// do は call を実行し、2xx 応答の本文を out に復元します。
// GET は応答が得られなかった場合に限り再試行します。
func (c *Client) do(ctx context.Context, cl call) (int, error) {
	var payload []byte
	if cl.body != nil {
		b, err := json.Marshal(cl.body)
		if err != nil {
			return 0, fmt.Errorf("httpapi: encode %s body: %w", cl.route, err)
		}
		payload = b
	}

	policy := c.policy
	if cl.method != http.MethodGet {
		policy.MaxAttempts = 1
	}
	policy.OnRetry = func(attempt int, err error, backoff time.Duration) {
		c.metrics.ObserveRetry(cl.route)
		c.log.WithError(err).WithFields(logrus.Fields{
			"route":   cl.route,
			"attempt": attempt,
			"backoff": backoff,
		}).Debug("retrying request")
	}

	var sentToken bool
	res, err := retry.Do(ctx, policy, classifyRetry, func(int) (response, error) {
		r, withToken, err := c.send(ctx, cl, payload)
		sentToken = withToken
		return r, err
	})
	if err != nil {
		return 0, unwrapRetry(err)
	}

	if res.status < 200 || res.status >= 300 {
		classify := cl.classify
		if classify == nil {
			classify = apierror.FromStatus
		}
		apiErr := classify(res.status, serverMessage(res.body))
		if res.status == http.StatusUnauthorized && cl.auth && sentToken {
			c.unauthorized(ctx)
		}
		return res.status, apiErr
	}

	if cl.out != nil && len(bytes.TrimSpace(res.body)) > 0 {
		if err := json.Unmarshal(res.body, cl.out); err != nil {
			return res.status, &apierror.Error{
				Kind:    apierror.KindServer,
				Status:  res.status,
				Message: "Invalid response from server",
				Cause:   fmt.Errorf("httpapi: decode %s response: %w", cl.route, err),
			}
		}
	}

	return res.status, nil
}

func (c *Client) send(ctx context.Context, cl call, payload []byte) (response, bool, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.base.String()+cl.path, body)
	if err != nil {
		return response{}, false, fmt.Errorf("httpapi: build %s request: %w", cl.route, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set(HeaderRequestID, requestID)

	withToken := false
	if cl.auth {
		if token := c.token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
			withToken = true
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(cl.route, cl.method, 0, time.Since(start))
		c.log.WithError(err).WithFields(logrus.Fields{
			"route":      cl.route,
			"request_id": requestID,
		}).Warn("no response from server")
		return response{}, withToken, apierror.Network(err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.metrics.ObserveRequest(cl.route, cl.method, resp.StatusCode, time.Since(start))
	if err != nil {
		return response{}, withToken, apierror.Network(fmt.Errorf("httpapi: read %s response: %w", cl.route, err))
	}

	c.log.WithFields(logrus.Fields{
		"route":      cl.route,
		"method":     cl.method,
		"status":     resp.StatusCode,
		"request_id": requestID,
	}).Debug("api request completed")

	return response{status: resp.StatusCode, body: b}, withToken, nil
}

func classifyRetry(err error) retry.Action {
	if apierror.Is(err, apierror.KindNetwork) {
		return retry.Retry
	}
	return retry.Stop
}

func unwrapRetry(err error) error {
	var perm *retry.PermanentError
	if errors.As(err, &perm) {
		return perm.Err
	}
	var exhausted *retry.ExhaustedError
	if errors.As(err, &exhausted) {
		return exhausted.Err
	}
	return apierror.Network(err)
}

// serverMessage は失敗応答の本文から message フィールドを取り出します。
func serverMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if msg := strings.TrimSpace(payload.Message); msg != "" {
		return msg
	}
	return strings.TrimSpace(payload.Error)
}
