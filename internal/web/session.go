package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"

	"github.com/retiroapp/expctl/internal/page"
)

const (
	// LoginPath is where the host application serves its login form.
	LoginPath = "/login/"

	userAgent      = "expctl/1.0"
	defaultTimeout = 30 * time.Second
)

// ErrLoginFailed is returned when the login form is shown again after
// submitting credentials.
var ErrLoginFailed = errors.New("login failed")

// Options configures a Session.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	TokenField string
	Logger     *zap.SugaredLogger
	Transport  http.RoundTripper
}

// Session is a browsing session against the host application. It keeps
// cookies between requests the way a browser tab does.
type Session struct {
	base       *url.URL
	client     *http.Client
	tokenField string
	log        *zap.SugaredLogger
}

// NewSession creates a Session for the application at opts.BaseURL.
func NewSession(opts Options) (*Session, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", opts.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host required", opts.BaseURL)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	tokenField := opts.TokenField
	if tokenField == "" {
		tokenField = page.DefaultTokenField
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	return &Session{
		base: base,
		client: &http.Client{
			Timeout:   timeout,
			Jar:       jar,
			Transport: opts.Transport,
		},
		tokenField: tokenField,
		log:        log,
	}, nil
}

// Resolve turns a path such as "/gestores/" into an absolute URL.
func (s *Session) Resolve(path string) (*url.URL, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path %q: %w", path, err)
	}
	return s.base.ResolveReference(ref), nil
}

// Fetch loads a page.
func (s *Session) Fetch(ctx context.Context, path string) (*page.Document, error) {
	u, err := s.Resolve(path)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	return s.navigate(req)
}

// Submit sends the form from the context of doc and returns the page the
// server navigates to. Error statuses are not treated as failures: the
// landing page is returned so the caller can show it.
func (s *Session) Submit(ctx context.Context, doc *page.Document, form *page.Form) (*page.Document, error) {
	ref, err := url.Parse(form.Action)
	if err != nil {
		return nil, fmt.Errorf("invalid form action %q: %w", form.Action, err)
	}
	base := s.base
	if doc != nil && doc.URL != nil {
		base = doc.URL
	}
	action := base.ResolveReference(ref)

	method := strings.ToUpper(form.Method)
	if method == "" {
		method = http.MethodGet
	}

	var req *http.Request
	if method == http.MethodGet {
		u := *action
		u.RawQuery = form.Encode()
		req, err = http.NewRequestWithContext(ctx, method, u.String(), nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, action.String(), strings.NewReader(form.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if doc != nil && doc.URL != nil {
		req.Header.Set("Referer", doc.URL.String())
		req.Header.Set("Origin", doc.URL.Scheme+"://"+doc.URL.Host)
	}

	return s.navigate(req)
}

// Login signs in through the application's login form.
func (s *Session) Login(ctx context.Context, username, password string) (*page.Document, error) {
	loginPage, err := s.Fetch(ctx, LoginPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load login page: %w", err)
	}
	token, err := loginPage.Token(s.tokenField)
	if err != nil {
		return nil, err
	}

	form := page.NewPostForm(LoginPath)
	form.AddHidden(s.tokenField, token)
	form.Add("username", username)
	form.Add("password", password)

	landing, err := s.Submit(ctx, loginPage, form)
	if err != nil {
		return nil, err
	}
	if landing.Find(`input[name="password"]`).Length() > 0 {
		if msgs := landing.Messages(); len(msgs) > 0 {
			return landing, fmt.Errorf("%w: %s", ErrLoginFailed, strings.Join(msgs, "; "))
		}
		return landing, ErrLoginFailed
	}

	s.log.Infow("logged in", "user", username, "landing", landing.URL)
	return landing, nil
}

func (s *Session) navigate(req *http.Request) (*page.Document, error) {
	requestID := uuid.New().String()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	s.log.Debugw("request",
		"request_id", requestID,
		"method", req.Method,
		"url", req.URL.String(),
		"status", resp.StatusCode,
		"final_url", resp.Request.URL.String(),
		"elapsed", time.Since(start),
	)
	if resp.StatusCode >= 400 {
		s.log.Warnw("server returned error page", "request_id", requestID, "status", resp.StatusCode)
	}

	doc, err := page.Load(resp.Body, resp.Request.URL.String())
	if err != nil {
		return nil, err
	}
	doc.StatusCode = resp.StatusCode
	return doc, nil
}
