package browser

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"ft-crawler/internal/resilience/retry"
)

const (
	// maxBodySize limits fetched documents to prevent memory exhaustion.
	maxBodySize = 10 * 1024 * 1024 // 10MB

	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// HTTPLauncher launches sessions backed by a shared net/http client.
type HTTPLauncher struct{}

// NewHTTPLauncher creates a launcher for plain HTTP page fetching.
func NewHTTPLauncher() *HTTPLauncher {
	return &HTTPLauncher{}
}

// Launch creates an HTTP-backed session. The underlying client enforces
// TLS 1.2+ and pools connections across pages.
func (l *HTTPLauncher) Launch(_ context.Context, opts Options) (Session, error) {
	timeout := opts.NavigationTimeout
	if timeout <= 0 {
		timeout = DefaultNavigationTimeout
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}

	return &httpSession{client: client, userAgent: userAgent}, nil
}

type httpSession struct {
	client    *http.Client
	userAgent string
	closed    bool
	mu        sync.Mutex
}

func (s *httpSession) NewPage() (Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("session is closed")
	}
	return &httpPage{session: s}, nil
}

func (s *httpSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.client.CloseIdleConnections()
	return nil
}

// httpPage holds the HTML of the last successful navigation.
type httpPage struct {
	session *httpSession
	html    string
}

// Goto fetches the URL. The wait strategy has no effect on a plain HTTP
// transport; it is honored by renderer-backed implementations.
func (p *httpPage) Goto(ctx context.Context, url string, _ WaitStrategy, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", p.session.userAgent)

	resp, err := p.session.client.Do(req)
	if err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("unexpected status: %s", resp.Status),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	p.html = string(body)
	return nil
}

func (p *httpPage) Content(_ context.Context) (string, error) {
	if p.html == "" {
		return "", fmt.Errorf("no page loaded")
	}
	return p.html, nil
}

func (p *httpPage) Close() error {
	p.html = ""
	return nil
}
