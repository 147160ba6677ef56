// Package links checks whether bookmarked URLs still answer.
package links

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/MrSnakeDoc/bookhub/internal/domain"
)

const (
	UserAgent = "BookHub-LinkChecker/1.0"

	DefaultHeadTimeout = 10 * time.Second
	DefaultGetTimeout  = 8 * time.Second
	DefaultBatchSize   = 5
	DefaultBatchPause  = 2 * time.Second
)

type Checker struct {
	client      *http.Client
	headTimeout time.Duration
	getTimeout  time.Duration
	batchSize   int
	batchPause  time.Duration
	now         func() time.Time
}

type Option func(*Checker)

func WithHTTPClient(c *http.Client) Option { return func(ch *Checker) { ch.client = c } }

func WithTimeouts(head, get time.Duration) Option {
	return func(ch *Checker) { ch.headTimeout, ch.getTimeout = head, get }
}

// WithBatching sets how many URLs CheckMany checks at once and how long it
// waits between batches.
func WithBatching(size int, pause time.Duration) Option {
	return func(ch *Checker) {
		if size > 0 {
			ch.batchSize = size
		}
		ch.batchPause = pause
	}
}

func New(opts ...Option) *Checker {
	c := &Checker{
		client:      &http.Client{},
		headTimeout: DefaultHeadTimeout,
		getTimeout:  DefaultGetTimeout,
		batchSize:   DefaultBatchSize,
		batchPause:  DefaultBatchPause,
		now:         time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Check sends HEAD, falling back to GET when HEAD fails outright or is not
// supported by the server. It never returns an error: failures are
// described in the status.
func (c *Checker) Check(ctx context.Context, rawURL string) domain.LinkStatus {
	status := domain.LinkStatus{URL: rawURL, CheckedAt: c.now().UTC()}

	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		status.Error = "Invalid URL format"
		return status
	}

	start := time.Now()
	resp, err := c.do(ctx, http.MethodHead, u.String(), c.headTimeout)
	if err != nil || resp.StatusCode == http.StatusMethodNotAllowed || resp.StatusCode == http.StatusNotImplemented {
		headErr := err
		resp, err = c.do(ctx, http.MethodGet, u.String(), c.getTimeout)
		if err != nil {
			if headErr != nil {
				err = headErr
			}
			status.ResponseTime = time.Since(start).Milliseconds()
			status.Error = describe(err)
			return status
		}
	}
	status.ResponseTime = time.Since(start).Milliseconds()

	status.StatusCode = resp.StatusCode
	status.IsValid = resp.StatusCode < 400
	if !status.IsValid {
		status.Error = fmt.Sprintf("HTTP %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	if final := resp.Request.URL.String(); final != u.String() {
		status.RedirectURL = final
	}
	return status
}

func (c *Checker) do(ctx context.Context, method, target string, timeout time.Duration) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	// Only the status matters; drain a little so the connection can be reused.
	_, _ = io.CopyN(io.Discard, resp.Body, 4<<10)
	_ = resp.Body.Close()
	return resp, nil
}

func describe(err error) string {
	var certErr *x509.UnknownAuthorityError
	var hostErr x509.HostnameError
	var invalidErr x509.CertificateInvalidError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "Request timeout"
	case errors.Is(err, context.Canceled):
		return "Request cancelled"
	case errors.As(err, &certErr), errors.As(err, &hostErr), errors.As(err, &invalidErr):
		return "SSL certificate error"
	default:
		return "Network error"
	}
}

// CheckMany checks urls in batches, pausing between batches. When ctx is
// cancelled it stops and returns what was checked so far.
func (c *Checker) CheckMany(ctx context.Context, urls []string) []domain.LinkStatus {
	out := make([]domain.LinkStatus, 0, len(urls))

	for start := 0; start < len(urls); start += c.batchSize {
		if ctx.Err() != nil {
			break
		}
		end := min(start+c.batchSize, len(urls))
		batch := make([]domain.LinkStatus, end-start)

		var wg sync.WaitGroup
		for i, u := range urls[start:end] {
			wg.Add(1)
			go func(i int, u string) {
				defer wg.Done()
				batch[i] = c.Check(ctx, u)
			}(i, u)
		}
		wg.Wait()
		out = append(out, batch...)

		if end < len(urls) && c.batchPause > 0 {
			select {
			case <-ctx.Done():
				return out
			case <-time.After(c.batchPause):
			}
		}
	}
	return out
}
