// Package static is a browserless engine: it fetches the document over HTTP
// and evaluates selectors against the served HTML. Pages rendered by
// JavaScript show only their shell, and screenshots are unavailable.
package static

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/stackshot/stackshot/internal/domain"
)

// ErrScreenshotUnsupported is returned by Screenshot.
var ErrScreenshotUnsupported = errors.New("screenshots require the playwright engine")

const maxBody = 8 << 20

// Engine implements domain.Browser with net/http and goquery.
type Engine struct {
	client    *http.Client
	userAgent string
}

// New creates an Engine. A nil client gets a default with no overall timeout;
// navigation timeouts are applied per request.
func New(client *http.Client, userAgent string) *Engine {
	if client == nil {
		client = &http.Client{}
	}
	return &Engine{client: client, userAgent: userAgent}
}

func (e *Engine) NewSession(ctx context.Context, _ domain.Viewport) (domain.BrowserSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &session{engine: e}, nil
}

type session struct {
	engine *Engine
	doc    *goquery.Document
	url    string
}

// Navigate ignores the wait policy: the document is complete once its body
// has been read.
func (s *session) Navigate(ctx context.Context, url string, _ domain.WaitPolicy, timeout time.Duration) (domain.NavigationOutcome, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.NavigationOutcome{}, fmt.Errorf("%w: %w", domain.ErrNavigation, err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	if s.engine.userAgent != "" {
		req.Header.Set("User-Agent", s.engine.userAgent)
	}

	resp, err := s.engine.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return domain.NavigationOutcome{}, fmt.Errorf("%w: %w", domain.ErrNavigationTimeout, err)
		}
		return domain.NavigationOutcome{}, fmt.Errorf("%w: %w", domain.ErrNavigation, err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return domain.NavigationOutcome{}, fmt.Errorf("%w: %w", domain.ErrNavigationTimeout, err)
		}
		return domain.NavigationOutcome{}, fmt.Errorf("%w: parsing HTML: %w", domain.ErrNavigation, err)
	}

	s.doc = doc
	s.url = resp.Request.URL.String()
	return domain.NavigationOutcome{Status: resp.StatusCode}, nil
}

func (s *session) Title() (string, error) {
	if s.doc == nil {
		return "", nil
	}
	return strings.TrimSpace(s.doc.Find("title").First().Text()), nil
}

func (s *session) CurrentURL() string { return s.url }

func (s *session) BodyText() (string, error) {
	if s.doc == nil {
		return "", nil
	}
	body := s.doc.Find("body").Clone()
	body.Find("script, style, noscript, template").Remove()
	return strings.Join(strings.Fields(body.Text()), " "), nil
}

// Count supports CSS selectors plus the "text=" prefix, which matches
// elements whose own text contains the value, ignoring case.
func (s *session) Count(selector string) (int, error) {
	if s.doc == nil {
		return 0, nil
	}
	if text, ok := strings.CutPrefix(selector, "text="); ok {
		return s.countText(strings.ToLower(strings.TrimSpace(text))), nil
	}
	return s.doc.Find(selector).Length(), nil
}

func (s *session) countText(want string) int {
	if want == "" {
		return 0
	}
	n := 0
	s.doc.Find("body *").Not("script, style, noscript, template").Each(func(_ int, sel *goquery.Selection) {
		own := sel.Clone().Children().Remove().End().Text()
		if strings.Contains(strings.ToLower(own), want) {
			n++
		}
	})
	return n
}

func (s *session) Screenshot(domain.Region) ([]byte, error) {
	return nil, ErrScreenshotUnsupported
}

func (s *session) Close() error {
	s.doc = nil
	return nil
}
