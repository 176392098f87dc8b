package chromium

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/stackshot/stackshot/internal/domain"
)

type session struct {
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	closed  bool
}

func (s *session) Navigate(ctx context.Context, url string, wait domain.WaitPolicy, timeout time.Duration) (domain.NavigationOutcome, error) {
	timeout, err := gotoTimeout(ctx, timeout, time.Now())
	if err != nil {
		return domain.NavigationOutcome{}, err
	}

	opts := playwright.PageGotoOptions{}
	if wait != "" {
		ws := playwright.WaitUntilState(wait)
		opts.WaitUntil = &ws
	}
	if timeout > 0 {
		ms := float64(timeout.Milliseconds())
		opts.Timeout = &ms
	}

	resp, err := s.page.Goto(url, opts)
	if err != nil {
		if isTimeout(err) {
			return domain.NavigationOutcome{}, fmt.Errorf("%w: %w", domain.ErrNavigationTimeout, err)
		}
		return domain.NavigationOutcome{}, fmt.Errorf("%w: %w", domain.ErrNavigation, err)
	}

	var out domain.NavigationOutcome
	if resp != nil {
		out.Status = resp.Status()
	}
	return out, nil
}

// gotoTimeout clamps timeout to what is left of ctx's deadline. Playwright
// treats 0 as "no timeout", so an expired deadline is reported as a timeout
// instead of being passed through.
func gotoTimeout(ctx context.Context, timeout time.Duration, now time.Time) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return 0, fmt.Errorf("%w: %w", domain.ErrNavigationTimeout, err)
		}
		return 0, err
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		return timeout, nil
	}
	left := deadline.Sub(now)
	if left < time.Millisecond {
		return 0, fmt.Errorf("%w: %w", domain.ErrNavigationTimeout, context.DeadlineExceeded)
	}
	if timeout <= 0 || left < timeout {
		return left, nil
	}
	return timeout, nil
}

func (s *session) Title() (string, error) {
	return s.page.Title()
}

func (s *session) CurrentURL() string {
	return s.page.URL()
}

func (s *session) BodyText() (string, error) {
	body, err := s.page.QuerySelector("body")
	if err != nil {
		return "", fmt.Errorf("querying body: %w", err)
	}
	if body == nil {
		return "", nil
	}
	return body.TextContent()
}

// Count relies on Playwright's own selector engines; "text=" is already a
// case-insensitive substring match there.
func (s *session) Count(selector string) (int, error) {
	return s.page.Locator(selector).Count()
}

func (s *session) Screenshot(r domain.Region) ([]byte, error) {
	if r.Clip {
		return s.page.Screenshot(playwright.PageScreenshotOptions{
			FullPage: playwright.Bool(true),
			Clip: &playwright.Rect{
				X:      0,
				Y:      0,
				Width:  float64(r.Width),
				Height: float64(r.Height),
			},
		})
	}
	if err := s.page.SetViewportSize(r.Width, r.Height); err != nil {
		return nil, fmt.Errorf("resizing viewport: %w", err)
	}
	return s.page.Screenshot()
}

// Close tears down page, context and browser in that order. It is safe to
// call more than once.
func (s *session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	var errs []error
	if err := s.page.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing page: %w", err))
	}
	if err := s.context.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing context: %w", err))
	}
	if err := s.browser.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing browser: %w", err))
	}
	return errors.Join(errs...)
}
