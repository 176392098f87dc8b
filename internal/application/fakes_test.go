package application_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/stackshot/stackshot/internal/domain"
)

// page is the canned content a fakeBrowser serves for one address.
type page struct {
	status    int
	title     string
	body      string
	texts     []string // visible text of clickable elements
	selectors map[string]int
	navErr    error
	shotErr   error
	shotErrOn int // fail the nth screenshot (1-based), 0 means never
	finalURL  string
	loadTime  time.Duration
}

type fakeBrowser struct {
	mu        sync.Mutex
	pages     map[string]page
	clock     *fakeClock
	opened    int
	closed    int
	visited   []string
	launchErr error
	// sessionDeadlines records whether each NewSession call ran under a deadline.
	sessionDeadlines []bool
}

func newFakeBrowser(pages map[string]page) *fakeBrowser {
	return &fakeBrowser{pages: pages}
}

func (b *fakeBrowser) NewSession(ctx context.Context, _ domain.Viewport) (domain.BrowserSession, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, hasDeadline := ctx.Deadline()
	b.sessionDeadlines = append(b.sessionDeadlines, hasDeadline)
	if b.launchErr != nil {
		return nil, b.launchErr
	}
	b.opened++
	return &fakeSession{browser: b}, nil
}

func (b *fakeBrowser) counts() (opened, closed int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opened, b.closed
}

type fakeSession struct {
	browser *fakeBrowser
	current page
	url     string
	shots   int
}

func (s *fakeSession) Navigate(_ context.Context, url string, _ domain.WaitPolicy, timeout time.Duration) (domain.NavigationOutcome, error) {
	s.browser.mu.Lock()
	s.browser.visited = append(s.browser.visited, url)
	p, ok := s.browser.pages[url]
	clock := s.browser.clock
	s.browser.mu.Unlock()

	if !ok {
		return domain.NavigationOutcome{}, fmt.Errorf("%w: net::ERR_CONNECTION_REFUSED at %s", domain.ErrNavigation, url)
	}
	if p.navErr != nil {
		return domain.NavigationOutcome{}, p.navErr
	}
	if clock != nil {
		clock.advance(p.loadTime)
	}
	s.current = p
	s.url = url
	if p.finalURL != "" {
		s.url = p.finalURL
	}
	return domain.NavigationOutcome{Status: p.status}, nil
}

func (s *fakeSession) Title() (string, error)    { return s.current.title, nil }
func (s *fakeSession) CurrentURL() string        { return s.url }
func (s *fakeSession) BodyText() (string, error) { return s.current.body, nil }

func (s *fakeSession) Count(selector string) (int, error) {
	if text, ok := strings.CutPrefix(selector, "text="); ok {
		n := 0
		for _, t := range s.current.texts {
			if strings.Contains(strings.ToLower(t), strings.ToLower(text)) {
				n++
			}
		}
		return n, nil
	}
	return s.current.selectors[selector], nil
}

func (s *fakeSession) Screenshot(domain.Region) ([]byte, error) {
	s.shots++
	if s.current.shotErrOn == s.shots {
		return nil, s.current.shotErr
	}
	return []byte("png"), nil
}

func (s *fakeSession) Close() error {
	s.browser.mu.Lock()
	defer s.browser.mu.Unlock()
	s.browser.closed++
	return nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type memoryStore struct {
	files map[string][]byte
	err   error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{files: make(map[string][]byte)}
}

func (m *memoryStore) Put(name string, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.files[name] = data
	return "images/" + name, nil
}

type recordingWriter struct {
	reports []*domain.RunReport
	paths   []string
	err     error
}

func (w *recordingWriter) Write(path string, r *domain.RunReport) error {
	if w.err != nil {
		return w.err
	}
	w.paths = append(w.paths, path)
	w.reports = append(w.reports, r)
	return nil
}

type stubProber struct {
	statuses map[string]int
	calls    []string
	keys     []string
}

func (p *stubProber) Probe(_ context.Context, baseURL, path, apiKey string) domain.APIResult {
	url := baseURL + path
	p.calls = append(p.calls, url)
	p.keys = append(p.keys, apiKey)
	status, ok := p.statuses[baseURL]
	if !ok {
		return domain.APIResult{URL: url, Err: "connection refused"}
	}
	return domain.APIResult{URL: url, Status: status}
}

type stubKeys map[string]string

func (k stubKeys) APIKey(d domain.ServiceDescriptor) (string, error) {
	if key, ok := k[d.Name]; ok {
		return key, nil
	}
	return "", nil
}

type stubGit struct{ hash string }

func (g stubGit) CommitHash(string) (string, error) {
	if g.hash == "" {
		return "", errors.New("not a git repository")
	}
	return g.hash, nil
}

type progressEvent struct {
	index, total int
	name         string
	status       domain.Status
}

type recordingProgress struct{ events []progressEvent }

func (p *recordingProgress) ServiceDone(index, total int, v domain.ServiceVerdict) {
	p.events = append(p.events, progressEvent{index, total, v.ServiceName, v.Status})
}
