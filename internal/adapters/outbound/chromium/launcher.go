package chromium

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/playwright-community/playwright-go"

	"github.com/stackshot/stackshot/internal/domain"
)

// Options configure the Playwright runtime.
type Options struct {
	Headless bool
	// SkipInstall assumes the driver and Chromium are already present.
	SkipInstall bool
	Logger      *slog.Logger
}

// Launcher implements domain.Browser on top of Playwright's Chromium. The
// driver is started lazily on the first session and shared afterwards; every
// session gets its own browser process.
type Launcher struct {
	mu      sync.Mutex
	opts    Options
	pw      *playwright.Playwright
	logger  *slog.Logger
	started bool
}

// New creates a Launcher. Nothing is started until NewSession is called.
func New(opts Options) *Launcher {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Launcher{opts: opts, logger: logger}
}

func (l *Launcher) start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started {
		return nil
	}

	// Driver output would interleave with the progress display.
	runOpts := &playwright.RunOptions{
		Verbose:  false,
		Stdout:   io.Discard,
		Stderr:   io.Discard,
		Browsers: []string{"chromium"},
	}
	if !l.opts.SkipInstall {
		l.logger.Debug("installing playwright driver")
		if err := playwright.Install(runOpts); err != nil {
			return fmt.Errorf("installing playwright: %w", err)
		}
	}
	pw, err := playwright.Run(runOpts)
	if err != nil {
		return fmt.Errorf("starting playwright: %w", err)
	}
	l.pw = pw
	l.started = true
	return nil
}

// NewSession launches a fresh Chromium with one context and one page.
func (l *Launcher) NewSession(ctx context.Context, vp domain.Viewport) (domain.BrowserSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := l.start(); err != nil {
		return nil, err
	}

	headless := l.opts.Headless
	browser, err := l.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: &headless,
	})
	if err != nil {
		return nil, fmt.Errorf("launching chromium: %w", err)
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: vp.Width, Height: vp.Height},
	})
	if err != nil {
		_ = browser.Close()
		return nil, fmt.Errorf("creating browser context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		_ = browser.Close()
		return nil, fmt.Errorf("creating page: %w", err)
	}

	return &session{browser: browser, context: bctx, page: page}, nil
}

// Close stops the Playwright driver. Sessions must be closed first.
func (l *Launcher) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.started {
		return nil
	}
	l.started = false
	if err := l.pw.Stop(); err != nil {
		return fmt.Errorf("stopping playwright: %w", err)
	}
	return nil
}

func isTimeout(err error) bool {
	return errors.Is(err, playwright.ErrTimeout)
}
