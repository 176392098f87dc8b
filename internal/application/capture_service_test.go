package application_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackshot/stackshot/internal/application"
	"github.com/stackshot/stackshot/internal/domain"
)

func alpha() domain.ServiceDescriptor {
	return domain.ServiceDescriptor{
		Name:            "alpha",
		Address:         "http://alpha.local",
		DisplayName:     "Alpha",
		ExpectedMarkers: []string{"Home"},
	}
}

func alphaPage() page {
	return page{
		status:    200,
		title:     "Alpha Home",
		body:      "Home",
		texts:     []string{"Home"},
		selectors: map[string]int{"nav": 1},
		loadTime:  800 * time.Millisecond,
	}
}

func newCapture(b *fakeBrowser, store domain.ArtifactStore) *application.CaptureService {
	clock := newFakeClock()
	b.clock = clock
	return application.NewCaptureService(b, store, nil).WithClock(clock.Now)
}

func fullOptions() application.CaptureOptions {
	return application.CaptureOptionsFrom(domain.DefaultConfigForMode(domain.ModeFullDocumentation))
}

func TestCapture_SkipNeverOpensSession(t *testing.T) {
	b := newFakeBrowser(nil)
	d := alpha()
	d.Skip = true

	out := newCapture(b, nil).Capture(context.Background(), d, fullOptions())

	assert.True(t, out.Skipped)
	assert.Nil(t, out.Result)
	assert.Nil(t, out.Err)
	opened, _ := b.counts()
	assert.Zero(t, opened)
}

func TestCapture_CollectsPageData(t *testing.T) {
	b := newFakeBrowser(map[string]page{"http://alpha.local": alphaPage()})
	store := newMemoryStore()

	out := newCapture(b, store).Capture(context.Background(), alpha(), fullOptions())

	require.Nil(t, out.Err)
	require.NotNil(t, out.Result)
	r := out.Result
	assert.Equal(t, "Alpha Home", r.Title)
	assert.Equal(t, 200, r.Status)
	assert.Equal(t, int64(800), r.LoadTimeMs)
	assert.Equal(t, "http://alpha.local", r.FinalURL)
	assert.True(t, r.MarkerHits["Home"])
	assert.Equal(t, 1, r.Landmarks["nav"])
	assert.Equal(t, []string{"images/alpha.png", "images/alpha-mobile.png"}, r.Artifacts)
	assert.Len(t, store.files, 2)

	opened, closed := b.counts()
	assert.Equal(t, 1, opened)
	assert.Equal(t, 1, closed)
}

func TestCapture_MarkerMatchIsCaseInsensitive(t *testing.T) {
	p := alphaPage()
	p.texts = []string{"HOME"}
	b := newFakeBrowser(map[string]page{"http://alpha.local": p})

	out := newCapture(b, nil).Capture(context.Background(), alpha(), application.CaptureOptions{})

	require.NotNil(t, out.Result)
	assert.True(t, out.Result.MarkerHits["Home"])
}

func TestCapture_MarkerFoundByAccessibleLabel(t *testing.T) {
	p := alphaPage()
	p.texts = nil
	p.selectors[`[aria-label*="Home"]`] = 1
	b := newFakeBrowser(map[string]page{"http://alpha.local": p})

	out := newCapture(b, nil).Capture(context.Background(), alpha(), application.CaptureOptions{})

	require.NotNil(t, out.Result)
	assert.True(t, out.Result.MarkerHits["Home"])
}

func TestCapture_TimeoutClassified(t *testing.T) {
	p := alphaPage()
	p.navErr = fmt.Errorf("%w: Timeout 15000ms exceeded.\nCall log:\n  - navigating", domain.ErrNavigationTimeout)
	b := newFakeBrowser(map[string]page{"http://alpha.local": p})

	out := newCapture(b, nil).Capture(context.Background(), alpha(), fullOptions())

	require.NotNil(t, out.Err)
	assert.Nil(t, out.Result)
	assert.Equal(t, domain.KindTimeout, out.Err.Kind)
	assert.NotContains(t, out.Err.Message, "Call log")
	_, closed := b.counts()
	assert.Equal(t, 1, closed, "session is closed after a failed navigation")
}

func TestCapture_UnreachableIsNetworkFailure(t *testing.T) {
	b := newFakeBrowser(nil)

	out := newCapture(b, nil).Capture(context.Background(), alpha(), fullOptions())

	require.NotNil(t, out.Err)
	assert.Equal(t, domain.KindNetwork, out.Err.Kind)
	assert.Contains(t, out.Err.Message, "ERR_CONNECTION_REFUSED")
	opened, closed := b.counts()
	assert.Equal(t, opened, closed)
}

func TestCapture_LaunchFailure(t *testing.T) {
	b := newFakeBrowser(nil)
	b.launchErr = errors.New("browser executable not found")

	out := newCapture(b, nil).Capture(context.Background(), alpha(), fullOptions())

	require.NotNil(t, out.Err)
	assert.ErrorIs(t, out.Err, domain.ErrNavigation)
	_, closed := b.counts()
	assert.Zero(t, closed)
}

func TestCapture_PartialScreenshotFailureDropsArtifacts(t *testing.T) {
	p := alphaPage()
	p.shotErr = errors.New("target closed")
	p.shotErrOn = 2
	b := newFakeBrowser(map[string]page{"http://alpha.local": p})
	store := newMemoryStore()

	out := newCapture(b, store).Capture(context.Background(), alpha(), fullOptions())

	require.NotNil(t, out.Err)
	assert.Nil(t, out.Result)
	assert.Contains(t, out.Err.Message, "alpha-mobile.png")
	_, closed := b.counts()
	assert.Equal(t, 1, closed)
}

func TestCapture_DesktopOnlyArtifacts(t *testing.T) {
	b := newFakeBrowser(map[string]page{"http://alpha.local": alphaPage()})
	store := newMemoryStore()
	opts := fullOptions()
	opts.Artifacts = domain.ArtifactsDesktop

	out := newCapture(b, store).Capture(context.Background(), alpha(), opts)

	require.NotNil(t, out.Result)
	assert.Equal(t, []string{"images/alpha.png"}, out.Result.Artifacts)
}

func TestCapture_ArtifactsWithoutStoreFails(t *testing.T) {
	b := newFakeBrowser(map[string]page{"http://alpha.local": alphaPage()})

	out := newCapture(b, nil).Capture(context.Background(), alpha(), fullOptions())

	require.NotNil(t, out.Err)
	_, closed := b.counts()
	assert.Equal(t, 1, closed)
}

func TestCapture_SessionStartupOutsideNavigationBudget(t *testing.T) {
	b := newFakeBrowser(map[string]page{"http://alpha.local": alphaPage()})

	out := newCapture(b, nil).Capture(context.Background(), alpha(), application.CaptureOptions{Timeout: 5 * time.Second})

	require.NotNil(t, out.Result)
	assert.Equal(t, []bool{false}, b.sessionDeadlines, "a slow first launch must not eat into the navigation timeout")
}
