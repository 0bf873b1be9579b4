// Package browser manages the headless Brave session used to defeat the
// watch page's script-driven player embedding.
package browser

import (
	"context"
	"os"
	"runtime"
	"sync"

	"github.com/chromedp/chromedp"
	"github.com/pkg/errors"

	"github.com/gopahe/pahedl/internal/util"
)

// ErrExecutableNotFound reports a missing or misconfigured browser binary.
var ErrExecutableNotFound = errors.New("brave executable not found")

// DetectExecutable probes the well-known Brave install locations for the
// current OS and returns the first that exists, or "" if none do.
func DetectExecutable() string {
	var candidates []string

	switch runtime.GOOS {
	case "windows":
		candidates = []string{
			`C:\Program Files\BraveSoftware\Brave-Browser\Application\brave.exe`,
			`C:\Program Files (x86)\BraveSoftware\Brave-Browser\Application\brave.exe`,
		}
	case "darwin":
		candidates = []string{
			"/Applications/Brave Browser.app/Contents/MacOS/Brave Browser",
			"/Applications/Brave Browser Beta.app/Contents/MacOS/Brave Browser Beta",
		}
	default:
		candidates = []string{
			"/usr/bin/brave-browser",
			"/usr/bin/brave-browser-beta",
			"/usr/bin/brave",
			"/snap/bin/brave",
		}
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Session is the single long-lived browser resource for a run. It starts
// lazily on first use and is reused across episodes; Close must run on every
// exit path, including interruption.
type Session struct {
	execPath string
	headless bool

	mu      sync.Mutex
	ctx     context.Context
	cancels []context.CancelFunc
	started bool
}

// NewSession prepares a session without launching anything yet.
func NewSession(execPath string, headless bool) *Session {
	return &Session{execPath: execPath, headless: headless}
}

// Context returns the browser tab context, launching the browser on first
// call.
func (s *Session) Context() (context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return s.ctx, nil
	}

	if s.execPath == "" {
		return nil, ErrExecutableNotFound
	}
	if _, err := os.Stat(s.execPath); err != nil {
		return nil, errors.Wrapf(ErrExecutableNotFound, "%s", s.execPath)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(s.execPath),
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("headless", s.headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1920, 1080),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// Actually start the browser so a broken binary fails here, not in the
	// middle of the first episode.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, errors.Wrap(err, "failed to start brave")
	}

	util.Debugf("browser session started: %s (headless=%v)", s.execPath, s.headless)

	s.ctx = browserCtx
	s.cancels = []context.CancelFunc{cancelBrowser, cancelAlloc}
	s.started = true
	return s.ctx, nil
}

// Close releases the browser. Safe to call when the session never started,
// and safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	for _, cancel := range s.cancels {
		cancel()
	}
	s.cancels = nil
	s.started = false
	util.Debugf("browser session closed")
}
