// Package browser drives a controlled Chrome session over the DevTools
// protocol and manages a virtual WebAuthn authenticator attached to it.
package browser

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/chromedp/chromedp"
)

// titlePollInterval is how often title-based waits re-read the page title.
const titlePollInterval = 500 * time.Millisecond

// Session is one controlled browser instance. Close releases it; release
// failures are logged, never propagated.
type Session struct {
	ctx             context.Context
	ctxCancel       context.CancelFunc
	allocatorCancel context.CancelFunc
}

// NewSession launches Chrome under parent. Cancelling parent (operator
// interrupt) aborts every wait running against the session.
func NewSession(parent context.Context, headless bool) (*Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.WindowSize(1200, 800),
	)
	// The default allocator options run headless; the operator has to log
	// in and type an OTP in this window, so headful is the usual mode.
	if !headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}

	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(parent, opts...)
	ctx, ctxCancel := chromedp.NewContext(allocatorCtx)

	// Start the browser before callers attach authenticators to it.
	if err := chromedp.Run(ctx); err != nil {
		ctxCancel()
		allocatorCancel()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	return &Session{
		ctx:             ctx,
		ctxCancel:       ctxCancel,
		allocatorCancel: allocatorCancel,
	}, nil
}

// Navigate loads url and gives the page a moment to settle.
func (s *Session) Navigate(url string) error {
	if err := chromedp.Run(s.ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	time.Sleep(2 * time.Second)
	return nil
}

// Title returns the current page title.
func (s *Session) Title() (string, error) {
	var title string
	if err := chromedp.Run(s.ctx, chromedp.Title(&title)); err != nil {
		return "", fmt.Errorf("failed to read page title: %w", err)
	}
	return title, nil
}

// CurrentURL returns the current page location.
func (s *Session) CurrentURL() (string, error) {
	var loc string
	if err := chromedp.Run(s.ctx, chromedp.Location(&loc)); err != nil {
		return "", fmt.Errorf("failed to read page location: %w", err)
	}
	return loc, nil
}

// Click waits for sel (CSS or XPath) to become visible and clicks it,
// giving up after timeout.
func (s *Session) Click(sel string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	if err := chromedp.Run(ctx,
		chromedp.WaitVisible(sel, chromedp.BySearch),
		chromedp.Click(sel, chromedp.BySearch),
	); err != nil {
		return fmt.Errorf("failed to click %q: %w", sel, err)
	}
	return nil
}

// WaitPresent blocks until sel exists in the DOM or timeout elapses.
func (s *Session) WaitPresent(sel string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	if err := chromedp.Run(ctx, chromedp.WaitReady(sel, chromedp.BySearch)); err != nil {
		return fmt.Errorf("timed out waiting for %q: %w", sel, err)
	}
	return nil
}

// WaitTitle polls the page title until pred accepts it or timeout
// elapses. This is the only signal available for state changes on pages
// we do not control.
func (s *Session) WaitTitle(pred func(string) bool, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(titlePollInterval)
	defer ticker.Stop()
	for {
		var title string
		if err := chromedp.Run(ctx, chromedp.Title(&title)); err != nil {
			return fmt.Errorf("timed out waiting for page title: %w", err)
		}
		if pred(title) {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("timed out waiting for page title: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

// Close shuts the browser down. Best effort: a browser that already died
// is not worth reporting beyond a log line.
func (s *Session) Close() {
	if err := chromedp.Cancel(s.ctx); err != nil {
		log.Printf("[-] browser close: %v", err)
	}
	s.ctxCancel()
	s.allocatorCancel()
}

// run executes chromedp actions against the session; used by the
// authenticator half of this package.
func (s *Session) run(actions ...chromedp.Action) error {
	return chromedp.Run(s.ctx, actions...)
}
