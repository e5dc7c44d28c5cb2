package client

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

const defaultSessionPollInterval = 30 * time.Second

// SessionWatcher polls the session status while the user is signed in and
// signs the client out once the server says the session was replaced.
// Transport failures and timeouts keep the session.
type SessionWatcher struct {
	client    *Client
	interval  time.Duration
	onInvalid func()

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSessionWatcher builds a watcher. onInvalid may be nil.
func NewSessionWatcher(c *Client, interval time.Duration, onInvalid func()) *SessionWatcher {
	if interval <= 0 {
		interval = defaultSessionPollInterval
	}
	return &SessionWatcher{client: c, interval: interval, onInvalid: onInvalid}
}

// Start begins polling for the current session, replacing an earlier run.
// It is a no-op when nobody is signed in.
func (w *SessionWatcher) Start(ctx context.Context) {
	w.Stop()
	if !w.client.auth.Authenticated() {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	go w.run(runCtx, w.client.auth.Generation(), w.done)
}

// Stop cancels polling and waits for the loop to exit.
func (w *SessionWatcher) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.cancel, w.done = nil, nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// run polls until the session ends. onInvalid is called after done is
// closed, so the callback may Stop or Start the watcher.
func (w *SessionWatcher) run(ctx context.Context, gen uint64, done chan<- struct{}) {
	signedOut := w.poll(ctx, gen)
	close(done)
	if signedOut && w.onInvalid != nil {
		w.onInvalid()
	}
}

// poll reports whether the loop ended because the server replaced the session.
func (w *SessionWatcher) poll(ctx context.Context, gen uint64) bool {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
		if w.client.auth.Generation() != gen {
			// Signed out or signed in again since this run started.
			return false
		}
		switch w.check(ctx) {
		case checkStop:
			return false
		case checkSignedOut:
			return true
		}
	}
}

type checkResult int

const (
	checkContinue checkResult = iota
	checkStop
	checkSignedOut
)

func (w *SessionWatcher) check(ctx context.Context) checkResult {
	_, err := w.client.SessionStatus(ctx)
	switch {
	case err == nil:
		return checkContinue
	case IsSessionInvalid(err):
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.signedOut {
			w.client.logger.Info("session replaced by another login")
			return checkSignedOut
		}
		return checkStop
	default:
		if ctx.Err() == nil {
			w.client.logger.Debug("session check failed, keeping session", slog.String("error", err.Error()))
		}
		return checkContinue
	}
}
