package ui

import (
	"sync"
	"time"

	"fyne.io/fyne/v2"
)

// tickerScheduler drives the frame timer. The ticker goroutine only waits;
// every tick runs on the fyne goroutine and the next one is not delivered
// until it returns, so a slow inference stalls playback instead of queueing.
type tickerScheduler struct {
	mu       sync.Mutex
	stopChan chan struct{}
}

func newTickerScheduler() *tickerScheduler {
	return &tickerScheduler{}
}

// Start replaces any running timer. fn may call Stop or Start itself.
func (s *tickerScheduler) Start(interval time.Duration, fn func()) {
	s.Stop()

	stop := make(chan struct{})
	s.mu.Lock()
	s.stopChan = stop
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			if stopped(stop) {
				return
			}

			select {
			case <-ticker.C:
				// Stop runs on the fyne goroutine, so checking here drops a
				// tick that was queued before it.
				fyne.DoAndWait(func() {
					if !stopped(stop) {
						fn()
					}
				})
			case <-stop:
				return
			}
		}
	}()
}

func (s *tickerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopChan != nil {
		close(s.stopChan)
		s.stopChan = nil
	}
}

func stopped(stop <-chan struct{}) bool {
	select {
	case <-stop:
		return true
	default:
		return false
	}
}
