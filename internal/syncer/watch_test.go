package syncer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fieldscope/vztrack/pkg/types"
)

func TestWatcherMergesArrivingBundle(t *testing.T) {
	master := newMasterStore(t)
	inbox := newTestInbox(t)
	watcher := NewWatcher(NewProcessor(master, inbox, nop()), inbox, nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watcher.Run(ctx) }()

	// Give the watcher time to register before the deposit lands.
	time.Sleep(100 * time.Millisecond)

	if _, err := inbox.Deposit(testBundle("jsmith", types.Project{
		Name: "Fiber Install", CCRNFID: "CCR-001", PMID: 1, Status: types.StatusActive,
	})); err != nil {
		t.Fatalf("depositing: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		if _, err := master.GetProjectByNaturalKey("CCR-001"); err == nil {
			break
		}
		select {
		case <-deadline:
			t.Fatal("bundle not merged within deadline")
		case <-time.After(25 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}

func TestWatcherCancelIsNotBlockedBySettlingArrivals(t *testing.T) {
	master := newMasterStore(t)
	inbox := newTestInbox(t)
	watcher := NewWatcher(NewProcessor(master, inbox, nop()), inbox, nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watcher.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)

	// Cancel immediately after an arrival, inside its settle window. The
	// watcher must honor the cancel without waiting the delay out.
	if _, err := inbox.Deposit(testBundle("jsmith")); err != nil {
		t.Fatalf("depositing: %v", err)
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(settleDelay / 2):
		t.Fatal("watcher still running well after cancel")
	}
}
