// Package syncer implements the offline-first synchronization protocol: the
// bundle builder drains a local store's dirty rows into a JSON bundle, the
// inbox carries bundles from users to the administrator as single files, and
// the merge processor upserts bundle contents into the master store by
// natural key.
package syncer

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fieldscope/vztrack/internal/store"
	"github.com/fieldscope/vztrack/pkg/types"
)

// Build packages the local store's current dirty set into a sync bundle and
// returns the exact row ids it captured, for MarkSynced after the deposit.
// Returns ErrNothingToSync when no dirty rows exist; the caller must not
// write an empty bundle to the inbox.
func Build(local *store.LocalStore, username string) (*types.SyncBundle, store.SyncedIDs, error) {
	dirty, err := local.ListDirty()
	if err != nil {
		return nil, store.SyncedIDs{}, fmt.Errorf("reading dirty set: %w", err)
	}
	if dirty.Empty() {
		return nil, store.SyncedIDs{}, types.ErrNothingToSync
	}

	bundle := &types.SyncBundle{
		Username:      username,
		SyncTimestamp: time.Now().UTC().Format(time.RFC3339),
		Projects:      dirty.Projects,
		KPISnapshots:  dirty.KPISnapshots,
		Dependencies:  dirty.Dependencies,
		Contacts:      dirty.Contacts,
	}
	return bundle, dirty.IDs(), nil
}

// Sync runs the full user-side flow: build the bundle, deposit it in the
// inbox, then mark the captured rows synced. The ordering is a contract:
// rows flip to synced only after the bundle file is durably written, so a
// failed deposit leaves every row dirty for the next attempt.
func Sync(local *store.LocalStore, inbox *Inbox, username string, logger *zap.Logger) (types.BundleCounts, string, error) {
	bundle, ids, err := Build(local, username)
	if err != nil {
		return types.BundleCounts{}, "", err
	}
	counts := bundle.Counts()

	filename, err := inbox.Deposit(bundle)
	if err != nil {
		return counts, "", fmt.Errorf("depositing bundle: %w", err)
	}

	if err := local.MarkSynced(ids); err != nil {
		// The bundle is already in the inbox; the rows stay dirty and the
		// next sync re-sends them. Merge upserts make the repeat harmless.
		logger.Warn("bundle deposited but rows not marked synced",
			zap.String("file", filename), zap.Error(err))
		return counts, filename, fmt.Errorf("marking rows synced: %w", err)
	}

	logger.Info("sync bundle deposited",
		zap.String("username", username),
		zap.String("file", filename),
		zap.Int("items", counts.Total()))
	return counts, filename, nil
}
