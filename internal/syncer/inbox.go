package syncer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fieldscope/vztrack/internal/paths"
	"github.com/fieldscope/vztrack/pkg/types"
)

// bundleTimeLayout is the timestamp embedded in bundle filenames. Names lead
// with the username, so the timestamp segment, not the whole name, carries
// the deposit order.
const bundleTimeLayout = "20060102_150405"

// bundleStampPattern extracts the timestamp segment from a bundle filename.
var bundleStampPattern = regexp.MustCompile(`_(\d{8}_\d{6})`)

// Inbox is the shared drop directory where user bundles wait for the
// administrator, plus the archive directory where consumed bundles retire.
// Both sides only ever see complete files: deposits go through a temp-file,
// fsync, hard-link sequence, and consumption ends with a rename into the
// archive.
type Inbox struct {
	dir        string
	archiveDir string
}

// NewInbox returns an inbox rooted at the shared directory. Directories are
// created lazily on first deposit or listing.
func NewInbox(sharedRoot string) *Inbox {
	return &Inbox{
		dir:        paths.InboxDir(sharedRoot),
		archiveDir: paths.ArchiveDir(sharedRoot),
	}
}

// Dir returns the pending-bundle directory.
func (in *Inbox) Dir() string { return in.dir }

// ArchiveDir returns the consumed-bundle directory.
func (in *Inbox) ArchiveDir() string { return in.archiveDir }

// Deposit writes the bundle to the inbox as a single JSON document and
// returns the filename it landed under. The write is atomic: the bundle is
// never observable half-written, so a watcher or processor reading the
// returned name always sees a complete document. If the canonical
// sync_<username>_<timestamp>.json name is taken, a short unique suffix is
// appended rather than overwriting the earlier deposit.
func (in *Inbox) Deposit(bundle *types.SyncBundle) (string, error) {
	if err := bundle.Validate(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(in.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating inbox directory: %w", err)
	}

	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding bundle: %w", err)
	}

	stamp := bundleStamp(bundle.SyncTimestamp)
	name := fmt.Sprintf("sync_%s_%s.json", bundle.Username, stamp)
	for {
		err := writeFileExclusive(filepath.Join(in.dir, name), data)
		if err == nil {
			return name, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", err
		}
		// Another bundle from the same user landed in the same second.
		suffix := strings.Split(uuid.NewString(), "-")[0]
		name = fmt.Sprintf("sync_%s_%s_%s.json", bundle.Username, stamp, suffix)
	}
}

// bundleStamp derives the filename timestamp from the bundle's sync
// timestamp, falling back to the current time when it does not parse.
func bundleStamp(syncTimestamp string) string {
	if ts, err := time.Parse(time.RFC3339, syncTimestamp); err == nil {
		return ts.UTC().Format(bundleTimeLayout)
	}
	return time.Now().UTC().Format(bundleTimeLayout)
}

// ListPending returns the filenames of bundles awaiting merge, oldest first
// by the timestamp segment of the name regardless of which user deposited
// them. Files without a recognizable timestamp order by modification time.
// A missing inbox directory means nothing is pending.
func (in *Inbox) ListPending() ([]string, error) {
	entries, err := os.ReadDir(in.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading inbox: %w", err)
	}

	type pending struct {
		name  string
		stamp string
	}
	var files []pending
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		stamp := ""
		if m := bundleStampPattern.FindStringSubmatch(e.Name()); m != nil {
			stamp = m[1]
		} else if info, err := e.Info(); err == nil {
			stamp = info.ModTime().UTC().Format(bundleTimeLayout)
		}
		files = append(files, pending{name: e.Name(), stamp: stamp})
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].stamp != files[j].stamp {
			return files[i].stamp < files[j].stamp
		}
		return files[i].name < files[j].name
	})

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.name)
	}
	if len(names) == 0 {
		return nil, nil
	}
	return names, nil
}

// Read loads and validates one pending bundle. An unparseable or invalid
// document returns ErrMalformedBundle with the decode detail attached.
func (in *Inbox) Read(name string) (*types.SyncBundle, error) {
	data, err := os.ReadFile(filepath.Join(in.dir, name))
	if err != nil {
		return nil, fmt.Errorf("reading bundle %s: %w", name, err)
	}
	var bundle types.SyncBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrMalformedBundle, name, err)
	}
	if err := bundle.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrMalformedBundle, name)
	}
	return &bundle, nil
}

// Archive moves a consumed bundle out of the inbox. The rename is the sole
// commit point of consumption: until it succeeds the bundle stays pending
// and a later pass will merge it again, which the upsert semantics make
// harmless.
func (in *Inbox) Archive(name string) error {
	if err := os.MkdirAll(in.archiveDir, 0o755); err != nil {
		return fmt.Errorf("creating archive directory: %w", err)
	}
	src := filepath.Join(in.dir, name)
	dst := filepath.Join(in.archiveDir, name)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("archiving bundle %s: %w", name, err)
	}
	return nil
}

// writeFileExclusive writes data to path via a temp file in the same
// directory, fsync, then a hard link to the final name. The link both
// publishes the file atomically and fails with fs.ErrExist instead of
// overwriting when the name is already taken, so concurrent deposits
// racing to the same name cannot clobber each other.
func writeFileExclusive(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".bundle-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing bundle: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	linkErr := os.Link(tmpName, path)
	os.Remove(tmpName)
	if linkErr != nil {
		if errors.Is(linkErr, fs.ErrExist) {
			return fmt.Errorf("bundle name taken: %w", fs.ErrExist)
		}
		return fmt.Errorf("publishing bundle: %w", linkErr)
	}
	return nil
}
