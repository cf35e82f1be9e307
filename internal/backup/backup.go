// Package backup snapshots the whole document store into compressed
// files on disk and restores from them.
package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/THEREALVANHEL/coalbot/internal/clock"
	coalerr "github.com/THEREALVANHEL/coalbot/pkg/errors"
	"github.com/THEREALVANHEL/coalbot/pkg/logger"
	"github.com/THEREALVANHEL/coalbot/pkg/models"
	"github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"
)

// Snapshotter is the slice of the store the backup manager needs.
type Snapshotter interface {
	Snapshot(ctx context.Context) (*models.Snapshot, error)
	Restore(ctx context.Context, snap *models.Snapshot) error
}

// Manager writes and restores backup archives.
type Manager struct {
	store      Snapshotter
	clock      clock.Clock
	dir        string
	maxBackups int
}

// NewManager creates the backup manager writing into dir.
func NewManager(store Snapshotter, dir string, maxBackups int, clk clock.Clock) *Manager {
	if clk == nil {
		clk = clock.System{}
	}
	return &Manager{store: store, clock: clk, dir: dir, maxBackups: maxBackups}
}

// Run takes one backup of the given type ("hourly", "daily", "manual")
// and prunes old archives past the retention limit.
func (m *Manager) Run(ctx context.Context, backupType string) (*models.BackupMetadata, error) {
	snap, err := m.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(snap)
	if err != nil {
		return nil, coalerr.Wrap(coalerr.KindInternal, err, "snapshot marshal failed")
	}

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return nil, coalerr.External(err, "backup directory unavailable")
	}

	now := m.clock.Now()
	id := fmt.Sprintf("%s_%s", backupType, now.Format("20060102_150405"))
	archivePath := filepath.Join(m.dir, id+".json.gz")

	f, err := os.Create(archivePath)
	if err != nil {
		return nil, coalerr.External(err, "backup file creation failed")
	}
	gz, err := gzip.NewWriterLevel(f, gzip.BestCompression)
	if err != nil {
		f.Close()
		return nil, coalerr.Wrap(coalerr.KindInternal, err, "gzip writer setup failed")
	}
	if _, err := gz.Write(raw); err != nil {
		f.Close()
		return nil, coalerr.External(err, "backup write failed")
	}
	if err := gz.Close(); err != nil {
		f.Close()
		return nil, coalerr.External(err, "backup flush failed")
	}
	if err := f.Close(); err != nil {
		return nil, coalerr.External(err, "backup close failed")
	}

	info, err := os.Stat(archivePath)
	if err != nil {
		return nil, coalerr.External(err, "backup stat failed")
	}

	meta := &models.BackupMetadata{
		BackupID:         id,
		BackupType:       backupType,
		Timestamp:        now.Unix(),
		TotalUsers:       len(snap.Users),
		TotalGuilds:      len(snap.Guilds),
		BackupSize:       info.Size(),
		CompressionRatio: float64(info.Size()) / float64(len(raw)),
	}
	metaRaw, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, coalerr.Wrap(coalerr.KindInternal, err, "metadata marshal failed")
	}
	if err := os.WriteFile(filepath.Join(m.dir, id+"_metadata.json"), metaRaw, 0o644); err != nil {
		return nil, coalerr.External(err, "metadata write failed")
	}

	if err := m.prune(); err != nil {
		logger.Warn("backup pruning failed: "+err.Error(), "Backup")
	}

	logger.Info(fmt.Sprintf("backup %s written, %d users, %d bytes", id, meta.TotalUsers, meta.BackupSize), "Backup")
	return meta, nil
}

// List returns the metadata of every archive on disk, newest first.
func (m *Manager) List() ([]*models.BackupMetadata, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, coalerr.External(err, "backup directory unreadable")
	}

	var metas []*models.BackupMetadata
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), "_metadata.json") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(m.dir, e.Name()))
		if err != nil {
			continue
		}
		var meta models.BackupMetadata
		if err := json.Unmarshal(raw, &meta); err != nil {
			continue
		}
		metas = append(metas, &meta)
	}

	sort.Slice(metas, func(i, j int) bool { return metas[i].Timestamp > metas[j].Timestamp })
	return metas, nil
}

// Restore loads the named archive back into the store, replacing its
// contents.
func (m *Manager) Restore(ctx context.Context, backupID string) error {
	archivePath := filepath.Join(m.dir, backupID+".json.gz")
	f, err := os.Open(archivePath)
	if err != nil {
		if os.IsNotExist(err) {
			return coalerr.NotFound("no backup %q", backupID)
		}
		return coalerr.External(err, "backup open failed")
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return coalerr.External(err, "backup is not a valid archive")
	}
	defer gz.Close()

	var snap models.Snapshot
	if err := json.NewDecoder(gz).Decode(&snap); err != nil {
		return coalerr.External(err, "backup decode failed")
	}

	if err := m.store.Restore(ctx, &snap); err != nil {
		return err
	}
	logger.Info(fmt.Sprintf("restored backup %s, %d users", backupID, len(snap.Users)), "Backup")
	return nil
}

// prune removes the oldest archives beyond the retention limit.
func (m *Manager) prune() error {
	if m.maxBackups <= 0 {
		return nil
	}
	metas, err := m.List()
	if err != nil {
		return err
	}
	for _, meta := range metas[min(len(metas), m.maxBackups):] {
		os.Remove(filepath.Join(m.dir, meta.BackupID+".json.gz"))
		os.Remove(filepath.Join(m.dir, meta.BackupID+"_metadata.json"))
	}
	return nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
