package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"loom/internal/campaign"
	"loom/internal/config"
	"loom/internal/handoff"
	"loom/internal/logging"
	"loom/internal/paths"
	"loom/internal/services"
)

const lockRetryInterval = 50 * time.Millisecond

// Store persists campaign state under a single campaigns root. Envelope and
// metadata writes go through a temp file plus rename so readers never observe
// a partially written document.
type Store struct {
	root        string
	lockTimeout time.Duration
	logger      *slog.Logger
}

// New builds a Store rooted at the configured campaigns directory.
func New(cfg *config.Config, logger *slog.Logger) *Store {
	return &Store{
		root:        cfg.Paths.CampaignsRoot,
		lockTimeout: time.Duration(cfg.Workflow.LockTimeoutSeconds) * time.Second,
		logger:      logging.NewComponentLogger(logger, "store"),
	}
}

// Root returns the campaigns root directory.
func (s *Store) Root() string { return s.root }

// CampaignDir returns the directory for a campaign id.
func (s *Store) CampaignDir(campaignID string) paths.CampaignDir {
	return paths.CampaignDir(filepath.Join(s.root, campaignID))
}

// Bootstrap creates the campaign subtree for the given metadata. It is
// idempotent: existing directories, metadata, and README are left untouched.
func (s *Store) Bootstrap(ctx context.Context, meta campaign.Metadata) (paths.CampaignDir, error) {
	dir := s.CampaignDir(meta.ID)
	if err := os.MkdirAll(dir.HandoffDir(), 0o755); err != nil {
		return "", services.Wrap(services.ErrPersistence, "", "bootstrap", "create handoff directory", err)
	}
	for _, sub := range paths.ContentDirNames {
		if err := os.MkdirAll(dir.Artifact(sub), 0o755); err != nil {
			return "", services.Wrap(services.ErrPersistence, "", "bootstrap", "create "+sub+" directory", err)
		}
	}

	if _, err := os.Stat(dir.Metadata()); errors.Is(err, fs.ErrNotExist) {
		if err := writeJSONAtomic(dir.Metadata(), meta); err != nil {
			return "", err
		}
	} else if err != nil {
		return "", services.Wrap(services.ErrPersistence, "", "bootstrap", "stat metadata", err)
	}

	readmePath := dir.Artifact("README.md")
	if _, err := os.Stat(readmePath); errors.Is(err, fs.ErrNotExist) {
		if err := os.WriteFile(readmePath, []byte(renderReadme(meta)), 0o644); err != nil {
			return "", services.Wrap(services.ErrPersistence, "", "bootstrap", "write README", err)
		}
	} else if err != nil {
		return "", services.Wrap(services.ErrPersistence, "", "bootstrap", "stat README", err)
	}

	s.logger.Info("campaign bootstrapped",
		logging.String(logging.FieldCampaignID, meta.ID),
		logging.String("dir", dir.String()),
	)
	return dir, nil
}

// WriteEnvelope persists an envelope to its canonical pair file. The terminal
// delivery record goes to its dedicated file name.
func (s *Store) WriteEnvelope(ctx context.Context, dir paths.CampaignDir, env *handoff.Envelope) (paths.HandoffFile, error) {
	var file paths.HandoffFile
	if env.Terminal() {
		file = dir.TerminalHandoff()
	} else {
		file = dir.Handoff(env.From, env.To)
	}
	if err := writeJSONAtomic(file.String(), env); err != nil {
		return "", err
	}
	s.logger.Info("envelope written",
		logging.String(logging.FieldCampaignID, env.CampaignID),
		logging.String(logging.FieldStage, string(env.From)),
		logging.String("file", file.String()),
	)
	return file, nil
}

// ReadEnvelope loads the envelope for a stage pair, falling back to the
// legacy alias file name written by earlier tooling.
func (s *Store) ReadEnvelope(ctx context.Context, dir paths.CampaignDir, from, to campaign.Specialist) (*handoff.Envelope, error) {
	candidates := []paths.HandoffFile{
		dir.Handoff(from, to),
		dir.LegacyHandoff(from, to),
	}
	var firstErr error
	for _, file := range candidates {
		env, err := readEnvelopeFile(file)
		if err == nil {
			return env, nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		return nil, err
	}
	return nil, services.Wrap(services.ErrPersistence, "", "read envelope",
		fmt.Sprintf("%s to %s", from, to), firstErr)
}

// ReadTerminalRecord loads the end-of-pipeline record, if present.
func (s *Store) ReadTerminalRecord(ctx context.Context, dir paths.CampaignDir) (*handoff.Envelope, error) {
	env, err := readEnvelopeFile(dir.TerminalHandoff())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrPersistence, "", "read terminal record", "not present", err)
		}
		return nil, err
	}
	return env, nil
}

func readEnvelopeFile(file paths.HandoffFile) (*handoff.Envelope, error) {
	raw, err := os.ReadFile(file.String())
	if err != nil {
		return nil, err
	}
	var env handoff.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, services.Wrap(services.ErrMalformedArtifact, "", "parse envelope", file.String(), err)
	}
	return &env, nil
}

// ReadMetadata loads the typed campaign metadata.
func (s *Store) ReadMetadata(ctx context.Context, dir paths.CampaignDir) (campaign.Metadata, error) {
	raw, err := os.ReadFile(dir.Metadata())
	if err != nil {
		return campaign.Metadata{}, services.Wrap(services.ErrPersistence, "", "read metadata", dir.String(), err)
	}
	var meta campaign.Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return campaign.Metadata{}, services.Wrap(services.ErrMalformedArtifact, "", "parse metadata", dir.Metadata(), err)
	}
	return meta, nil
}

// UpdateMetadata applies fn to the campaign metadata under an exclusive file
// lock and writes the result atomically. JSON keys the typed model does not
// know about survive the rewrite untouched.
func (s *Store) UpdateMetadata(ctx context.Context, dir paths.CampaignDir, fn func(*campaign.Metadata) error) (campaign.Metadata, error) {
	lock := flock.New(dir.Metadata() + ".lock")
	lockCtx := ctx
	if s.lockTimeout > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, s.lockTimeout)
		defer cancel()
	}
	locked, err := lock.TryLockContext(lockCtx, lockRetryInterval)
	if err != nil || !locked {
		return campaign.Metadata{}, services.Wrap(services.ErrPersistence, "", "update metadata", "acquire lock", err)
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			s.logger.Warn("release metadata lock", logging.Error(unlockErr))
		}
	}()

	raw, err := os.ReadFile(dir.Metadata())
	if err != nil {
		return campaign.Metadata{}, services.Wrap(services.ErrPersistence, "", "update metadata", "read", err)
	}

	var extra map[string]json.RawMessage
	if err := json.Unmarshal(raw, &extra); err != nil {
		return campaign.Metadata{}, services.Wrap(services.ErrMalformedArtifact, "", "update metadata", "parse", err)
	}
	// A JSON null decodes into a nil map without error.
	if extra == nil {
		return campaign.Metadata{}, services.Wrap(services.ErrMalformedArtifact, "", "update metadata", "document is not a JSON object", nil)
	}
	var meta campaign.Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return campaign.Metadata{}, services.Wrap(services.ErrMalformedArtifact, "", "update metadata", "decode", err)
	}

	if err := fn(&meta); err != nil {
		return campaign.Metadata{}, err
	}

	merged, err := mergeMetadata(meta, extra)
	if err != nil {
		return campaign.Metadata{}, err
	}
	if err := writeRawAtomic(dir.Metadata(), merged); err != nil {
		return campaign.Metadata{}, err
	}
	return meta, nil
}

// mergeMetadata overlays the typed model's fields onto the raw document so
// unknown keys from other tooling are preserved.
func mergeMetadata(meta campaign.Metadata, extra map[string]json.RawMessage) ([]byte, error) {
	typed, err := json.Marshal(meta)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "", "update metadata", "encode", err)
	}
	var typedKeys map[string]json.RawMessage
	if err := json.Unmarshal(typed, &typedKeys); err != nil {
		return nil, services.Wrap(services.ErrPersistence, "", "update metadata", "re-decode", err)
	}
	for key, value := range typedKeys {
		extra[key] = value
	}
	return json.MarshalIndent(extra, "", "  ")
}

func writeJSONAtomic(path string, doc any) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return services.Wrap(services.ErrPersistence, "", "encode", path, err)
	}
	return writeRawAtomic(path, raw)
}

// writeRawAtomic writes through a sibling temp file and renames it into
// place so a crash mid-write never leaves a truncated document.
func writeRawAtomic(path string, raw []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return services.Wrap(services.ErrPersistence, "", "write", "create temp file", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(append(raw, '\n')); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return services.Wrap(services.ErrPersistence, "", "write", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return services.Wrap(services.ErrPersistence, "", "write", "sync temp file", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return services.Wrap(services.ErrPersistence, "", "write", "close temp file", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return services.Wrap(services.ErrPersistence, "", "write", "chmod temp file", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return services.Wrap(services.ErrPersistence, "", "write", "rename into place", err)
	}
	return nil
}
