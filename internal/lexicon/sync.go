package lexicon

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mroparse/internal/config"
	"mroparse/internal/storage"
	"mroparse/internal/util"
)

const syncWatermarkKey = "lexicon.sync_watermark"

// SyncService merges shared-lexicon bundles into the local training file and
// tracks the delta watermark in storage metadata.
type SyncService struct {
	db     *storage.DB
	client *Client
	cfg    config.Config
}

func NewSyncService(db *storage.DB, cfg config.Config) *SyncService {
	return &SyncService{db: db, client: NewClient(cfg), cfg: cfg}
}

// FullSync pulls the entire curated bundle. Returns the number of entries
// merged into the training file.
func (s *SyncService) FullSync(ctx context.Context) (int, error) {
	bundle, err := s.client.GetBundle(ctx)
	if err != nil {
		return 0, err
	}
	merged, err := s.applyBundle(bundle)
	if err != nil {
		return 0, err
	}
	_ = s.db.SetMetadata("lexicon.last_full_sync", time.Now().UTC().Format(time.RFC3339))
	return merged, nil
}

// DeltaSync pulls entries added since the stored watermark. A missing
// watermark falls back to a full pull.
func (s *SyncService) DeltaSync(ctx context.Context) (int, error) {
	watermark, err := s.db.GetMetadata(syncWatermarkKey)
	if err != nil {
		return 0, err
	}
	if watermark == nil || *watermark == "" {
		return s.FullSync(ctx)
	}

	bundle, err := s.client.GetBundleSince(ctx, *watermark)
	if err != nil {
		return 0, err
	}
	return s.applyBundle(bundle)
}

func (s *SyncService) applyBundle(bundle *RemoteBundle) (int, error) {
	training, err := LoadTraining(s.cfg.TrainingPath)
	if err != nil {
		return 0, err
	}

	merged := mergeBundle(training, bundle)
	if err := SaveTraining(training, s.cfg.TrainingPath); err != nil {
		return 0, err
	}

	watermark := bundle.GeneratedAt
	if watermark == "" {
		watermark = time.Now().UTC().Format(time.RFC3339)
	}
	if err := s.db.SetMetadata(syncWatermarkKey, watermark); err != nil {
		return 0, err
	}
	fmt.Printf("lexicon-sync: merged=%d watermark=%s\n", merged, watermark)
	return merged, nil
}

// mergeBundle folds a remote bundle into local training data. Remote entries
// win on normalization conflicts; the bundle is team-curated.
func mergeBundle(t *TrainingData, bundle *RemoteBundle) int {
	merged := 0

	have := map[string]struct{}{}
	for _, name := range t.KnownManufacturers {
		have[name] = struct{}{}
	}
	for _, name := range bundle.Manufacturers {
		n := util.NormalizeSpaces(strings.ToUpper(name))
		if n == "" {
			continue
		}
		if _, ok := have[n]; !ok {
			have[n] = struct{}{}
			t.KnownManufacturers = append(t.KnownManufacturers, n)
			merged++
		}
	}

	for variant, canonical := range bundle.Normalization {
		v := util.NormalizeSpaces(strings.ToUpper(variant))
		c := util.NormalizeSpaces(strings.ToUpper(canonical))
		if v == "" || c == "" || v == c {
			continue
		}
		if t.MfgNormalization[v] != c {
			t.MfgNormalization[v] = c
			merged++
		}
	}

	for role, names := range bundle.Aliases {
		for _, name := range names {
			if name == "" || containsFold(t.ColumnAliases[role], name) {
				continue
			}
			t.ColumnAliases[role] = append(t.ColumnAliases[role], name)
			merged++
		}
	}

	for _, name := range bundle.Distributors {
		n := util.NormalizeSpaces(strings.ToUpper(name))
		if n == "" || containsFold(t.Distributors, n) {
			continue
		}
		t.Distributors = append(t.Distributors, n)
		merged++
	}

	return merged
}
