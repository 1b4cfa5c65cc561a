package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/daehwan-oh/coverfact/internal/model"
)

// Store persists profile artifacts, one JSON document per
// (insurer, variant). Writes are guarded by the profile lock: the same
// document fingerprint must always yield the same primary column mapping.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the artifact path for an (insurer, variant) pair.
func (s *Store) Path(insurer, variant string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s.json", insurer, variant))
}

// Load reads a persisted profile. A missing artifact returns
// model.ErrNotFound.
func (s *Store) Load(insurer, variant string) (*model.Profile, error) {
	data, err := os.ReadFile(s.Path(insurer, variant))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("profile %s/%s: %w", insurer, variant, model.ErrNotFound)
		}
		return nil, fmt.Errorf("read profile: %w", err)
	}
	var p model.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile %s/%s: %w", insurer, variant, err)
	}
	return &p, nil
}

// Save persists a profile, enforcing the lock invariant first:
//
//   - fingerprints differ → the document is newer, free regeneration;
//   - fingerprints match and primary column maps are identical → the
//     artifact is already current, nothing is written;
//   - fingerprints match but the primary column maps differ → hard lock
//     violation. Byte-identical input producing a different schema means
//     the detection logic regressed, and overwriting would silently poison
//     every downstream consumer.
func (s *Store) Save(p *model.Profile) error {
	existing, err := s.Load(p.Insurer, p.Variant)
	if err == nil {
		if existing.PDFFingerprint != nil && p.PDFFingerprint != nil &&
			model.FingerprintsMatch(*existing.PDFFingerprint, *p.PDFFingerprint) {
			changed := primaryMapDiff(existing, p)
			if len(changed) > 0 {
				return model.NewGateError(model.GateLockViolation,
					fmt.Sprintf("profile %s/%s: same fingerprint, different primary column mapping", p.Insurer, p.Variant),
					changed...)
			}
			// Lock check passed silently; no new artifact needed.
			return nil
		}
	} else if !isNotFound(err) {
		return err
	}

	return s.write(p)
}

func (s *Store) write(p *model.Profile) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create profile dir: %w", err)
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	path := s.Path(p.Insurer, p.Variant)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace profile: %w", err)
	}
	return nil
}

// primaryMapDiff itemizes column-map changes between the primary signatures
// of two profiles, keyed by (page, table).
func primaryMapDiff(prev, next *model.Profile) []string {
	var changed []string
	oldSigs := prev.SummaryTable.PrimarySignatures
	newSigs := next.SummaryTable.PrimarySignatures
	if len(oldSigs) != len(newSigs) {
		return []string{fmt.Sprintf("primary signature count %d -> %d", len(oldSigs), len(newSigs))}
	}
	for i := range oldSigs {
		o, n := oldSigs[i], newSigs[i]
		if o.Page != n.Page || o.TableIndex != n.TableIndex {
			changed = append(changed, fmt.Sprintf(
				"primary signature %d moved: page %d table %d -> page %d table %d",
				i, o.Page, o.TableIndex, n.Page, n.TableIndex))
			continue
		}
		if !o.ColumnMap.Equal(n.ColumnMap) {
			changed = append(changed, fmt.Sprintf(
				"page %d table %d: column map changed (%s -> %s)",
				o.Page, o.TableIndex, describeMap(o.ColumnMap), describeMap(n.ColumnMap)))
		}
	}
	return changed
}

func describeMap(m model.ColumnMap) string {
	f := func(i *int) string {
		if i == nil {
			return "-"
		}
		return fmt.Sprintf("%d", *i)
	}
	return fmt.Sprintf("name=%s amount=%s premium=%s period=%s rownum=%s",
		f(m.CoverageNameIndex), f(m.CoverageAmountIndex), f(m.PremiumIndex), f(m.PeriodIndex), f(m.RowNumberColumnIdx))
}

func isNotFound(err error) bool {
	return errors.Is(err, model.ErrNotFound)
}
