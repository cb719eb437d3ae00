// Package contentstore loads, validates, and serves the grammar pack and
// scenario documents (spec §4.1). The Store is process-global and
// read-only after Load returns; concurrent reads need no locking.
package contentstore

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ilyannn/bgvoicecoach/internal/apperr"
	"github.com/ilyannn/bgvoicecoach/internal/config"
)

// Store is an immutable in-memory index of grammar items and scenarios.
type Store struct {
	items     map[string]GrammarItem
	scenarios []Scenario
	triggers  map[string][]string // trigger tag -> ordered item ids
	version   string
}

// Load reads grammar.json and scenarios.json from dir, validates them, and
// returns an immutable Store. It checks item-id uniqueness, contrast-note
// L1 keys, drill answers and blank markers, and scenario grammar ids; any
// malformed document or failed check is fatal. The error tags the grammar
// detector emits are not checked here; the detector drops any correction
// whose tag names no loaded item.
func Load(dir string) (*Store, error) {
	grammarPath := filepath.Join(dir, "grammar.json")
	scenarioPath := filepath.Join(dir, "scenarios.json")

	grammarBytes, err := os.ReadFile(grammarPath)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrContentLoad, fmt.Errorf("read %s: %w", grammarPath, err))
	}
	scenarioBytes, err := os.ReadFile(scenarioPath)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrContentLoad, fmt.Errorf("read %s: %w", scenarioPath, err))
	}

	var items []GrammarItem
	if err := json.Unmarshal(grammarBytes, &items); err != nil {
		return nil, apperr.Wrap(apperr.ErrContentLoad, fmt.Errorf("parse %s: %w", grammarPath, err))
	}
	var scenarios []Scenario
	if err := json.Unmarshal(scenarioBytes, &scenarios); err != nil {
		return nil, apperr.Wrap(apperr.ErrContentLoad, fmt.Errorf("parse %s: %w", scenarioPath, err))
	}

	s, err := build(items, scenarios)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrContentLoad, err)
	}

	sum := sha256.Sum256(append(append([]byte{}, grammarBytes...), scenarioBytes...))
	s.version = hex.EncodeToString(sum[:8])
	return s, nil
}

func build(items []GrammarItem, scenarios []Scenario) (*Store, error) {
	itemMap := make(map[string]GrammarItem, len(items))
	for _, it := range items {
		if it.ID == "" {
			return nil, fmt.Errorf("grammar item with empty id")
		}
		if _, dup := itemMap[it.ID]; dup {
			return nil, fmt.Errorf("duplicate grammar item id %q", it.ID)
		}
		for l1 := range it.ContrastNote {
			if !isSupportedL1(l1) {
				return nil, fmt.Errorf("item %q: contrast note for unsupported L1 %q", it.ID, l1)
			}
		}
		for _, d := range it.Drills {
			if d.Answer == "" {
				return nil, fmt.Errorf("item %q: drill with empty answer", it.ID)
			}
			if (d.Kind == DrillFill || d.Kind == DrillReorder) && !strings.Contains(d.Prompt, "___") && !strings.Contains(d.Prompt, "[") {
				return nil, fmt.Errorf("item %q: %s drill prompt has no blank marker", it.ID, d.Kind)
			}
		}
		itemMap[it.ID] = it
	}

	triggers := make(map[string][]string)
	for _, it := range items {
		for _, tag := range it.Triggers {
			triggers[tag] = append(triggers[tag], it.ID)
		}
	}

	for _, sc := range scenarios {
		for _, id := range sc.Grammar.Primary {
			if _, ok := itemMap[id]; !ok {
				return nil, fmt.Errorf("scenario %q: primary grammar id %q not found", sc.ID, id)
			}
		}
		for _, id := range sc.Grammar.Secondary {
			if _, ok := itemMap[id]; !ok {
				return nil, fmt.Errorf("scenario %q: secondary grammar id %q not found", sc.ID, id)
			}
		}
	}

	return &Store{items: itemMap, scenarios: scenarios, triggers: triggers}, nil
}

func isSupportedL1(code string) bool {
	for _, s := range config.SupportedL1 {
		if s == code {
			return true
		}
	}
	return false
}

// Version returns a stable hash of the loaded content bytes, used as the
// content-store-version component of the coach cache fingerprint.
func (s *Store) Version() string { return s.version }

// GetItem returns the grammar item for id, or ok=false if unknown.
func (s *Store) GetItem(id string) (GrammarItem, bool) {
	it, ok := s.items[id]
	return it, ok
}

// GetDrills returns the drills for a grammar item, or nil if unknown.
func (s *Store) GetDrills(id string) []Drill {
	it, ok := s.items[id]
	if !ok {
		return nil
	}
	return it.Drills
}

// ListScenarios returns summaries in load order.
func (s *Store) ListScenarios() []ScenarioSummary {
	out := make([]ScenarioSummary, 0, len(s.scenarios))
	for _, sc := range s.scenarios {
		out = append(out, ScenarioSummary{
			ID:      sc.ID,
			Title:   sc.Title,
			Level:   sc.Level,
			Primary: sc.Grammar.Primary,
		})
	}
	return out
}

// FindTriggers returns items whose trigger list contains tag, in insertion order.
func (s *Store) FindTriggers(tag string) []GrammarItem {
	ids := s.triggers[tag]
	out := make([]GrammarItem, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.items[id])
	}
	return out
}

// ContrastFor returns the L1-specific contrast note for item, or ("", false)
// if absent.
func (s *Store) ContrastFor(item GrammarItem, l1Code string) (string, bool) {
	note, ok := item.ContrastNote[l1Code]
	return note, ok
}
