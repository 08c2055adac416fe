// Package engine wires the state store, simulation, save pipeline, and
// persistent storage into a single game session.
package engine

import (
	"fmt"
	"time"

	"github.com/nathoo/idlecore/catalog"
	"github.com/nathoo/idlecore/engine/save"
	"github.com/nathoo/idlecore/engine/sim"
	"github.com/nathoo/idlecore/engine/state"
	"github.com/nathoo/idlecore/storage"
	"github.com/nathoo/idlecore/types"
)

// SaveKey is the storage key the session persists under.
const SaveKey = "player"

// MaxOfflineMs caps how much away time one load will simulate.
const MaxOfflineMs = 24 * 60 * 60 * 1000

// significantGainsMs is the minimum away time worth reporting to the
// player on load.
const significantGainsMs = 10 * 1000

// Engine is one player session.
type Engine struct {
	Store   *state.Store
	Catalog *catalog.Catalog
	RNG     *RNG

	store storage.Store
	now   func() int64
}

// New creates a session over cat, persisting through st.
func New(cat *catalog.Catalog, st storage.Store, seed int64) *Engine {
	return &Engine{
		Store:   state.NewStore(cat),
		Catalog: cat,
		RNG:     NewRNG(seed),
		store:   st,
		now:     func() int64 { return time.Now().UnixMilli() },
	}
}

// SetClock overrides the wall clock. Tests use this to make offline
// catch-up deterministic.
func (e *Engine) SetClock(now func() int64) {
	e.now = now
}

// OfflineGains summarizes what happened while the player was away.
type OfflineGains struct {
	AwayMs      float64
	Capped      bool
	Completions int
	XPBySkill   map[types.SkillID]float64
	Items       map[string]int
	// ActionStopped is set when the action ran out of inputs during
	// catch-up and was cleared.
	ActionStopped bool
}

// Significant reports whether the gains are worth a welcome-back screen.
func (g *OfflineGains) Significant() bool {
	return g != nil && g.AwayMs >= significantGainsMs && g.Completions > 0
}

// LoadResult describes what Load found and did.
type LoadResult struct {
	// Found is false when no save existed and a fresh session started.
	Found  bool
	Report save.Report
	Gains  *OfflineGains
}

// Load restores the session from storage. A missing save starts fresh.
// A save that fails validation is discarded rather than half-loaded.
// Away time since lastSaveTime is replayed through the same simulation
// as a live tick, capped at MaxOfflineMs.
func (e *Engine) Load() (LoadResult, error) {
	raw, err := e.store.Get(SaveKey)
	if err == storage.ErrNotFound {
		e.Store.Reset()
		e.Store.MarkTicked(e.now())
		return LoadResult{}, nil
	}
	if err != nil {
		return LoadResult{}, fmt.Errorf("load save: %w", err)
	}

	tree, err := save.Decode(raw)
	if err != nil {
		e.Store.Reset()
		e.Store.MarkTicked(e.now())
		return LoadResult{}, fmt.Errorf("decode save: %w", err)
	}

	nowMs := e.now()
	report := save.Sanitize(tree, e.Catalog, nowMs)
	if !report.Valid {
		e.Store.Reset()
		e.Store.MarkTicked(nowMs)
		return LoadResult{Found: true, Report: report}, fmt.Errorf("save failed validation")
	}

	e.Store.LoadFrom(report.Data.ToPlayerState())

	gains := e.catchUp(report.Data.LastSaveTime, nowMs)
	e.Store.MarkTicked(nowMs)

	return LoadResult{Found: true, Report: report, Gains: gains}, nil
}

// catchUp replays the time between savedAt and nowMs through the
// regular tick path.
func (e *Engine) catchUp(savedAt, nowMs int64) *OfflineGains {
	away := float64(nowMs - savedAt)
	if away <= 0 {
		return nil
	}

	gains := &OfflineGains{
		AwayMs:    away,
		XPBySkill: map[types.SkillID]float64{},
		Items:     map[string]int{},
	}
	simulated := away
	if simulated > MaxOfflineMs {
		simulated = MaxOfflineMs
		gains.Capped = true
	}

	if e.Store.CurrentAction() == nil {
		return gains
	}

	result := e.Store.Tick(simulated, e.RNG)
	gains.Completions = result.Completions
	for id, xp := range result.XPBySkill {
		gains.XPBySkill[id] += xp
	}
	for id, qty := range result.ItemsGained {
		gains.Items[id] += qty
	}
	gains.ActionStopped = result.StopReason == sim.StopOutOfMaterials
	return gains
}

// Save snapshots the session, stamps timestamp and checksum, and writes
// it to storage.
func (e *Engine) Save() error {
	raw, err := e.Export()
	if err != nil {
		return err
	}
	if err := e.store.Set(SaveKey, raw); err != nil {
		return fmt.Errorf("write save: %w", err)
	}
	return nil
}

// Tick advances the live session by deltaMs.
func (e *Engine) Tick(deltaMs float64) sim.Result {
	result := e.Store.Tick(deltaMs, e.RNG)
	e.Store.MarkTicked(e.now())
	return result
}

// Export encodes the current session as a checksummed save blob.
func (e *Engine) Export() ([]byte, error) {
	sd := save.FromPlayerState(e.Store.Snapshot(), e.now())
	sd.Checksum = save.Checksum(sd)
	raw, err := save.Encode(sd)
	if err != nil {
		return nil, fmt.Errorf("encode save: %w", err)
	}
	return raw, nil
}

// Import replaces the session with an externally supplied save blob.
// The blob goes through the full validation pipeline and gets a fresh
// checksum on the way in; the imported one is never trusted. No offline
// catch-up runs for imports.
func (e *Engine) Import(raw []byte) (save.Report, error) {
	tree, err := save.Decode(raw)
	if err != nil {
		return save.Report{}, fmt.Errorf("decode import: %w", err)
	}
	report := save.Sanitize(tree, e.Catalog, e.now())
	if !report.Valid {
		return report, fmt.Errorf("import failed validation")
	}
	e.Store.LoadFrom(report.Data.ToPlayerState())
	e.Store.MarkTicked(e.now())
	if err := e.Save(); err != nil {
		return report, err
	}
	return report, nil
}

// Reset wipes the session and the stored save.
func (e *Engine) Reset() error {
	e.Store.Reset()
	e.Store.MarkTicked(e.now())
	if err := e.store.Remove(SaveKey); err != nil {
		return fmt.Errorf("remove save: %w", err)
	}
	return nil
}
