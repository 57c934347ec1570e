// Package assembly implements CellEnsembleRT, a runtime spatiotemporal
// ensemble that schedules feature-unit spikes over continuous time and
// applies pairwise Hebbian plasticity with multiplicative weight decay.
// Units are functional feature keys, not neurons; their lifecycle is purely
// time-driven via Step.
package assembly

import (
	"math"
	"sort"
)

// Spike is one scheduled unit activation.
type Spike struct {
	Time     float64
	Key      string
	Strength float64
}

// PairKey is the canonical (ordered) form of an unordered unit pair, so
// (a,b) and (b,a) address the same weight.
type PairKey struct {
	A, B string
}

// NewPairKey canonicalizes a pair.
func NewPairKey(a, b string) PairKey {
	if a < b {
		return PairKey{A: a, B: b}
	}
	return PairKey{A: b, B: a}
}

// SimilarityOracle supplies unit-to-unit cosine similarity for
// similarity-scaled plasticity. A units.UnitStore satisfies it.
type SimilarityOracle interface {
	Cosine(a, b string) float64
}

// Config carries the plasticity parameters of a runtime ensemble.
type Config struct {
	EtaHebb     float64 // base Hebbian rate
	Decay       float64 // per-step multiplicative weight decay, in (0,1)
	MaxWeight   float64 // Hebbian increments are capped here; decay has no floor
	DefaultStep float64 // dt used when Step is called with dt <= 0
}

// DefaultConfig returns the standard plasticity parameters.
func DefaultConfig() Config {
	return Config{
		EtaHebb:     0.02,
		Decay:       0.999,
		MaxWeight:   1.0,
		DefaultStep: 0.01,
	}
}

// pruneBelow is the magnitude under which a decayed weight is dropped,
// keeping the weight map bounded.
const pruneBelow = 1e-6

// CellEnsembleRT is a time-driven ensemble. Not safe for concurrent use;
// instances are exclusively owned by their driver.
type CellEnsembleRT struct {
	Name        string
	Units       map[string]bool
	ContextTags map[string]bool

	cfg    Config
	oracle SimilarityOracle // optional; nil disables similarity scaling

	// scheduled maps timestamp to the spikes sharing it. Fired spikes are
	// removed, so the schedule is always forward-looking.
	scheduled map[float64][]Spike
	weights   map[PairKey]float64

	now       float64
	lastFired map[string]bool
}

// New creates an ensemble with default plasticity parameters and no
// similarity oracle.
func New(name string) *CellEnsembleRT {
	return NewWithConfig(name, DefaultConfig(), nil)
}

// NewWithConfig creates an ensemble with explicit parameters. oracle may be
// nil, in which case Hebbian increments use the flat base rate.
func NewWithConfig(name string, cfg Config, oracle SimilarityOracle) *CellEnsembleRT {
	if cfg.DefaultStep <= 0 {
		cfg.DefaultStep = 0.01
	}
	return &CellEnsembleRT{
		Name:        name,
		Units:       make(map[string]bool),
		ContextTags: make(map[string]bool),
		cfg:         cfg,
		oracle:      oracle,
		scheduled:   make(map[float64][]Spike),
		weights:     make(map[PairKey]float64),
		lastFired:   make(map[string]bool),
	}
}

// Now returns the ensemble's current time.
func (c *CellEnsembleRT) Now() float64 { return c.now }

// Config returns the plasticity parameters.
func (c *CellEnsembleRT) Config() Config { return c.cfg }

// LastFired returns the units fired by the most recent Step.
func (c *CellEnsembleRT) LastFired() map[string]bool { return c.lastFired }

// AddUnits adds unit keys to the membership set.
func (c *CellEnsembleRT) AddUnits(keys ...string) {
	for _, k := range keys {
		c.Units[k] = true
	}
}

// ScheduleSpike schedules a unit activation at absolute time t. Strength is
// clamped to [0,1]; unseen keys auto-register into the membership set.
// Spikes at identical timestamps coexist.
func (c *CellEnsembleRT) ScheduleSpike(t float64, key string, strength float64) {
	c.Units[key] = true
	if strength < 0 {
		strength = 0
	} else if strength > 1 {
		strength = 1
	}
	c.scheduled[t] = append(c.scheduled[t], Spike{Time: t, Key: key, Strength: strength})
}

// SchedulePattern bulk-schedules spikes.
func (c *CellEnsembleRT) SchedulePattern(spikes []Spike) {
	for _, s := range spikes {
		c.ScheduleSpike(s.Time, s.Key, s.Strength)
	}
}

// hebbIncrement returns the similarity-scaled Hebbian increment for a pair.
// With an oracle, the base rate is scaled by 0.5 + 0.5*max(0, cosine); the
// scale spans [0.5, 1.0] so dissimilar pairs still learn at half rate.
func (c *CellEnsembleRT) hebbIncrement(a, b string) float64 {
	if c.oracle == nil {
		return c.cfg.EtaHebb
	}
	sim := math.Max(0.0, c.oracle.Cosine(a, b))
	return c.cfg.EtaHebb * (0.5 + 0.5*sim)
}

// Step advances time by dt (the configured default when dt <= 0) and runs
// one plasticity cycle:
//
//  1. Fire every spike with timestamp in (t0, t0+dt]. A spike scheduled
//     exactly at t0 does not fire; it belonged to the step that ended at t0.
//     Fired spikes leave the schedule (single-fire).
//  2. Multiply every weight by the decay factor, pruning entries whose
//     magnitude drops below 1e-6.
//  3. For every unordered pair of units that co-fired this step, add a
//     Hebbian increment, capping at MaxWeight.
//
// Returns the set of unit keys fired this step.
func (c *CellEnsembleRT) Step(dt float64) map[string]bool {
	if dt <= 0 {
		dt = c.cfg.DefaultStep
	}
	t0, t1 := c.now, c.now+dt

	fired := make(map[string]bool)
	for ts, events := range c.scheduled {
		if t0 < ts && ts <= t1 {
			for _, s := range events {
				fired[s.Key] = true
			}
			delete(c.scheduled, ts)
		}
	}

	for k, w := range c.weights {
		w *= c.cfg.Decay
		if math.Abs(w) < pruneBelow {
			delete(c.weights, k)
			continue
		}
		c.weights[k] = w
	}

	if len(fired) > 0 {
		keys := make([]string, 0, len(fired))
		for k := range fired {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for i := 0; i < len(keys); i++ {
			for j := i + 1; j < len(keys); j++ {
				pk := NewPairKey(keys[i], keys[j])
				w := c.weights[pk] + c.hebbIncrement(keys[i], keys[j])
				c.weights[pk] = math.Min(w, c.cfg.MaxWeight)
			}
		}
	}

	c.lastFired = fired
	c.now = t1
	return fired
}

// Weight returns the pairwise weight for two units (order-insensitive),
// zero when absent.
func (c *CellEnsembleRT) Weight(a, b string) float64 {
	return c.weights[NewPairKey(a, b)]
}

// WeightCount returns the number of live pairwise weights.
func (c *CellEnsembleRT) WeightCount() int { return len(c.weights) }

// OverlapWith returns the Jaccard index of the two membership sets. Two
// empty sets overlap fully (1.0), not zero.
func (c *CellEnsembleRT) OverlapWith(other *CellEnsembleRT) float64 {
	if len(c.Units) == 0 && len(other.Units) == 0 {
		return 1.0
	}
	inter, union := 0, len(other.Units)
	for k := range c.Units {
		if other.Units[k] {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0.0
	}
	return float64(inter) / float64(union)
}

// Similarity blends membership overlap with weight-topology likeness:
// 0.6*overlap + 0.4*max(0, cosine of the weight vectors over the union of
// pair keys). With no weight keys on either side it falls back to pure
// overlap; a zero-norm weight vector contributes 0 topology.
func (c *CellEnsembleRT) Similarity(other *CellEnsembleRT) float64 {
	m := c.OverlapWith(other)

	keys := make(map[PairKey]bool, len(c.weights)+len(other.weights))
	for k := range c.weights {
		keys[k] = true
	}
	for k := range other.weights {
		keys[k] = true
	}
	if len(keys) == 0 {
		return m
	}

	var dot, a2, b2 float64
	for k := range keys {
		wa := c.weights[k]
		wb := other.weights[k]
		dot += wa * wb
		a2 += wa * wa
		b2 += wb * wb
	}
	topo := 0.0
	if a2 > 0 && b2 > 0 {
		topo = dot / (math.Sqrt(a2) * math.Sqrt(b2))
	}
	return 0.6*m + 0.4*math.Max(0.0, topo)
}

// ToVector sums the strengths of still-scheduled spikes with timestamps in
// [t0, t1] inclusive, per unit, in unitOrder (or the lexicographically
// sorted membership when unitOrder is nil). Because Step removes fired
// spikes, this is a forward-looking schedule preview, not a history of past
// activity.
func (c *CellEnsembleRT) ToVector(t0, t1 float64, unitOrder []string) []float64 {
	order := unitOrder
	if order == nil {
		order = make([]string, 0, len(c.Units))
		for k := range c.Units {
			order = append(order, k)
		}
		sort.Strings(order)
	}

	index := make(map[string]int, len(order))
	for i, k := range order {
		index[k] = i
	}

	vec := make([]float64, len(order))
	for ts, events := range c.scheduled {
		if ts < t0 || ts > t1 {
			continue
		}
		for _, s := range events {
			if i, ok := index[s.Key]; ok {
				vec[i] += s.Strength
			}
		}
	}
	return vec
}
