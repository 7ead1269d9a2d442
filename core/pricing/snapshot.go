package pricing

import (
	"time"

	"cleanquote/core/determinism"
	"cleanquote/internal/errors"
)

// Source indicates where a snapshot's content came from
type Source int

const (
	SourceDefault   Source = iota // Built-in defaults
	SourceSeed                    // Bootstrap seed file
	SourcePersisted               // Loaded from a persister
	SourceAdmin                   // Administrator write
)

// String returns the source name
func (s Source) String() string {
	switch s {
	case SourceDefault:
		return "default"
	case SourceSeed:
		return "seed"
	case SourcePersisted:
		return "persisted"
	case SourceAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// State is the persisted form of a snapshot
type State struct {
	Version   uint64        `json:"version"`
	UpdatedAt time.Time     `json:"updated_at"`
	Settings  Settings      `json:"settings"`
	Cities    []CityPricing `json:"cities"`
}

// Snapshot is an immutable, versioned view of the pricing configuration and
// city list. Quotes read one snapshot for their whole computation. Values
// returned by accessors share memory with the snapshot and must not be
// modified.
type Snapshot struct {
	version   uint64
	hash      determinism.ContentHash
	createdAt time.Time
	source    Source

	settings  Settings
	cities    []CityPricing
	cityIndex map[string]int
}

// hashedContent is what the content hash covers: configuration, not metadata
type hashedContent struct {
	Settings Settings      `json:"settings"`
	Cities   []CityPricing `json:"cities"`
}

func newSnapshot(version uint64, settings Settings, cities []CityPricing, createdAt time.Time, source Source) (*Snapshot, error) {
	snap := &Snapshot{
		version:   version,
		createdAt: createdAt.UTC(),
		source:    source,
		settings:  settings,
		cities:    cities,
		cityIndex: make(map[string]int, len(cities)),
	}
	for i, city := range cities {
		snap.cityIndex[NormalizeCityName(city.CityName)] = i
	}

	hash, err := determinism.HashJSON(hashedContent{Settings: settings, Cities: cities})
	if err != nil {
		return nil, errors.Internal("hash pricing snapshot", err)
	}
	snap.hash = hash
	return snap, nil
}

// Version is monotonically increasing across publishes
func (s *Snapshot) Version() uint64 {
	return s.version
}

// ContentHash identifies the configuration content
func (s *Snapshot) ContentHash() determinism.ContentHash {
	return s.hash
}

// CreatedAt is when the snapshot was published
func (s *Snapshot) CreatedAt() time.Time {
	return s.createdAt
}

// Source is where the snapshot's content came from
func (s *Snapshot) Source() Source {
	return s.source
}

// Settings returns the pricing configuration
func (s *Snapshot) Settings() Settings {
	return s.settings
}

// Cities returns the city list in insertion order
func (s *Snapshot) Cities() []CityPricing {
	return s.cities
}

// City returns the city with the given id
func (s *Snapshot) City(id string) (CityPricing, bool) {
	if i := indexOfCity(s.cities, id); i >= 0 {
		return s.cities[i], true
	}
	return CityPricing{}, false
}

// LookupCity matches a city by name, ignoring case and surrounding space
func (s *Snapshot) LookupCity(name string) (CityPricing, bool) {
	i, ok := s.cityIndex[NormalizeCityName(name)]
	if !ok {
		return CityPricing{}, false
	}
	return s.cities[i], true
}

// State returns a persistable deep copy
func (s *Snapshot) State() *State {
	return &State{
		Version:   s.version,
		UpdatedAt: s.createdAt,
		Settings:  s.settings.Clone(),
		Cities:    cloneCities(s.cities),
	}
}

// Verify recomputes the content hash
func (s *Snapshot) Verify() bool {
	hash, err := determinism.HashJSON(hashedContent{Settings: s.settings, Cities: s.cities})
	return err == nil && hash == s.hash
}
