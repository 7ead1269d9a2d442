package pricing

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cleanquote/internal/errors"
	"cleanquote/internal/logging"
)

// Persister stores the published pricing state outside the process
type Persister interface {
	// Load returns the last saved state, or nil when nothing was saved yet
	Load(ctx context.Context) (*State, error)

	// Save durably records a state before it is published
	Save(ctx context.Context, state *State) error
}

// PublishHook is called after every successful publish
type PublishHook func(snap *Snapshot, sections []Section)

// Store holds the current pricing snapshot. Readers take the current
// snapshot pointer and never block writers. Writers are serialized per
// section and publish a complete new snapshot atomically, so a reader sees
// either the old or the new configuration, never a mix.
type Store struct {
	current atomic.Pointer[Snapshot]

	sectionLocks map[Section]*sync.Mutex
	commitMu     sync.Mutex

	persister Persister
	hooks     []PublishHook
	now       func() time.Time
	newID     func() string
	logger    *zap.Logger
}

// Option configures a Store
type Option func(*Store)

// WithPersister saves every publish through p
func WithPersister(p Persister) Option {
	return func(s *Store) { s.persister = p }
}

// WithPublishHook registers a callback run after each publish
func WithPublishHook(h PublishHook) Option {
	return func(s *Store) { s.hooks = append(s.hooks, h) }
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides city id generation
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

func newStore(opts []Option) *Store {
	s := &Store{
		sectionLocks: make(map[Section]*sync.Mutex),
		now:          time.Now,
		newID:        uuid.NewString,
		logger:       logging.Named("pricing.store"),
	}
	for _, section := range []Section{SectionPV, SectionStairwell, SectionGlass, SectionMaintenance, SectionCities} {
		s.sectionLocks[section] = &sync.Mutex{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewStore creates a store from bootstrap configuration. Cities without an
// id are assigned one. Nothing is persisted.
func NewStore(settings Settings, cities []CityPricing, source Source, opts ...Option) (*Store, error) {
	s := newStore(opts)
	snap, err := s.bootstrap(settings, cities, 1, source)
	if err != nil {
		return nil, err
	}
	s.current.Store(snap)
	return s, nil
}

// Open restores the last persisted state from p, or bootstraps from the
// given defaults and persists them when p holds nothing yet.
func Open(ctx context.Context, p Persister, settings Settings, cities []CityPricing, source Source, opts ...Option) (*Store, error) {
	s := newStore(append(opts, WithPersister(p)))

	state, err := p.Load(ctx)
	if err != nil {
		return nil, errors.Internal("load persisted pricing state", err)
	}

	var snap *Snapshot
	if state != nil {
		snap, err = s.bootstrap(state.Settings, state.Cities, state.Version, SourcePersisted)
		if err != nil {
			return nil, err
		}
		s.logger.Info("restored pricing state",
			zap.Uint64("version", snap.Version()),
			zap.String("hash", snap.ContentHash().Short()),
			zap.Int("cities", len(snap.Cities())))
	} else {
		snap, err = s.bootstrap(settings, cities, 1, source)
		if err != nil {
			return nil, err
		}
		if err := p.Save(ctx, snap.State()); err != nil {
			return nil, errors.Internal("persist bootstrap pricing state", err)
		}
		s.logger.Info("bootstrapped pricing state",
			zap.String("source", source.String()),
			zap.String("hash", snap.ContentHash().Short()))
	}

	s.current.Store(snap)
	return s, nil
}

func (s *Store) bootstrap(settings Settings, cities []CityPricing, version uint64, source Source) (*Snapshot, error) {
	settings = settings.Clone()
	settings.PV.SortTiers()
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	cities = cloneCities(cities)
	for i := range cities {
		if cities[i].ID == "" {
			cities[i].ID = s.newID()
		}
	}
	if err := ValidateCities(cities); err != nil {
		return nil, err
	}
	return newSnapshot(version, settings, cities, s.now(), source)
}

// Snapshot returns the current snapshot
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// ReplaceSettings replaces all four category sections at once
func (s *Store) ReplaceSettings(ctx context.Context, settings Settings) (*Snapshot, error) {
	settings = settings.Clone()
	settings.PV.SortTiers()
	return s.write(ctx, SettingsSections, func(d *draft) error {
		d.settings.PV = settings.PV
		d.settings.Stairwell = settings.Stairwell
		d.settings.Glass = settings.Glass
		d.settings.Maintenance = settings.Maintenance
		return nil
	})
}

// ReplacePV replaces the PV section
func (s *Store) ReplacePV(ctx context.Context, cfg PVConfig) (*Snapshot, error) {
	tmp := Settings{PV: cfg}.Clone()
	tmp.PV.SortTiers()
	return s.write(ctx, []Section{SectionPV}, func(d *draft) error {
		d.settings.PV = tmp.PV
		return nil
	})
}

// ReplaceStairwell replaces the stairwell section
func (s *Store) ReplaceStairwell(ctx context.Context, cfg StairwellConfig) (*Snapshot, error) {
	return s.write(ctx, []Section{SectionStairwell}, func(d *draft) error {
		d.settings.Stairwell = cfg
		return nil
	})
}

// ReplaceGlass replaces the glass section
func (s *Store) ReplaceGlass(ctx context.Context, cfg GlassConfig) (*Snapshot, error) {
	return s.write(ctx, []Section{SectionGlass}, func(d *draft) error {
		d.settings.Glass = cfg
		return nil
	})
}

// ReplaceMaintenance replaces the maintenance section
func (s *Store) ReplaceMaintenance(ctx context.Context, cfg MaintenanceConfig) (*Snapshot, error) {
	tmp := Settings{Maintenance: cfg}.Clone()
	return s.write(ctx, []Section{SectionMaintenance}, func(d *draft) error {
		d.settings.Maintenance = tmp.Maintenance
		return nil
	})
}

// CreateCity adds a city. An empty id is generated; an existing id or name
// is a conflict.
func (s *Store) CreateCity(ctx context.Context, city CityPricing) (CityPricing, error) {
	if city.ID == "" {
		city.ID = s.newID()
	}
	_, err := s.write(ctx, []Section{SectionCities}, func(d *draft) error {
		if indexOfCity(d.cities, city.ID) >= 0 {
			return errors.Conflict("city id %q already exists", city.ID)
		}
		d.cities = append(d.cities, city)
		return nil
	})
	if err != nil {
		return CityPricing{}, err
	}
	return city, nil
}

// UpdateCity replaces the city with the given id as a whole
func (s *Store) UpdateCity(ctx context.Context, id string, city CityPricing) (CityPricing, error) {
	city.ID = id
	_, err := s.write(ctx, []Section{SectionCities}, func(d *draft) error {
		i := indexOfCity(d.cities, id)
		if i < 0 {
			return errors.NotFound("city", id)
		}
		d.cities[i] = city
		return nil
	})
	if err != nil {
		return CityPricing{}, err
	}
	return city, nil
}

// DeleteCity removes the city with the given id
func (s *Store) DeleteCity(ctx context.Context, id string) error {
	_, err := s.write(ctx, []Section{SectionCities}, func(d *draft) error {
		i := indexOfCity(d.cities, id)
		if i < 0 {
			return errors.NotFound("city", id)
		}
		d.cities = append(d.cities[:i], d.cities[i+1:]...)
		return nil
	})
	return err
}

// Restore replaces settings and cities together as one publish. Cities
// without an id are assigned one.
func (s *Store) Restore(ctx context.Context, settings Settings, cities []CityPricing) (*Snapshot, error) {
	settings = settings.Clone()
	settings.PV.SortTiers()
	cities = cloneCities(cities)
	for i := range cities {
		if cities[i].ID == "" {
			cities[i].ID = s.newID()
		}
	}

	sections := append(slices.Clone(SettingsSections), SectionCities)
	return s.write(ctx, sections, func(d *draft) error {
		d.settings = settings
		d.cities = cities
		return nil
	})
}

// draft is a private, mutable copy of a snapshot's content
type draft struct {
	settings Settings
	cities   []CityPricing
}

func (s *Snapshot) draft() *draft {
	return &draft{settings: s.settings.Clone(), cities: cloneCities(s.cities)}
}

func (d *draft) validate(sections []Section) error {
	for _, section := range sections {
		if section == SectionCities {
			if err := ValidateCities(d.cities); err != nil {
				return err
			}
			continue
		}
		if err := d.settings.validateSection(section); err != nil {
			return err
		}
	}
	return nil
}

// splice copies the given sections from src into d
func (d *draft) splice(src *draft, sections []Section) {
	for _, section := range sections {
		switch section {
		case SectionPV:
			d.settings.PV = src.settings.PV
		case SectionStairwell:
			d.settings.Stairwell = src.settings.Stairwell
		case SectionGlass:
			d.settings.Glass = src.settings.Glass
		case SectionMaintenance:
			d.settings.Maintenance = src.settings.Maintenance
		case SectionCities:
			d.cities = src.cities
		}
	}
}

// write applies mutate to the given sections and publishes the result.
//
// Holding a section's lock pins that section's content, so the mutation and
// validation run against stable data while other sections may be written
// concurrently. The commit step then splices the validated sections into the
// latest snapshot, persists it and publishes it.
func (s *Store) write(ctx context.Context, sections []Section, mutate func(*draft) error) (*Snapshot, error) {
	for _, section := range sections {
		mu := s.sectionLocks[section]
		mu.Lock()
		defer mu.Unlock()
	}

	work := s.current.Load().draft()
	if err := mutate(work); err != nil {
		return nil, err
	}
	if err := work.validate(sections); err != nil {
		s.logger.Warn("rejected pricing write",
			zap.Strings("sections", sectionNames(sections)),
			zap.Error(err))
		return nil, err
	}

	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	latest := s.current.Load()
	next := latest.draft()
	next.splice(work, sections)

	snap, err := newSnapshot(latest.Version()+1, next.settings, next.cities, s.now(), SourceAdmin)
	if err != nil {
		return nil, err
	}
	if s.persister != nil {
		if err := s.persister.Save(ctx, snap.State()); err != nil {
			return nil, errors.Internal("persist pricing state", err)
		}
	}
	s.current.Store(snap)

	s.logger.Info("published pricing snapshot",
		zap.Uint64("version", snap.Version()),
		zap.String("hash", snap.ContentHash().Short()),
		zap.Strings("sections", sectionNames(sections)))
	for _, hook := range s.hooks {
		hook(snap, sections)
	}
	return snap, nil
}

func sectionNames(sections []Section) []string {
	names := make([]string, len(sections))
	for i, section := range sections {
		names[i] = string(section)
	}
	return names
}
