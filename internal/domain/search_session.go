package domain

import "sync"

type PhaseKind string

const (
	PhaseIdle         PhaseKind = "idle"
	PhaseInitializing PhaseKind = "initializing"
	PhaseSearching    PhaseKind = "searching"
	PhaseFinalizing   PhaseKind = "finalizing"
	PhaseCompleted    PhaseKind = "completed"
	PhaseFailed       PhaseKind = "failed"
)

// Phase is the coordinator's state as a first-class value. LocationIndex is
// meaningful only while Kind is PhaseSearching.
type Phase struct {
	Kind          PhaseKind
	LocationIndex int
}

type Progress struct {
	Step       string
	Percentage int
	IsLoading  bool
}

type StockFilter string

const (
	StockFilterAll StockFilter = "all"
	StockFilterIn  StockFilter = "in-stock"
	StockFilterLow StockFilter = "low-stock"
	StockFilterOut StockFilter = "out-of-stock"
)

func ParseStockFilter(s string) (StockFilter, bool) {
	switch StockFilter(s) {
	case StockFilterAll, StockFilterIn, StockFilterLow, StockFilterOut, "":
		if s == "" {
			return StockFilterAll, true
		}
		return StockFilter(s), true
	}
	return StockFilterAll, false
}

// SearchSession is the aggregate root for one bulk search. It is written by
// exactly one search flow at a time; the mutex exists because progress and
// result views are read over HTTP while the search goroutine is running.
type SearchSession struct {
	mu sync.RWMutex

	keys            []string
	activeLocations []Location

	phase             Phase
	progress          Progress
	outcomes          map[string]*LocationSearchOutcome
	foundKeys         map[string]struct{}
	notFoundKeys      []string
	locationErrors    []string
	selectedLocation  string
	failureMessage    string
	searchesCompleted bool
}

func NewSearchSession(keys []string, activeLocations []Location) *SearchSession {
	return &SearchSession{
		keys:            keys,
		activeLocations: activeLocations,
		phase:           Phase{Kind: PhaseIdle},
		outcomes:        make(map[string]*LocationSearchOutcome, len(activeLocations)),
		foundKeys:       make(map[string]struct{}),
	}
}

func (s *SearchSession) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keys
}

func (s *SearchSession) ActiveLocations() []Location {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeLocations
}

func (s *SearchSession) SetPhase(phase Phase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = phase
}

func (s *SearchSession) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

func (s *SearchSession) SetProgress(step string, percentage int, isLoading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = Progress{Step: step, Percentage: percentage, IsLoading: isLoading}
}

func (s *SearchSession) Progress() Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progress
}

// StoreOutcome records one location's results and folds its found keys into
// the global found set. Keys are tracked in normalized form.
func (s *SearchSession) StoreOutcome(outcome *LocationSearchOutcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes[outcome.LocationID] = outcome
	if outcome.Err != "" {
		s.locationErrors = append(s.locationErrors, outcome.Err)
	}
	for _, r := range outcome.Results {
		if r.IsFound() {
			s.foundKeys[NormalizeKey(r.Key)] = struct{}{}
		}
	}
}

func (s *SearchSession) OutcomeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.outcomes)
}

func (s *SearchSession) LocationErrors() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.locationErrors))
	copy(out, s.locationErrors)
	return out
}

// Finalize computes the global not-found list and picks the default display
// location: the first active location with at least one found result, else
// the first active location.
func (s *SearchSession) Finalize() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notFoundKeys = s.notFoundKeys[:0]
	for _, key := range s.keys {
		if _, ok := s.foundKeys[NormalizeKey(key)]; !ok {
			s.notFoundKeys = append(s.notFoundKeys, key)
		}
	}

	s.selectedLocation = ""
	for _, loc := range s.activeLocations {
		outcome, ok := s.outcomes[loc.ID]
		if !ok {
			continue
		}
		for _, r := range outcome.Results {
			if r.IsFound() {
				s.selectedLocation = loc.ID
				break
			}
		}
		if s.selectedLocation != "" {
			break
		}
	}
	if s.selectedLocation == "" && len(s.activeLocations) > 0 {
		s.selectedLocation = s.activeLocations[0].ID
	}
	s.searchesCompleted = true
}

func (s *SearchSession) Fail(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = Phase{Kind: PhaseFailed}
	s.failureMessage = message
	s.progress = Progress{Step: "Search failed", Percentage: 0, IsLoading: false}
}

func (s *SearchSession) FailureMessage() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.failureMessage
}

func (s *SearchSession) Completed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searchesCompleted
}

func (s *SearchSession) SelectedLocation() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedLocation
}

// SelectLocation switches the displayed outcome without re-searching. It
// fails when the location has no stored outcome.
func (s *SearchSession) SelectLocation(locationID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.outcomes[locationID]; !ok {
		return false
	}
	s.selectedLocation = locationID
	return true
}

// FilteredResults applies the stock filter to the given location's results.
// Non-"all" filters only ever return found results, since not-found entries
// carry no stock level.
func (s *SearchSession) FilteredResults(locationID string, filter StockFilter) []SearchResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	outcome, ok := s.outcomes[locationID]
	if !ok {
		return nil
	}
	if filter == StockFilterAll {
		out := make([]SearchResult, len(outcome.Results))
		copy(out, outcome.Results)
		return out
	}

	var out []SearchResult
	for _, r := range outcome.Results {
		if !r.IsFound() || r.Variant == nil {
			continue
		}
		if StockFilter(r.Variant.StockStatus()) == filter {
			out = append(out, r)
		}
	}
	return out
}

// OutcomeError returns the stored failure reason for a location, empty when
// the location completed cleanly or has no outcome yet.
func (s *SearchSession) OutcomeError(locationID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if outcome, ok := s.outcomes[locationID]; ok {
		return outcome.Err
	}
	return ""
}

func (s *SearchSession) NotFoundKeys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.notFoundKeys))
	copy(out, s.notFoundKeys)
	return out
}

// LowStockFoundCount counts distinct found keys whose variant sits at or
// below the given stock threshold in any location.
func (s *SearchSession) LowStockFoundCount(threshold int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, outcome := range s.outcomes {
		for _, r := range outcome.Results {
			if r.IsFound() && r.Variant != nil && r.Variant.Available <= threshold {
				seen[NormalizeKey(r.Key)] = struct{}{}
			}
		}
	}
	return len(seen)
}

func (s *SearchSession) Stats() SearchStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	found := len(s.foundKeys)
	return SearchStats{
		TotalSearched: len(s.keys),
		Found:         found,
		NotFound:      len(s.keys) - found,
	}
}
