package services

import (
	"context"
	"sync"
	"time"

	"github.com/Dosada05/prize-engine/models"
	"github.com/Dosada05/prize-engine/repositories"
)

// fakeDecisionRepo is an in-memory DecisionRepository for service tests.
type fakeDecisionRepo struct {
	mu        sync.Mutex
	decisions map[string]models.ManualDecisionSet // tournamentID -> set
	upsertErr error
}

func newFakeDecisionRepo() *fakeDecisionRepo {
	return &fakeDecisionRepo{decisions: make(map[string]models.ManualDecisionSet)}
}

func (f *fakeDecisionRepo) ListByTournament(_ context.Context, tournamentID string) (models.ManualDecisionSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(models.ManualDecisionSet, len(f.decisions[tournamentID]))
	for k, v := range f.decisions[tournamentID] {
		out[k] = v
	}
	return out, nil
}

func (f *fakeDecisionRepo) Upsert(_ context.Context, tournamentID string, decision models.ManualDecision) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	set, ok := f.decisions[tournamentID]
	if !ok {
		set = make(models.ManualDecisionSet)
		f.decisions[tournamentID] = set
	}
	decision.CreatedAt = time.Now().UTC()
	set[decision.PrizeID] = decision
	return nil
}

func (f *fakeDecisionRepo) Delete(_ context.Context, tournamentID, prizeID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	set := f.decisions[tournamentID]
	if _, ok := set[prizeID]; !ok {
		return repositories.ErrDecisionNotFound
	}
	delete(set, prizeID)
	return nil
}

// fakeVersionRepo is an in-memory VersionRepository with the same
// monotonic-versioning contract as the postgres one.
type fakeVersionRepo struct {
	mu       sync.Mutex
	versions map[string][]models.PublishedVersion
}

func newFakeVersionRepo() *fakeVersionRepo {
	return &fakeVersionRepo{versions: make(map[string][]models.PublishedVersion)}
}

func (f *fakeVersionRepo) LatestVersion(_ context.Context, tournamentID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.versions[tournamentID]), nil
}

func (f *fakeVersionRepo) Create(_ context.Context, v *models.PublishedVersion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	v.Version = len(f.versions[v.TournamentID]) + 1
	v.CommittedAt = time.Now().UTC()
	stored := *v
	stored.Winners = append([]models.Winner(nil), v.Winners...)
	f.versions[v.TournamentID] = append(f.versions[v.TournamentID], stored)
	return nil
}

func (f *fakeVersionRepo) ListByTournament(_ context.Context, tournamentID string) ([]models.PublishedVersion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.PublishedVersion(nil), f.versions[tournamentID]...), nil
}

func (f *fakeVersionRepo) GetByVersion(_ context.Context, tournamentID string, version int) (*models.PublishedVersion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.versions[tournamentID] {
		if v.Version == version {
			out := v
			return &out, nil
		}
	}
	return nil, repositories.ErrVersionNotFound
}
