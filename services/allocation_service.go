package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/prize-engine/allocation"
	"github.com/Dosada05/prize-engine/models"
	"github.com/Dosada05/prize-engine/repositories"
	"github.com/Dosada05/prize-engine/storage"
)

// AllocateRequest — предзагруженные входные данные одного запуска.
// Сервис ничего не дочитывает из CRUD-хранилища турнира: ростер и каталог
// приходят от вызывающей стороны.
type AllocateRequest struct {
	TournamentID string                  `json:"tournament_id"`
	Players      []*models.Player        `json:"players"`
	Categories   []*models.Category      `json:"categories"`
	Rules        models.RuleConfig       `json:"rule_config"`
	Overrides    []models.ManualDecision `json:"manual_overrides,omitempty"`
}

// CommitResult wraps the final run with its assigned version.
type CommitResult struct {
	Result           *models.AllocationResult `json:"result"`
	Version          int                      `json:"version"`
	AllocationsCount int                      `json:"allocations_count"`
}

type AllocationService interface {
	Preview(ctx context.Context, req AllocateRequest) (*models.AllocationResult, error)
	Commit(ctx context.Context, req AllocateRequest) (*CommitResult, error)
	ApplyOverride(ctx context.Context, tournamentID string, decision models.ManualDecision) error
	RemoveOverride(ctx context.Context, tournamentID, prizeID string) error
	AcceptSuggestion(ctx context.Context, tournamentID, conflictID string) (*models.ManualDecision, error)
	AcceptAllSuggestions(ctx context.Context, tournamentID string) (int, error)
	ListVersions(ctx context.Context, tournamentID string) ([]models.PublishedVersion, error)
	GetVersion(ctx context.Context, tournamentID string, version int) (*models.PublishedVersion, error)
	LatestVersion(ctx context.Context, tournamentID string) (*models.PublishedVersion, error)
}

// previewStamp remembers what the last preview produced, so that commit can
// refuse to run against anything else. Kept per tournament, in memory: a
// restart simply forces a fresh preview.
type previewStamp struct {
	overridesFingerprint string
	conflictCount        int
	winnersHash          string
	conflicts            []models.Conflict
	ordered              []allocation.RankedPrize
}

type allocationService struct {
	solver       allocation.Solver
	decisionRepo repositories.DecisionRepository
	versionRepo  repositories.VersionRepository
	uploader     storage.FileUploader // optional; nil disables snapshot publishing
	hub          *allocation.Hub      // optional
	logger       *slog.Logger

	mu       sync.Mutex
	locks    map[string]*sync.Mutex
	previews map[string]*previewStamp
}

func NewAllocationService(
	solver allocation.Solver,
	decisionRepo repositories.DecisionRepository,
	versionRepo repositories.VersionRepository,
	uploader storage.FileUploader,
	hub *allocation.Hub,
	logger *slog.Logger,
) AllocationService {
	return &allocationService{
		solver:       solver,
		decisionRepo: decisionRepo,
		versionRepo:  versionRepo,
		uploader:     uploader,
		hub:          hub,
		logger:       logger,
		locks:        make(map[string]*sync.Mutex),
		previews:     make(map[string]*previewStamp),
	}
}

// lockFor serializes preview/commit per tournament: the staleness check
// compares against the immediately preceding preview, so overlapping calls
// for one tournament must not race on the stamp.
func (s *allocationService) lockFor(tournamentID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[tournamentID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[tournamentID] = l
	}
	return l
}

func (s *allocationService) Preview(ctx context.Context, req AllocateRequest) (*models.AllocationResult, error) {
	if req.TournamentID == "" {
		return nil, ErrTournamentIDRequired
	}
	lock := s.lockFor(req.TournamentID)
	lock.Lock()
	defer lock.Unlock()

	decisions, err := s.prepareDecisions(ctx, req)
	if err != nil {
		return nil, err
	}

	result, err := s.solver.Solve(ctx, allocation.SolveParams{
		TournamentID: req.TournamentID,
		Players:      req.Players,
		Categories:   req.Categories,
		Rules:        req.Rules,
		Decisions:    decisions,
		DryRun:       true,
	})
	if err != nil {
		return nil, fmt.Errorf("solver failed for tournament %s: %w", req.TournamentID, err)
	}

	s.previews[req.TournamentID] = &previewStamp{
		overridesFingerprint: decisionsFingerprint(decisions),
		conflictCount:        len(result.Conflicts),
		winnersHash:          winnersHash(result.Winners),
		conflicts:            result.Conflicts,
		ordered:              allocation.OrderPrizes(req.Categories, req.Rules.Normalize()),
	}

	s.logger.InfoContext(ctx, "allocation preview computed",
		slog.String("tournament_id", req.TournamentID),
		slog.Int("winners", len(result.Winners)),
		slog.Int("conflicts", len(result.Conflicts)),
		slog.Int("unfilled", len(result.Unfilled)),
	)
	s.broadcast(req.TournamentID, allocation.EventPreviewComputed, result.Meta)

	return result, nil
}

func (s *allocationService) Commit(ctx context.Context, req AllocateRequest) (*CommitResult, error) {
	if req.TournamentID == "" {
		return nil, ErrTournamentIDRequired
	}
	lock := s.lockFor(req.TournamentID)
	lock.Lock()
	defer lock.Unlock()

	// Commit never persists override payloads: pins the last preview has
	// not seen make the commit stale, and a rejected commit must leave
	// stored decisions and versions untouched.
	stored, err := s.decisionRepo.ListByTournament(ctx, req.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load manual decisions for tournament %s: %w", req.TournamentID, err)
	}
	decisions := stored.Merge(req.Overrides...)

	stamp, ok := s.previews[req.TournamentID]
	if !ok {
		return nil, ErrPreviewRequired
	}
	if stamp.overridesFingerprint != decisionsFingerprint(decisions) {
		return nil, ErrStaleCommit
	}

	result, err := s.solver.Solve(ctx, allocation.SolveParams{
		TournamentID: req.TournamentID,
		Players:      req.Players,
		Categories:   req.Categories,
		Rules:        req.Rules,
		Decisions:    decisions,
		DryRun:       false,
	})
	if err != nil {
		return nil, fmt.Errorf("solver failed for tournament %s: %w", req.TournamentID, err)
	}

	if len(result.Conflicts) > 0 {
		return nil, ErrUnresolvedConflicts
	}
	if result.HasCriticalCoverage() {
		return nil, ErrCriticalCoverage
	}
	// Staleness guard: the committed run must reproduce the last preview
	// exactly. Any drift means the preview was computed on different data.
	if len(result.Conflicts) != stamp.conflictCount || winnersHash(result.Winners) != stamp.winnersHash {
		return nil, ErrStaleCommit
	}

	version := &models.PublishedVersion{
		TournamentID:     req.TournamentID,
		Winners:          result.Winners,
		AllocationsCount: len(result.Winners),
	}
	if err := s.versionRepo.Create(ctx, version); err != nil {
		return nil, fmt.Errorf("failed to record published version for tournament %s: %w", req.TournamentID, err)
	}

	// Committed is terminal for this preview cycle: the next cycle targets
	// the next version and starts from a fresh preview.
	delete(s.previews, req.TournamentID)

	s.logger.InfoContext(ctx, "allocation committed",
		slog.String("tournament_id", req.TournamentID),
		slog.Int("version", version.Version),
		slog.Int("allocations", version.AllocationsCount),
	)

	commit := &CommitResult{
		Result:           result,
		Version:          version.Version,
		AllocationsCount: version.AllocationsCount,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.publishSnapshot(gctx, req.TournamentID, version, result)
		return nil
	})
	g.Go(func() error {
		s.broadcast(req.TournamentID, allocation.EventCommitted, commit)
		return nil
	})
	_ = g.Wait()

	return commit, nil
}

func (s *allocationService) ApplyOverride(ctx context.Context, tournamentID string, decision models.ManualDecision) error {
	if tournamentID == "" {
		return ErrTournamentIDRequired
	}
	if decision.PrizeID == "" {
		return ErrPrizeIDRequired
	}
	if decision.PlayerID == "" {
		return ErrPlayerIDRequired
	}
	if !decision.Reason.Valid() {
		decision.Reason = models.DecisionManualOverride
	}
	if err := s.decisionRepo.Upsert(ctx, tournamentID, decision); err != nil {
		return err
	}
	s.broadcast(tournamentID, allocation.EventOverrideApplied, decision)
	return nil
}

func (s *allocationService) RemoveOverride(ctx context.Context, tournamentID, prizeID string) error {
	if tournamentID == "" {
		return ErrTournamentIDRequired
	}
	if prizeID == "" {
		return ErrPrizeIDRequired
	}
	return s.decisionRepo.Delete(ctx, tournamentID, prizeID)
}

func (s *allocationService) AcceptSuggestion(ctx context.Context, tournamentID, conflictID string) (*models.ManualDecision, error) {
	if tournamentID == "" {
		return nil, ErrTournamentIDRequired
	}
	lock := s.lockFor(tournamentID)
	lock.Lock()
	defer lock.Unlock()

	stamp, ok := s.previews[tournamentID]
	if !ok {
		return nil, ErrPreviewRequired
	}
	for _, c := range stamp.conflicts {
		if c.ID != conflictID {
			continue
		}
		dec, hasSuggestion := allocation.AcceptSuggestion(c, time.Now().UTC())
		if !hasSuggestion {
			return nil, ErrConflictNoSuggestion
		}
		if err := s.decisionRepo.Upsert(ctx, tournamentID, dec); err != nil {
			return nil, err
		}
		s.broadcast(tournamentID, allocation.EventConflictAccepted, dec)
		return &dec, nil
	}
	return nil, ErrConflictNotFound
}

func (s *allocationService) AcceptAllSuggestions(ctx context.Context, tournamentID string) (int, error) {
	if tournamentID == "" {
		return 0, ErrTournamentIDRequired
	}
	lock := s.lockFor(tournamentID)
	lock.Lock()
	defer lock.Unlock()

	stamp, ok := s.previews[tournamentID]
	if !ok {
		return 0, ErrPreviewRequired
	}

	decisions := allocation.AcceptAllSuggestions(stamp.conflicts, stamp.ordered, time.Now().UTC())
	for _, dec := range decisions {
		if err := s.decisionRepo.Upsert(ctx, tournamentID, dec); err != nil {
			return 0, fmt.Errorf("failed to persist accepted suggestion (prize: %s): %w", dec.PrizeID, err)
		}
		s.broadcast(tournamentID, allocation.EventConflictAccepted, dec)
	}
	return len(decisions), nil
}

func (s *allocationService) ListVersions(ctx context.Context, tournamentID string) ([]models.PublishedVersion, error) {
	if tournamentID == "" {
		return nil, ErrTournamentIDRequired
	}
	return s.versionRepo.ListByTournament(ctx, tournamentID)
}

func (s *allocationService) GetVersion(ctx context.Context, tournamentID string, version int) (*models.PublishedVersion, error) {
	if tournamentID == "" {
		return nil, ErrTournamentIDRequired
	}
	v, err := s.versionRepo.GetByVersion(ctx, tournamentID, version)
	if err != nil {
		if errors.Is(err, repositories.ErrVersionNotFound) {
			return nil, ErrVersionNotFound
		}
		return nil, err
	}
	return v, nil
}

func (s *allocationService) LatestVersion(ctx context.Context, tournamentID string) (*models.PublishedVersion, error) {
	if tournamentID == "" {
		return nil, ErrTournamentIDRequired
	}
	latest, err := s.versionRepo.LatestVersion(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if latest == 0 {
		return nil, ErrVersionNotFound
	}
	return s.GetVersion(ctx, tournamentID, latest)
}

// prepareDecisions merges request overrides on top of the stored decisions
// and persists the new pins, so they survive subsequent preview re-runs.
func (s *allocationService) prepareDecisions(ctx context.Context, req AllocateRequest) (models.ManualDecisionSet, error) {
	stored, err := s.decisionRepo.ListByTournament(ctx, req.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load manual decisions for tournament %s: %w", req.TournamentID, err)
	}
	if len(req.Overrides) == 0 {
		return stored, nil
	}
	merged := stored.Merge(req.Overrides...)
	for _, o := range req.Overrides {
		dec, ok := merged[o.PrizeID]
		if !ok {
			continue
		}
		if err := s.decisionRepo.Upsert(ctx, req.TournamentID, dec); err != nil {
			return nil, fmt.Errorf("failed to persist override (prize: %s): %w", o.PrizeID, err)
		}
	}
	return merged, nil
}

func (s *allocationService) broadcast(tournamentID, eventType string, payload interface{}) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToRoom("tournament_"+tournamentID, eventType, payload)
}

// publishSnapshot uploads the committed result as a JSON document.
// Best-effort: the version row is already durable, a failed upload is only
// logged.
func (s *allocationService) publishSnapshot(ctx context.Context, tournamentID string, version *models.PublishedVersion, result *models.AllocationResult) {
	if s.uploader == nil {
		return
	}
	snapshot := struct {
		Version     int                      `json:"version"`
		CommittedAt time.Time                `json:"committed_at"`
		Result      *models.AllocationResult `json:"result"`
	}{
		Version:     version.Version,
		CommittedAt: version.CommittedAt,
		Result:      result,
	}
	body, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to marshal allocation snapshot",
			slog.String("tournament_id", tournamentID), slog.Any("error", err))
		return
	}
	key := fmt.Sprintf("allocations/%s/v%d.json", tournamentID, version.Version)
	if _, err := s.uploader.Upload(ctx, key, "application/json", bytes.NewReader(body)); err != nil {
		s.logger.ErrorContext(ctx, "failed to upload allocation snapshot",
			slog.String("tournament_id", tournamentID),
			slog.Int("version", version.Version),
			slog.Any("error", err))
		return
	}
	s.logger.InfoContext(ctx, "allocation snapshot published",
		slog.String("tournament_id", tournamentID),
		slog.Int("version", version.Version),
		slog.String("key", key))
}

// decisionsFingerprint — детерминированный отпечаток набора решений.
func decisionsFingerprint(set models.ManualDecisionSet) string {
	sorted := set.Sorted()
	var b bytes.Buffer
	for _, d := range sorted {
		b.WriteString(d.PrizeID)
		b.WriteByte('=')
		b.WriteString(d.PlayerID)
		b.WriteByte(':')
		b.WriteString(string(d.Reason))
		b.WriteByte(';')
	}
	sum := sha256.Sum256(b.Bytes())
	return hex.EncodeToString(sum[:])
}

// winnersHash hashes the winners set independent of assignment order.
func winnersHash(winners []models.Winner) string {
	pairs := make([]string, len(winners))
	for i, w := range winners {
		pairs[i] = w.PrizeID + "=" + w.PlayerID
	}
	sort.Strings(pairs)
	var b bytes.Buffer
	for _, p := range pairs {
		b.WriteString(p)
		b.WriteByte(';')
	}
	sum := sha256.Sum256(b.Bytes())
	return hex.EncodeToString(sum[:])
}
