package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/prize-engine/models"
)

var ErrDecisionNotFound = errors.New("manual decision not found")

// DecisionRepository хранит ручные решения органайзера. Решения переживают
// повторные превью: солвер получает актуальный набор при каждом запуске.
type DecisionRepository interface {
	ListByTournament(ctx context.Context, tournamentID string) (models.ManualDecisionSet, error)
	Upsert(ctx context.Context, tournamentID string, decision models.ManualDecision) error
	Delete(ctx context.Context, tournamentID, prizeID string) error
}

type postgresDecisionRepository struct {
	db *sql.DB
}

func NewPostgresDecisionRepository(db *sql.DB) DecisionRepository {
	return &postgresDecisionRepository{db: db}
}

func (r *postgresDecisionRepository) ListByTournament(ctx context.Context, tournamentID string) (models.ManualDecisionSet, error) {
	query := `
		SELECT prize_id, player_id, reason, applied_by, created_at
		FROM allocation_decisions
		WHERE tournament_id = $1`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list decisions for tournament %s: %w", tournamentID, err)
	}
	defer rows.Close()

	set := make(models.ManualDecisionSet)
	for rows.Next() {
		var d models.ManualDecision
		if err := rows.Scan(&d.PrizeID, &d.PlayerID, &d.Reason, &d.AppliedBy, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan decision row: %w", err)
		}
		set[d.PrizeID] = d
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("decision rows iteration error: %w", err)
	}
	return set, nil
}

func (r *postgresDecisionRepository) Upsert(ctx context.Context, tournamentID string, decision models.ManualDecision) error {
	// Последняя запись по призу выигрывает — это и есть контракт merge.
	query := `
		INSERT INTO allocation_decisions (tournament_id, prize_id, player_id, reason, applied_by, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (tournament_id, prize_id)
		DO UPDATE SET player_id = EXCLUDED.player_id, reason = EXCLUDED.reason,
			applied_by = EXCLUDED.applied_by, created_at = NOW()`

	_, err := r.db.ExecContext(ctx, query, tournamentID, decision.PrizeID, decision.PlayerID, decision.Reason, decision.AppliedBy)
	if err != nil {
		return fmt.Errorf("failed to upsert decision (tournament: %s, prize: %s): %w", tournamentID, decision.PrizeID, err)
	}
	return nil
}

func (r *postgresDecisionRepository) Delete(ctx context.Context, tournamentID, prizeID string) error {
	query := `DELETE FROM allocation_decisions WHERE tournament_id = $1 AND prize_id = $2`

	result, err := r.db.ExecContext(ctx, query, tournamentID, prizeID)
	if err != nil {
		return fmt.Errorf("failed to delete decision (tournament: %s, prize: %s): %w", tournamentID, prizeID, err)
	}
	return checkAffectedRows(result, ErrDecisionNotFound)
}
