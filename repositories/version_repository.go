package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/Dosada05/prize-engine/models"
)

var (
	ErrVersionNotFound = errors.New("published version not found")
	ErrVersionConflict = errors.New("version number already taken for this tournament")
)

// VersionRepository хранит зафиксированные версии распределения.
// Версии строго возрастают в рамках турнира и после записи неизменяемы.
type VersionRepository interface {
	LatestVersion(ctx context.Context, tournamentID string) (int, error)
	Create(ctx context.Context, version *models.PublishedVersion) error
	ListByTournament(ctx context.Context, tournamentID string) ([]models.PublishedVersion, error)
	GetByVersion(ctx context.Context, tournamentID string, version int) (*models.PublishedVersion, error)
}

type postgresVersionRepository struct {
	db *sql.DB
}

func NewPostgresVersionRepository(db *sql.DB) VersionRepository {
	return &postgresVersionRepository{db: db}
}

func (r *postgresVersionRepository) LatestVersion(ctx context.Context, tournamentID string) (int, error) {
	query := `SELECT COALESCE(MAX(version), 0) FROM allocation_versions WHERE tournament_id = $1`

	var latest int
	if err := r.db.QueryRowContext(ctx, query, tournamentID).Scan(&latest); err != nil {
		return 0, fmt.Errorf("failed to query latest version for tournament %s: %w", tournamentID, err)
	}
	return latest, nil
}

// Create assigns the next version number and writes the full winners set in
// one insert: either the row with its winners lands, or nothing changes.
// The unique (tournament_id, version) constraint is the last line of
// defense against concurrent commits; the service serializes per
// tournament above this.
func (r *postgresVersionRepository) Create(ctx context.Context, v *models.PublishedVersion) error {
	winnersJSON, err := json.Marshal(v.Winners)
	if err != nil {
		return fmt.Errorf("failed to marshal winners for tournament %s: %w", v.TournamentID, err)
	}

	query := `
		INSERT INTO allocation_versions (tournament_id, version, winners, allocations_count, committed_at)
		VALUES (
			$1,
			(SELECT COALESCE(MAX(version), 0) + 1 FROM allocation_versions WHERE tournament_id = $1),
			$2, $3, NOW()
		)
		RETURNING version, committed_at`

	err = r.db.QueryRowContext(ctx, query, v.TournamentID, winnersJSON, v.AllocationsCount).
		Scan(&v.Version, &v.CommittedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ErrVersionConflict
		}
		return fmt.Errorf("failed to insert published version for tournament %s: %w", v.TournamentID, err)
	}
	return nil
}

func (r *postgresVersionRepository) ListByTournament(ctx context.Context, tournamentID string) ([]models.PublishedVersion, error) {
	query := `
		SELECT tournament_id, version, winners, allocations_count, committed_at
		FROM allocation_versions
		WHERE tournament_id = $1
		ORDER BY version ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions for tournament %s: %w", tournamentID, err)
	}
	defer rows.Close()

	var versions []models.PublishedVersion
	for rows.Next() {
		v, err := scanVersion(rows.Scan)
		if err != nil {
			return nil, err
		}
		versions = append(versions, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("version rows iteration error: %w", err)
	}
	return versions, nil
}

func (r *postgresVersionRepository) GetByVersion(ctx context.Context, tournamentID string, version int) (*models.PublishedVersion, error) {
	query := `
		SELECT tournament_id, version, winners, allocations_count, committed_at
		FROM allocation_versions
		WHERE tournament_id = $1 AND version = $2`

	v, err := scanVersion(r.db.QueryRowContext(ctx, query, tournamentID, version).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVersionNotFound
		}
		return nil, err
	}
	return v, nil
}

func scanVersion(scan func(dest ...interface{}) error) (*models.PublishedVersion, error) {
	var v models.PublishedVersion
	var winnersJSON []byte
	if err := scan(&v.TournamentID, &v.Version, &winnersJSON, &v.AllocationsCount, &v.CommittedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan version row: %w", err)
	}
	if err := json.Unmarshal(winnersJSON, &v.Winners); err != nil {
		return nil, fmt.Errorf("failed to unmarshal winners for tournament %s version %d: %w", v.TournamentID, v.Version, err)
	}
	return &v, nil
}
