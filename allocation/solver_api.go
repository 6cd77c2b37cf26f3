package allocation

import (
	"context"

	"github.com/Dosada05/prize-engine/models"
)

// SolveParams — входные данные одного запуска. Все данные предзагружены
// вызывающей стороной; солвер ничего не читает из хранилища.
type SolveParams struct {
	TournamentID string
	Players      []*models.Player
	Categories   []*models.Category
	Rules        models.RuleConfig
	Decisions    models.ManualDecisionSet
	DryRun       bool
}

type Solver interface {
	Solve(ctx context.Context, params SolveParams) (*models.AllocationResult, error)

	GetName() string
}
