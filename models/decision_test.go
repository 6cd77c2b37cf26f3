package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManualDecisionSetMerge(t *testing.T) {
	t.Parallel()

	base := ManualDecisionSet{
		"prize-a": {PrizeID: "prize-a", PlayerID: "p1", Reason: DecisionManualOverride},
	}

	merged := base.Merge(
		ManualDecision{PrizeID: "prize-a", PlayerID: "p2", Reason: DecisionManualOverride},
		ManualDecision{PrizeID: "prize-b", PlayerID: "p3", Reason: DecisionSuggestedResolution},
	)

	// Last write per prize wins; the input set stays untouched.
	assert.Equal(t, "p2", merged["prize-a"].PlayerID)
	assert.Equal(t, "p3", merged["prize-b"].PlayerID)
	assert.Equal(t, "p1", base["prize-a"].PlayerID)
	assert.Len(t, base, 1)

	t.Run("invalid reason defaults to manual override", func(t *testing.T) {
		t.Parallel()
		out := ManualDecisionSet{}.Merge(ManualDecision{PrizeID: "prize-c", PlayerID: "p1", Reason: "whatever"})
		assert.Equal(t, DecisionManualOverride, out["prize-c"].Reason)
	})

	t.Run("blank ids are ignored", func(t *testing.T) {
		t.Parallel()
		out := ManualDecisionSet{}.Merge(
			ManualDecision{PrizeID: "", PlayerID: "p1"},
			ManualDecision{PrizeID: "prize-d", PlayerID: ""},
		)
		assert.Empty(t, out)
	})
}

func TestManualDecisionSetWithout(t *testing.T) {
	t.Parallel()

	set := ManualDecisionSet{
		"prize-a": {PrizeID: "prize-a", PlayerID: "p1"},
		"prize-b": {PrizeID: "prize-b", PlayerID: "p2"},
	}
	out := set.Without("prize-a")

	assert.Len(t, out, 1)
	assert.Contains(t, out, "prize-b")
	assert.Contains(t, set, "prize-a", "original set is not mutated")
}

func TestManualDecisionSetSorted(t *testing.T) {
	t.Parallel()

	set := ManualDecisionSet{
		"prize-c": {PrizeID: "prize-c", PlayerID: "p3"},
		"prize-a": {PrizeID: "prize-a", PlayerID: "p1"},
		"prize-b": {PrizeID: "prize-b", PlayerID: "p2"},
	}
	sorted := set.Sorted()

	require.Len(t, sorted, 3)
	assert.Equal(t, "prize-a", sorted[0].PrizeID)
	assert.Equal(t, "prize-b", sorted[1].PrizeID)
	assert.Equal(t, "prize-c", sorted[2].PrizeID)
}
