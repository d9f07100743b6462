// ABOUTME: Tests for stage and phase transition rules
// ABOUTME: Locks in permissive stage moves and client irreversibility for seller leads
package pipeline

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/immo/models"
)

func TestMoveStageIsPermissive(t *testing.T) {
	for _, from := range models.BuyerStages {
		for _, to := range models.BuyerStages {
			got, err := MoveStage(from, to)
			require.NoError(t, err, "%s -> %s", from, to)
			assert.Equal(t, to, got)
		}
	}

	got, err := MoveStage(models.StagePurchased, models.StageLead)
	require.NoError(t, err)
	assert.Equal(t, models.StageLead, got, "backward jumps are allowed for stages")
}

func TestMoveStageRejectsUnknownTarget(t *testing.T) {
	got, err := MoveStage(models.StageOffre, "SIGNED")
	assert.ErrorIs(t, err, models.ErrInvalidStage)
	assert.Equal(t, models.StageOffre, got)
}

func TestDecidePhaseTable(t *testing.T) {
	tests := []struct {
		from, to models.SellerPhase
		want     Decision
	}{
		{"", models.PhaseProspect, Commit},
		{"", models.PhaseProspectQualifie, Commit},
		{"", models.PhaseClient, RequireMandat},
		{"", models.PhaseApresVente, Commit},
		{models.PhaseProspect, models.PhaseApresVente, Commit},
		{models.PhaseProspectQualifie, models.PhaseProspect, Commit},
		{models.PhaseProspectQualifie, models.PhaseClient, RequireMandat},
		{models.PhaseApresVente, models.PhaseClient, Reject},
		{models.PhaseClient, models.PhaseClient, Commit},
		{models.PhaseClient, models.PhaseApresVente, Commit},
		{models.PhaseClient, models.PhaseProspect, Reject},
		{models.PhaseClient, models.PhaseProspectQualifie, Reject},
		{models.PhaseApresVente, models.PhaseProspect, Reject},
		{models.PhaseApresVente, models.PhaseApresVente, Commit},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			got, err := DecidePhase(tt.from, tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecidePhaseRejectsUnknownPhases(t *testing.T) {
	_, err := DecidePhase(models.PhaseProspect, "LOST")
	assert.ErrorIs(t, err, models.ErrInvalidPhase)

	_, err = DecidePhase("LOST", models.PhaseProspect)
	assert.ErrorIs(t, err, models.ErrInvalidPhase)
}

// apply mirrors how a caller uses the decision, confirming every mandat.
func apply(current, target models.SellerPhase) models.SellerPhase {
	d, err := DecidePhase(current, target)
	if err != nil || d == Reject {
		return current
	}
	return target
}

func TestClientPhaseIsNeverDemoted(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	targets := append([]models.SellerPhase{}, models.SellerPhases...)

	for run := 0; run < 500; run++ {
		phase := models.SellerPhase("")
		reachedClient := false
		for step := 0; step < 40; step++ {
			phase = apply(phase, targets[rng.Intn(len(targets))])
			if phase.Index() >= models.PhaseClient.Index() {
				reachedClient = true
			}
			if reachedClient {
				require.False(t, phase == models.PhaseProspect || phase == models.PhaseProspectQualifie,
					"run %d step %d: lead demoted to %s", run, step, phase)
			}
		}
	}
}

func TestCanDemote(t *testing.T) {
	assert.True(t, CanDemote(""))
	assert.True(t, CanDemote(models.PhaseProspectQualifie))
	assert.False(t, CanDemote(models.PhaseClient))
	assert.False(t, CanDemote(models.PhaseApresVente))
}

func TestDefaultStages(t *testing.T) {
	n := 0
	stages := DefaultStages(func() string { n++; return "s" + strconv.Itoa(n) })
	require.Len(t, stages, 15)

	buyer := StagesFor(stages, models.PipelineBuyer)
	require.Len(t, buyer, 7)
	assert.Equal(t, "New Lead", buyer[0].Name)
	assert.Equal(t, "Lost", buyer[6].Name)

	seller := StagesFor(stages, models.PipelineSeller)
	require.Len(t, seller, 8)
	assert.Equal(t, "Valuation Request", seller[0].Name)
	assert.Equal(t, "Mandate Signed", seller[2].Name)

	ids := map[string]bool{}
	for _, s := range stages {
		ids[s.ID] = true
	}
	assert.Len(t, ids, 15)
}

func TestStagesForSortsByOrder(t *testing.T) {
	stages := []models.PipelineStage{
		{Name: "c", Order: 2, PipelineType: models.PipelineBuyer},
		{Name: "x", Order: 0, PipelineType: models.PipelineSeller},
		{Name: "a", Order: 0, PipelineType: models.PipelineBuyer},
		{Name: "b", Order: 1, PipelineType: models.PipelineBuyer},
	}

	got := StagesFor(stages, models.PipelineBuyer)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{got[0].Name, got[1].Name, got[2].Name})
}
