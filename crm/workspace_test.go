// ABOUTME: Tests for workspace operations over an in-memory store
// ABOUTME: Covers phase irreversibility, CLIENT promotion atomicity and derived statistics
package crm

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/immo/goals"
	"github.com/harperreed/immo/models"
	"github.com/harperreed/immo/pipeline"
	"github.com/harperreed/immo/scoring"
	"github.com/harperreed/immo/store"
)

type seqIDs struct{ n int }

func (s *seqIDs) NewID() string {
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

// testClock returns a fixed time that tests may move.
type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

// flakyStorage fails saves for one key while failKey is set.
type flakyStorage struct {
	*store.MemoryStorage
	failKey string
}

func (f *flakyStorage) Save(key string, data []byte) error {
	if key == f.failKey {
		return errors.New("write failed")
	}
	return f.MemoryStorage.Save(key, data)
}

type fixture struct {
	ws      *Workspace
	clock   *testClock
	storage *flakyStorage
}

func setup(t *testing.T) fixture {
	t.Helper()
	clock := &testClock{now: time.Date(2026, 4, 15, 10, 0, 0, 0, time.UTC)}
	storage := &flakyStorage{MemoryStorage: store.NewMemoryStorage()}
	ws, err := Open(store.Deps{Storage: storage, IDs: &seqIDs{}, Now: clock.Now})
	require.NoError(t, err)
	return fixture{ws: ws, clock: clock, storage: storage}
}

func addLead(t *testing.T, ws *Workspace, phase models.SellerPhase) models.SellerLead {
	t.Helper()
	lead, err := ws.Store.SellerLeads.Add(models.SellerLead{
		SellerName: "Karim Ben Ali",
		Title:      "Villa Gammarth",
		Phone:      "+216 20 000 000",
		Phase:      phase,
	})
	require.NoError(t, err)
	return lead
}

func TestCommitPhaseMoves(t *testing.T) {
	f := setup(t)
	lead := addLead(t, f.ws, "")

	out, err := f.ws.RequestPhaseTransition(lead.ID, models.PhaseProspectQualifie, nil)
	require.NoError(t, err)
	assert.True(t, out.Applied)
	assert.Equal(t, pipeline.Commit, out.Decision)
	assert.Equal(t, models.PhaseProspectQualifie, out.Lead.Phase)
	assert.Nil(t, out.Mandat)

	out, err = f.ws.RequestPhaseTransition(lead.ID, models.PhaseProspect, nil)
	require.NoError(t, err)
	assert.True(t, out.Applied, "prospects may move back")
	assert.Equal(t, 0, f.ws.Store.Mandats.Len())
}

func TestClientPromotionCreatesOneMandat(t *testing.T) {
	f := setup(t)
	lead := addLead(t, f.ws, models.PhaseProspectQualifie)

	out, err := f.ws.RequestPhaseTransition(lead.ID, models.PhaseClient, AcceptDraft)
	require.NoError(t, err)
	require.True(t, out.Applied)
	require.NotNil(t, out.Mandat)
	assert.Equal(t, pipeline.RequireMandat, out.Decision)

	mandats := f.ws.Store.Mandats.All()
	require.Len(t, mandats, 1)
	m := mandats[0]
	assert.Equal(t, "Mandat pour Villa Gammarth", m.Name)
	assert.Equal(t, models.MandatSimple, m.Type)
	assert.Equal(t, models.StageLead, m.Stage)
	assert.Equal(t, 0.0, m.Value)
	assert.Equal(t, "2026-04-15", m.Date)
	assert.Equal(t, "Créé à partir du lead vendeur: Karim Ben Ali", m.Notes)

	stored, _ := f.ws.Store.SellerLeads.Get(lead.ID)
	assert.Equal(t, models.PhaseClient, stored.Phase)
}

func TestClientPromotionUsesEditedDraft(t *testing.T) {
	f := setup(t)
	lead := addLead(t, f.ws, models.PhaseProspect)

	edit := func(d models.Mandat) (models.Mandat, bool) {
		d.Value = 850000
		d.Type = models.MandatExclusif
		return d, true
	}
	out, err := f.ws.RequestPhaseTransition(lead.ID, models.PhaseClient, edit)
	require.NoError(t, err)
	require.NotNil(t, out.Mandat)
	assert.Equal(t, 850000.0, out.Mandat.Value)
	assert.Equal(t, models.MandatExclusif, out.Mandat.Type)
}

func TestClientPromotionDeclinedChangesNothing(t *testing.T) {
	f := setup(t)
	lead := addLead(t, f.ws, models.PhaseProspectQualifie)

	out, err := f.ws.RequestPhaseTransition(lead.ID, models.PhaseClient, DeclineDraft)
	require.NoError(t, err)
	assert.False(t, out.Applied)
	assert.Equal(t, 0, f.ws.Store.Mandats.Len())

	stored, _ := f.ws.Store.SellerLeads.Get(lead.ID)
	assert.Equal(t, models.PhaseProspectQualifie, stored.Phase)
}

func TestClientPromotionRollsBackWhenPhaseSaveFails(t *testing.T) {
	f := setup(t)
	lead := addLead(t, f.ws, models.PhaseProspect)
	f.storage.failKey = store.KeySellerLeads

	_, err := f.ws.RequestPhaseTransition(lead.ID, models.PhaseClient, AcceptDraft)
	require.Error(t, err)

	assert.Equal(t, 0, f.ws.Store.Mandats.Len())
	stored, _ := f.ws.Store.SellerLeads.Get(lead.ID)
	assert.Equal(t, models.PhaseProspect, stored.Phase)
}

func TestClientPromotionFailsWhenMandatSaveFails(t *testing.T) {
	f := setup(t)
	lead := addLead(t, f.ws, models.PhaseProspect)
	f.storage.failKey = store.KeyMandats

	_, err := f.ws.RequestPhaseTransition(lead.ID, models.PhaseClient, AcceptDraft)
	require.Error(t, err)

	assert.Equal(t, 0, f.ws.Store.Mandats.Len())
	stored, _ := f.ws.Store.SellerLeads.Get(lead.ID)
	assert.Equal(t, models.PhaseProspect, stored.Phase)
}

func TestClientLeadsCannotBeDemoted(t *testing.T) {
	for _, start := range []models.SellerPhase{models.PhaseClient, models.PhaseApresVente} {
		for _, target := range []models.SellerPhase{models.PhaseProspect, models.PhaseProspectQualifie} {
			t.Run(string(start)+"->"+string(target), func(t *testing.T) {
				f := setup(t)
				lead := addLead(t, f.ws, start)

				out, err := f.ws.RequestPhaseTransition(lead.ID, target, AcceptDraft)
				require.NoError(t, err)
				assert.False(t, out.Applied)
				assert.Equal(t, pipeline.Reject, out.Decision)

				stored, _ := f.ws.Store.SellerLeads.Get(lead.ID)
				assert.Equal(t, start, stored.Phase)
			})
		}
	}
}

func TestApresVenteCannotReturnToClient(t *testing.T) {
	f := setup(t)
	lead := addLead(t, f.ws, models.PhaseApresVente)

	out, err := f.ws.RequestPhaseTransition(lead.ID, models.PhaseClient, AcceptDraft)
	require.NoError(t, err)
	assert.False(t, out.Applied)
	assert.Equal(t, 0, f.ws.Store.Mandats.Len())
}

// Random transition sequences never demote a client and create exactly one
// mandat per applied CLIENT promotion.
func TestRandomTransitionsKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	confirms := []MandatConfirmer{AcceptDraft, DeclineDraft, nil}

	for run := 0; run < 200; run++ {
		f := setup(t)
		lead := addLead(t, f.ws, "")
		promotions := 0
		wasClient := false

		for step := 0; step < 25; step++ {
			target := models.SellerPhases[rng.Intn(len(models.SellerPhases))]
			out, err := f.ws.RequestPhaseTransition(lead.ID, target, confirms[rng.Intn(len(confirms))])
			require.NoError(t, err)
			if out.Mandat != nil {
				promotions++
			}

			stored, _ := f.ws.Store.SellerLeads.Get(lead.ID)
			if wasClient && stored.Phase.Index() < models.PhaseClient.Index() {
				t.Fatalf("run %d step %d: lead demoted to %s", run, step, stored.Phase)
			}
			if stored.Phase.Index() >= models.PhaseClient.Index() {
				wasClient = true
			}
			require.Equal(t, promotions, f.ws.Store.Mandats.Len())
		}
		assert.LessOrEqual(t, promotions, 1, "a lead becomes a client at most once")
	}
}

func TestTransitionErrors(t *testing.T) {
	f := setup(t)
	lead := addLead(t, f.ws, "")

	_, err := f.ws.RequestPhaseTransition("missing", models.PhaseClient, nil)
	assert.ErrorIs(t, err, ErrLeadNotFound)

	_, err = f.ws.RequestPhaseTransition(lead.ID, "SIGNED", nil)
	assert.ErrorIs(t, err, models.ErrInvalidPhase)
}

func TestMoveMandatIsPermissive(t *testing.T) {
	f := setup(t)
	m, err := f.ws.Store.Mandats.Add(models.Mandat{Name: "Duplex", Stage: models.StagePurchased})
	require.NoError(t, err)

	moved, err := f.ws.MoveMandat(m.ID, models.StageLead)
	require.NoError(t, err)
	assert.Equal(t, models.StageLead, moved.Stage)

	_, err = f.ws.MoveMandat(m.ID, "SOLD")
	assert.ErrorIs(t, err, models.ErrInvalidStage)
	_, err = f.ws.MoveMandat("missing", models.StageOffre)
	assert.ErrorIs(t, err, ErrMandatNotFound)
}

func TestMoveBuyer(t *testing.T) {
	f := setup(t)
	b, err := f.ws.Store.Buyers.Add(models.Buyer{Name: "Sami", MandatID: "m1"})
	require.NoError(t, err)

	moved, err := f.ws.MoveBuyer(b.ID, models.StageVisites)
	require.NoError(t, err)
	assert.Equal(t, models.StageVisites, moved.Stage)

	_, err = f.ws.MoveBuyer("missing", models.StageVisites)
	assert.ErrorIs(t, err, ErrBuyerNotFound)
}

func TestScoreMandat(t *testing.T) {
	f := setup(t)
	m, err := f.ws.Store.Mandats.Add(models.Mandat{Name: "Villa"})
	require.NoError(t, err)

	scored, err := f.ws.ScoreMandat(m.ID, scoring.Answers{
		Timeframe:        scoring.TimeframeImmediate,
		Motivation:       scoring.MotivationMustSell,
		PriceExpectation: scoring.PriceMarket,
		Exclusivity:      scoring.ExclusivityYes,
	})
	require.NoError(t, err)
	require.NotNil(t, scored.Score)
	assert.Equal(t, 100, scored.Score.TotalScore)
	assert.Equal(t, models.ClassificationChaud, scored.Score.Classification)

	_, err = f.ws.ScoreMandat(m.ID, scoring.Answers{Timeframe: "SOON"})
	assert.ErrorIs(t, err, scoring.ErrInvalidAnswer)
}

func TestDealsFollowTheirPipeline(t *testing.T) {
	f := setup(t)
	deal, err := f.ws.Store.Deals.Add(models.Deal{Title: "Achat Carthage", Type: models.PipelineBuyer})
	require.NoError(t, err)

	sellerFirst, ok := f.ws.Store.Stages.First(models.PipelineSeller)
	require.True(t, ok)
	_, err = f.ws.MoveDeal(deal.ID, sellerFirst.ID)
	assert.ErrorIs(t, err, store.ErrUnknownStage)

	buyerStages := f.ws.Store.Stages.ByType(models.PipelineBuyer)
	moved, err := f.ws.MoveDeal(deal.ID, buyerStages[2].ID)
	require.NoError(t, err)
	assert.Equal(t, buyerStages[2].ID, moved.StageID)

	_, err = f.ws.MoveDeal("missing", buyerStages[0].ID)
	assert.ErrorIs(t, err, ErrDealNotFound)
}

func TestConvertLeadToContactIsOneWay(t *testing.T) {
	f := setup(t)
	lead := addLead(t, f.ws, "")

	contact, updated, err := f.ws.ConvertLeadToContact(lead.ID)
	require.NoError(t, err)
	assert.Equal(t, "Karim", contact.FirstName)
	assert.Equal(t, "Ben Ali", contact.LastName)
	assert.Equal(t, lead.Phone, contact.Phone)
	assert.True(t, updated.ConvertedToContact)
	assert.Equal(t, contact.ID, updated.ContactID)

	again, _, err := f.ws.ConvertLeadToContact(lead.ID)
	require.NoError(t, err)
	assert.Equal(t, contact.ID, again.ID)
	assert.Equal(t, 1, f.ws.Store.Contacts.Len())
}

func TestSplitName(t *testing.T) {
	tests := []struct{ in, first, last string }{
		{"Karim Ben Ali", "Karim", "Ben Ali"},
		{"Leila", "Leila", ""},
		{"  ", "", ""},
	}
	for _, tt := range tests {
		first, last := SplitName(tt.in)
		if first != tt.first || last != tt.last {
			t.Errorf("SplitName(%q) = %q, %q; want %q, %q", tt.in, first, last, tt.first, tt.last)
		}
	}
}

func TestMarkContacted(t *testing.T) {
	f := setup(t)
	lead := addLead(t, f.ws, "")

	updated, err := f.ws.MarkContacted(lead.ID)
	require.NoError(t, err)
	assert.True(t, updated.Contacted)

	_, err = f.ws.MarkContacted("missing")
	assert.ErrorIs(t, err, ErrLeadNotFound)
}

func TestGenerateGoalReplacesCurrent(t *testing.T) {
	f := setup(t)

	_, err := f.ws.GenerateGoal(2026, 60000, models.SeniorityJunior)
	require.NoError(t, err)
	second, err := f.ws.GenerateGoal(2026, 120000, models.SeniorityConfirme)
	require.NoError(t, err)

	current, ok := f.ws.Store.Goals.Current()
	require.True(t, ok)
	assert.Equal(t, second.ID, current.ID)
	assert.Equal(t, 120000.0, current.RevenueTarget)
	assert.Len(t, current.MonthlyGoals, 12)

	_, err = f.ws.GenerateGoal(2026, -1, models.SeniorityJunior)
	assert.ErrorIs(t, err, goals.ErrInvalidRevenue)
}

func TestDashboard(t *testing.T) {
	f := setup(t)
	ws := f.ws

	addLead(t, ws, models.PhaseProspect)
	addLead(t, ws, models.PhaseProspectQualifie)
	addLead(t, ws, models.PhaseClient)
	addLead(t, ws, "")

	sold, err := ws.Store.Mandats.Add(models.Mandat{Name: "A", Value: 30000})
	require.NoError(t, err)
	_, err = ws.Store.Mandats.Add(models.Mandat{Name: "B", Value: 20000})
	require.NoError(t, err)

	f.clock.now = f.clock.now.Add(36 * time.Hour)
	_, err = ws.MoveMandat(sold.ID, models.StagePurchased)
	require.NoError(t, err)

	stats := ws.Dashboard()
	assert.Equal(t, 50000.0, stats.TotalMandatValue)
	assert.Equal(t, DefaultRevenueGoal, stats.RevenueGoal)
	assert.InDelta(t, 50.0, stats.RevenuePercent, 0.001)
	assert.Equal(t, 1, stats.TransactionsYTD)
	assert.Equal(t, 3, stats.Prospects)
	assert.InDelta(t, 200.0/3, stats.ProspectToMandatRate, 0.001)
	assert.InDelta(t, 50.0, stats.MandatToSaleRate, 0.001)
	assert.Equal(t, 2.0, stats.AvgDaysToSell)
	assert.Equal(t, 1, stats.MandatsByStage[models.StageLead])
	assert.Equal(t, 1, stats.MandatsByStage[models.StagePurchased])

	_, err = ws.GenerateGoal(2026, 40000, models.SeniorityDebutant)
	require.NoError(t, err)
	stats = ws.Dashboard()
	assert.Equal(t, 40000.0, stats.RevenueGoal)
	assert.Equal(t, 100.0, stats.RevenuePercent)
}

func TestEmptyDashboard(t *testing.T) {
	stats := setup(t).ws.Dashboard()
	assert.Zero(t, stats.ProspectToMandatRate)
	assert.Zero(t, stats.MandatToSaleRate)
	assert.Zero(t, stats.AvgDaysToSell)
	assert.Zero(t, stats.RevenuePercent)
}

func TestRealizedAndProgress(t *testing.T) {
	f := setup(t)
	ws := f.ws

	_, err := ws.GoalProgress()
	require.ErrorIs(t, err, ErrNoGoal)

	_, err = ws.Store.Contacts.Add(models.Contact{FirstName: "Amel"})
	require.NoError(t, err)
	m, err := ws.Store.Mandats.Add(models.Mandat{Name: "Studio", Value: 5000})
	require.NoError(t, err)
	_, err = ws.MoveMandat(m.ID, models.StagePurchased)
	require.NoError(t, err)

	f.clock.now = time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	_, err = ws.Store.Contacts.Add(models.Contact{FirstName: "Old"})
	require.NoError(t, err)

	months := ws.Realized(2026)
	require.Len(t, months, 12)
	april := months[3]
	assert.Equal(t, 4, april.Month)
	assert.Equal(t, 1, april.Contacts)
	assert.Equal(t, 1, april.NewMandates)
	assert.Equal(t, 1, april.Offers)
	assert.Equal(t, 1, april.AcceptedOffers)
	assert.Equal(t, 1, april.Transactions)
	assert.Equal(t, 5000.0, april.Revenue)
	assert.Zero(t, months[0].Contacts)

	_, err = ws.GenerateGoal(2026, 60000, models.SeniorityJunior)
	require.NoError(t, err)
	kpis, err := ws.GoalProgress()
	require.NoError(t, err)
	require.Len(t, kpis, 4)
	assert.Equal(t, "Transactions", kpis[1].Name)
	assert.Equal(t, 12.0, kpis[1].Target)
	assert.Equal(t, 1.0, kpis[1].Current)
	assert.Equal(t, goals.StatusBehind, kpis[1].Status)
}

func TestOrphanReferences(t *testing.T) {
	f := setup(t)
	ws := f.ws

	c, err := ws.Store.Contacts.Add(models.Contact{FirstName: "Hedi"})
	require.NoError(t, err)
	m, err := ws.Store.Mandats.Add(models.Mandat{Name: "Villa", ContactID: c.ID})
	require.NoError(t, err)
	b, err := ws.Store.Buyers.Add(models.Buyer{Name: "Ines", MandatID: m.ID})
	require.NoError(t, err)
	_, err = ws.Store.Tasks.Add(models.CalendarTask{Title: "Visite", Date: "2026-04-16", MandatID: m.ID})
	require.NoError(t, err)

	assert.Empty(t, ws.OrphanReferences())

	_, err = ws.Store.Contacts.Delete(c.ID)
	require.NoError(t, err)
	_, err = ws.Store.Mandats.Delete(m.ID)
	require.NoError(t, err)

	orphans := ws.OrphanReferences()
	require.Len(t, orphans, 2)
	assert.Equal(t, OrphanReference{Entity: "buyer", ID: b.ID, Field: "mandatId", MissingID: m.ID}, orphans[0])
	assert.Equal(t, "calendarTask", orphans[1].Entity)

	_, ok := ws.Store.Buyers.Get(b.ID)
	assert.True(t, ok, "deletes never cascade")
}
