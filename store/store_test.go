// ABOUTME: Tests for the entity stores over in-memory storage
// ABOUTME: Covers add/update/delete contracts, write-through persistence, snapshots and derived queries
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/immo/models"
)

type seqIDs struct{ n int }

func (s *seqIDs) NewID() string {
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

// stepClock advances one minute on every reading.
func stepClock() Clock {
	t := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

type countingStorage struct {
	*MemoryStorage
	loads   int
	saves   int
	failing bool
}

func (c *countingStorage) Load(key string) ([]byte, bool, error) {
	c.loads++
	return c.MemoryStorage.Load(key)
}

func (c *countingStorage) Save(key string, data []byte) error {
	if c.failing {
		return errors.New("disk full")
	}
	c.saves++
	return c.MemoryStorage.Save(key, data)
}

func setupStore(t *testing.T) (*Store, *countingStorage) {
	t.Helper()
	storage := &countingStorage{MemoryStorage: NewMemoryStorage()}
	s, err := Open(Deps{Storage: storage, IDs: &seqIDs{}, Now: stepClock()})
	require.NoError(t, err)
	return s, storage
}

func TestAddAssignsIdentityAndTimestamps(t *testing.T) {
	s, _ := setupStore(t)

	c, err := s.Contacts.Add(models.Contact{FirstName: "Amira", LastName: "Trabelsi", Email: "amira@example.tn"})
	require.NoError(t, err)

	assert.NotEmpty(t, c.ID)
	assert.False(t, c.CreatedAt.IsZero())
	assert.Equal(t, c.CreatedAt, c.UpdatedAt)

	got, ok := s.Contacts.Get(c.ID)
	require.True(t, ok)
	assert.Equal(t, c, got)
}

func TestUpdateMergesAndTouches(t *testing.T) {
	s, _ := setupStore(t)
	c, err := s.Contacts.Add(models.Contact{FirstName: "Amira", Phone: "+216 20 000 000"})
	require.NoError(t, err)

	email := "amira@example.tn"
	updated, found, err := s.Contacts.Update(c.ID, models.ContactPatch{Email: &email})
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, email, updated.Email)
	assert.Equal(t, "+216 20 000 000", updated.Phone)
	assert.Equal(t, c.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(c.UpdatedAt))
}

func TestEmptyUpdateTwiceOnlyChangesUpdatedAt(t *testing.T) {
	s, _ := setupStore(t)
	m, err := s.Mandats.Add(models.Mandat{Name: "Duplex La Marsa", Value: 380000, Date: "2026-03-01"})
	require.NoError(t, err)

	first, found, err := s.Mandats.Update(m.ID, models.MandatPatch{})
	require.NoError(t, err)
	require.True(t, found)
	second, _, err := s.Mandats.Update(m.ID, models.MandatPatch{})
	require.NoError(t, err)

	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
	second.UpdatedAt = m.UpdatedAt
	assert.Equal(t, m, second)
}

func TestUpdateAndDeleteMissingAreNoops(t *testing.T) {
	s, storage := setupStore(t)
	savesBefore := storage.saves

	name := "ghost"
	_, found, err := s.Contacts.Update("missing", models.ContactPatch{FirstName: &name})
	require.NoError(t, err)
	assert.False(t, found)

	deleted, err := s.Contacts.Delete("missing")
	require.NoError(t, err)
	assert.False(t, deleted)

	assert.Equal(t, savesBefore, storage.saves)
}

func TestDeleteTwiceIsIdempotent(t *testing.T) {
	s, _ := setupStore(t)
	c, err := s.Contacts.Add(models.Contact{FirstName: "Sami"})
	require.NoError(t, err)

	deleted, err := s.Contacts.Delete(c.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.Contacts.Delete(c.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Equal(t, 0, s.Contacts.Len())
}

func TestDeleteDoesNotCascade(t *testing.T) {
	s, _ := setupStore(t)
	c, err := s.Contacts.Add(models.Contact{FirstName: "Sami"})
	require.NoError(t, err)
	m, err := s.Mandats.Add(models.Mandat{Name: "Villa", ContactID: c.ID})
	require.NoError(t, err)

	_, err = s.Contacts.Delete(c.ID)
	require.NoError(t, err)

	got, ok := s.Mandats.Get(m.ID)
	require.True(t, ok)
	assert.Equal(t, c.ID, got.ContactID)
}

func TestWriteThroughAndReadOnlyAtOpen(t *testing.T) {
	storage := &countingStorage{MemoryStorage: NewMemoryStorage()}
	s, err := Open(Deps{Storage: storage, IDs: &seqIDs{}, Now: stepClock()})
	require.NoError(t, err)
	loads := storage.loads

	c, err := s.Contacts.Add(models.Contact{FirstName: "Nour"})
	require.NoError(t, err)
	_, _ = s.Contacts.Get(c.ID)
	_ = s.Contacts.Search("nour")
	assert.Equal(t, loads, storage.loads, "stores must not read storage after open")

	raw, ok, err := storage.MemoryStorage.Load(KeyContacts)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, SchemaVersion, SnapshotVersion(raw))

	reopened, err := Open(Deps{Storage: storage.MemoryStorage})
	require.NoError(t, err)
	got, ok := reopened.Contacts.Get(c.ID)
	require.True(t, ok)
	assert.Equal(t, "Nour", got.FirstName)
	assert.True(t, c.CreatedAt.Equal(got.CreatedAt))
}

func TestFailedSaveLeavesMemoryUnchanged(t *testing.T) {
	s, storage := setupStore(t)
	c, err := s.Contacts.Add(models.Contact{FirstName: "Nour"})
	require.NoError(t, err)

	storage.failing = true

	_, err = s.Contacts.Add(models.Contact{FirstName: "Lost"})
	require.Error(t, err)
	assert.Equal(t, 1, s.Contacts.Len())

	name := "Changed"
	_, found, err := s.Contacts.Update(c.ID, models.ContactPatch{FirstName: &name})
	require.Error(t, err)
	assert.True(t, found)
	got, _ := s.Contacts.Get(c.ID)
	assert.Equal(t, "Nour", got.FirstName)

	_, err = s.Contacts.Delete(c.ID)
	require.Error(t, err)
	assert.Equal(t, 1, s.Contacts.Len())
}

func TestLegacySnapshotsLoad(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.Save(KeySellerLeads, []byte(`[
		{"id":"l1","sellerName":"Hedi","title":"Villa S+4","photos":["a.jpg"],"contacted":false},
		{"id":"l2","sellerName":"Mouna","title":"Studio","contacted":true,"phase":"CLIENT"}
	]`)))
	require.NoError(t, storage.Save(KeyAnnualGoal, []byte(`{"id":"g1","year":2025,"revenueTarget":60000,"seniority":"Junior","monthlyGoals":[]}`)))

	s, err := Open(Deps{Storage: storage})
	require.NoError(t, err)

	l1, ok := s.SellerLeads.Get("l1")
	require.True(t, ok)
	assert.Equal(t, models.PhaseProspect, l1.Phase)
	assert.Len(t, s.SellerLeads.ByPhase(models.PhaseProspect), 1)
	assert.Len(t, s.SellerLeads.ByPhase(models.PhaseClient), 1)

	goal, ok := s.Goals.Current()
	require.True(t, ok)
	assert.Equal(t, 2025, goal.Year)
}

func TestUnsupportedSnapshotVersion(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.Save(KeyContacts, []byte(`{"schemaVersion":99,"data":[]}`)))

	_, err := Open(Deps{Storage: storage})
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestCorruptSnapshot(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.Save(KeyMandats, []byte(`[{"id":`)))

	_, err := Open(Deps{Storage: storage})
	assert.ErrorIs(t, err, ErrCorruptSnapshot)
}

func TestSellerLeadAddNormalisesPhase(t *testing.T) {
	s, _ := setupStore(t)

	l, err := s.SellerLeads.Add(models.SellerLead{SellerName: "Hedi", Title: "Villa", Contacted: true})
	require.NoError(t, err)
	assert.Equal(t, models.PhaseProspect, l.Phase)
	assert.False(t, l.Contacted)
	assert.NotNil(t, l.Photos)

	_, err = s.SellerLeads.Add(models.SellerLead{SellerName: "x", Phase: "LOST"})
	assert.ErrorIs(t, err, models.ErrInvalidPhase)

	_, err = s.SellerLeads.Add(models.SellerLead{SellerName: "x", PropertyType: "Castle"})
	assert.ErrorIs(t, err, models.ErrInvalidPropertyType)
}

func TestSellerLeadQueries(t *testing.T) {
	s, _ := setupStore(t)
	for _, p := range []models.SellerPhase{"", models.PhaseProspect, models.PhaseProspectQualifie, models.PhaseApresVente} {
		_, err := s.SellerLeads.Add(models.SellerLead{SellerName: "Lead " + string(p), Phase: p, Region: "Sfax"})
		require.NoError(t, err)
	}

	counts := s.SellerLeads.PhaseCounts()
	assert.Equal(t, 2, counts[models.PhaseProspect])
	assert.Equal(t, 1, counts[models.PhaseProspectQualifie])
	assert.Equal(t, 0, counts[models.PhaseClient])
	assert.Equal(t, 1, counts[models.PhaseApresVente])

	first := s.SellerLeads.All()[0]
	_, _, err := s.SellerLeads.MarkContacted(first.ID)
	require.NoError(t, err)
	assert.Len(t, s.SellerLeads.NotContacted(), 3)
	assert.Len(t, s.SellerLeads.Search("SFAX"), 4)
}

func TestMandatValidation(t *testing.T) {
	s, _ := setupStore(t)

	m, err := s.Mandats.Add(models.Mandat{Name: "Terrain Hammamet"})
	require.NoError(t, err)
	assert.Equal(t, models.MandatSimple, m.Type)
	assert.Equal(t, models.StageLead, m.Stage)

	_, err = s.Mandats.Add(models.Mandat{Name: "x", Stage: "SOLD"})
	assert.ErrorIs(t, err, models.ErrInvalidStage)

	bad := models.BuyerStage("SOLD")
	_, _, err = s.Mandats.Update(m.ID, models.MandatPatch{Stage: &bad})
	assert.ErrorIs(t, err, models.ErrInvalidStage)

	counts := s.Mandats.StageCounts()
	assert.Len(t, counts, len(models.BuyerStages))
	assert.Equal(t, 1, counts[models.StageLead])
}

func TestBuyersByMandat(t *testing.T) {
	s, _ := setupStore(t)
	for _, b := range []models.Buyer{
		{MandatID: "m1", Name: "A"},
		{MandatID: "m2", Name: "B"},
		{MandatID: "m1", Name: "C", Stage: models.StageVisites},
	} {
		_, err := s.Buyers.Add(b)
		require.NoError(t, err)
	}

	got := s.Buyers.ByMandat("m1")
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Name)
	assert.Equal(t, models.StageLead, got[0].Stage)
	assert.Len(t, s.Buyers.ByMandatAndStage("m1", models.StageVisites), 1)
	assert.Empty(t, s.Buyers.ByMandat("m3"))
}

func TestTasksByDateSortedByStartTime(t *testing.T) {
	s, _ := setupStore(t)
	for _, task := range []models.CalendarTask{
		{Title: "Visite", Date: "2026-03-14", StartTime: "15:00", EndTime: "16:00"},
		{Title: "Signature", Date: "2026-03-14", StartTime: "09:30", EndTime: "10:00"},
		{Title: "Autre jour", Date: "2026-03-15", StartTime: "08:00", EndTime: "09:00"},
		{Title: "Appel", Date: "2026-03-14", StartTime: "11:00", EndTime: "11:15"},
	} {
		_, err := s.Tasks.Add(task)
		require.NoError(t, err)
	}

	day := s.Tasks.ByDate("2026-03-14")
	require.Len(t, day, 3)
	assert.Equal(t, []string{"Signature", "Appel", "Visite"}, []string{day[0].Title, day[1].Title, day[2].Title})

	week := s.Tasks.Between("2026-03-14", "2026-03-20")
	require.Len(t, week, 4)
	assert.Equal(t, "Autre jour", week[3].Title)
}

func TestAnnonceSlugAndLookup(t *testing.T) {
	s, _ := setupStore(t)
	a, err := s.Annonces.Add(models.Annonce{MandatID: "m1", Title: "Villa Prestige à Sidi Bou Saïd"})
	require.NoError(t, err)
	assert.Equal(t, "villa-prestige-a-sidi-bou-said", a.Slug)

	got, ok := s.Annonces.ByMandat("m1")
	require.True(t, ok)
	assert.Equal(t, a.ID, got.ID)

	title := "Appartement Lac 2"
	updated, _, err := s.Annonces.Update(a.ID, models.AnnoncePatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "appartement-lac-2", updated.Slug)

	_, ok = s.Annonces.BySlug("appartement-lac-2")
	assert.True(t, ok)
	_, ok = s.Annonces.ByMandat("m2")
	assert.False(t, ok)
}

func TestContactSearchIgnoresAccents(t *testing.T) {
	s, _ := setupStore(t)
	_, err := s.Contacts.Add(models.Contact{FirstName: "Hélène", LastName: "Béji", Email: "HELENE@Example.com"})
	require.NoError(t, err)
	_, err = s.Contacts.Add(models.Contact{FirstName: "Karim", LastName: "Zouari"})
	require.NoError(t, err)

	assert.Len(t, s.Contacts.Search("helene"), 1)
	assert.Len(t, s.Contacts.Search("BEJI"), 1)
	assert.Len(t, s.Contacts.Search(""), 2)

	c, ok := s.Contacts.FindByEmail("helene@example.com")
	require.True(t, ok)
	assert.Equal(t, "Hélène", c.FirstName)
}

func TestPipelineStagesSeededOnce(t *testing.T) {
	storage := NewMemoryStorage()
	s, err := Open(Deps{Storage: storage})
	require.NoError(t, err)

	buyer := s.Stages.ByType(models.PipelineBuyer)
	require.Len(t, buyer, 7)
	assert.Equal(t, "New Lead", buyer[0].Name)
	require.Len(t, s.Stages.ByType(models.PipelineSeller), 8)

	reopened, err := Open(Deps{Storage: storage})
	require.NoError(t, err)
	assert.Equal(t, buyer[0].ID, reopened.Stages.ByType(models.PipelineBuyer)[0].ID)
	assert.Equal(t, 15, reopened.Stages.Len())
}

func TestDealsStayInTheirPipeline(t *testing.T) {
	s, _ := setupStore(t)

	d, err := s.Deals.Add(models.Deal{Title: "Achat T3", Type: models.PipelineBuyer, Value: 210000})
	require.NoError(t, err)
	first, _ := s.Stages.First(models.PipelineBuyer)
	assert.Equal(t, first.ID, d.StageID)

	offer := s.Stages.ByType(models.PipelineBuyer)[3]
	moved, found, err := s.Deals.Move(d.ID, offer.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, offer.ID, moved.StageID)
	assert.Len(t, s.Deals.ByStage(offer.ID), 1)

	sellerStage := s.Stages.ByType(models.PipelineSeller)[0]
	_, _, err = s.Deals.Move(d.ID, sellerStage.ID)
	assert.ErrorIs(t, err, ErrUnknownStage)

	_, _, err = s.Deals.Move(d.ID, "nope")
	assert.ErrorIs(t, err, ErrUnknownStage)

	_, found, err = s.Deals.Move("missing", offer.ID)
	require.NoError(t, err)
	assert.False(t, found)

	_, err = s.Deals.Add(models.Deal{Title: "x", Type: "RENTAL"})
	assert.ErrorIs(t, err, models.ErrInvalidPipelineType)
}

func TestGoalReplaceAndClear(t *testing.T) {
	storage := NewMemoryStorage()
	s, err := Open(Deps{Storage: storage})
	require.NoError(t, err)

	_, ok := s.Goals.Current()
	assert.False(t, ok)

	require.NoError(t, s.Goals.Set(models.AnnualGoal{ID: "g1", Year: 2026, RevenueTarget: 60000}))
	require.NoError(t, s.Goals.Set(models.AnnualGoal{ID: "g2", Year: 2026, RevenueTarget: 90000}))

	reopened, err := Open(Deps{Storage: storage})
	require.NoError(t, err)
	goal, ok := reopened.Goals.Current()
	require.True(t, ok)
	assert.Equal(t, "g2", goal.ID)

	require.NoError(t, reopened.Goals.Clear())
	_, ok = reopened.Goals.Current()
	assert.False(t, ok)
}

func TestExportAndRestore(t *testing.T) {
	s, _ := setupStore(t)
	_, err := s.Contacts.Add(models.Contact{FirstName: "Nour"})
	require.NoError(t, err)

	data, err := json.Marshal(s)
	require.NoError(t, err)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Contains(t, doc, KeyContacts)
	assert.Contains(t, doc, KeyPipelineStages)

	target, _ := setupStore(t)
	n, err := target.Restore(KeyContacts, doc[KeyContacts])
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "Nour", target.Contacts.All()[0].FirstName)

	n, err = target.Restore(KeySellerLeads, []byte(`[{"id":"x","sellerName":"Imed"}]`))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	lead, _ := target.SellerLeads.Get("x")
	assert.Equal(t, models.PhaseProspect, lead.Phase)

	_, err = target.Restore("unknown", []byte(`[]`))
	assert.Error(t, err)
}

func TestIDGenerators(t *testing.T) {
	gen, err := NewIDGenerator("ulid")
	require.NoError(t, err)
	a, b := gen.NewID(), gen.NewID()
	assert.Len(t, a, 26)
	assert.NotEqual(t, a, b)

	gen, err = NewIDGenerator("")
	require.NoError(t, err)
	assert.Len(t, gen.NewID(), 36)
	assert.Equal(t, 4, strings.Count(gen.NewID(), "-"))

	_, err = NewIDGenerator("snowflake")
	assert.Error(t, err)
}

func TestFold(t *testing.T) {
	assert.Equal(t, "elodie", Fold(" Élodie "))
	assert.Equal(t, "sidi bou said", Fold("Sidi Bou Saïd"))
}
