// ABOUTME: Finds records whose contact or mandat reference points at nothing
// ABOUTME: Deletes never cascade, so dangling references are expected and only reported
package crm

import "sort"

// OrphanReference is one dangling foreign key.
type OrphanReference struct {
	Entity    string `json:"entity"`
	ID        string `json:"id"`
	Field     string `json:"field"`
	MissingID string `json:"missingId"`
}

// OrphanReferences lists references to contacts or mandats that no longer exist.
func (w *Workspace) OrphanReferences() []OrphanReference {
	s := w.Store
	contacts := make(map[string]bool)
	for _, c := range s.Contacts.All() {
		contacts[c.ID] = true
	}
	mandats := make(map[string]bool)
	for _, m := range s.Mandats.All() {
		mandats[m.ID] = true
	}

	var out []OrphanReference
	check := func(entity, id, field, ref string, known map[string]bool) {
		if ref != "" && !known[ref] {
			out = append(out, OrphanReference{Entity: entity, ID: id, Field: field, MissingID: ref})
		}
	}

	for _, m := range s.Mandats.All() {
		check("mandat", m.ID, "contactId", m.ContactID, contacts)
	}
	for _, b := range s.Buyers.All() {
		check("buyer", b.ID, "mandatId", b.MandatID, mandats)
	}
	for _, l := range s.SellerLeads.All() {
		check("sellerLead", l.ID, "contactId", l.ContactID, contacts)
	}
	for _, t := range s.Tasks.All() {
		check("calendarTask", t.ID, "contactId", t.ContactID, contacts)
		check("calendarTask", t.ID, "mandatId", t.MandatID, mandats)
	}
	for _, a := range s.Annonces.All() {
		check("annonce", a.ID, "mandatId", a.MandatID, mandats)
	}
	for _, d := range s.Deals.All() {
		check("deal", d.ID, "contactId", d.ContactID, contacts)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Entity != out[j].Entity {
			return out[i].Entity < out[j].Entity
		}
		return out[i].ID < out[j].ID
	})
	return out
}
