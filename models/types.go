// ABOUTME: Data models for real-estate CRM entities
// ABOUTME: Defines Contact, Mandat, Buyer, SellerLead, Annonce, CalendarTask, Deal and goal structs
package models

import (
	"strings"
	"time"
)

// Record carries the identity and timestamps every stored entity shares.
type Record struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Key returns the record identifier.
func (r *Record) Key() string {
	return r.ID
}

// Stamp assigns a fresh identifier and creation time.
func (r *Record) Stamp(id string, now time.Time) {
	r.ID = id
	r.CreatedAt = now
	r.UpdatedAt = now
}

// Touch refreshes the update timestamp.
func (r *Record) Touch(now time.Time) {
	r.UpdatedAt = now
}

type Contact struct {
	Record
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Notes     string `json:"notes,omitempty"`
}

// FullName joins first and last name, skipping empty parts.
func (c Contact) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Mandat is a seller-side listing agreement tracked through a sales pipeline.
type Mandat struct {
	Record
	Name      string       `json:"name"`
	ContactID string       `json:"contactId"`
	Type      MandatType   `json:"type"`
	Stage     BuyerStage   `json:"stage"`
	Value     float64      `json:"value"`
	Date      string       `json:"date"`
	Score     *SellerScore `json:"score,omitempty"`
	Notes     string       `json:"notes,omitempty"`
	AnnonceID string       `json:"annonceId,omitempty"`
}

// Buyer is a prospective purchaser tracked independently per mandat.
type Buyer struct {
	Record
	MandatID string     `json:"mandatId"`
	Name     string     `json:"name"`
	Phone    string     `json:"phone"`
	Email    string     `json:"email"`
	Stage    BuyerStage `json:"stage"`
}

// SellerLead is a prospected seller opportunity, often sourced from listing sites.
type SellerLead struct {
	Record
	ContactID          string       `json:"contactId,omitempty"`
	SellerName         string       `json:"sellerName"`
	Title              string       `json:"title"`
	Description        string       `json:"description"`
	Phone              string       `json:"phone"`
	Region             string       `json:"region"`
	Photos             []string     `json:"photos"`
	Source             string       `json:"source"`
	ListingDate        string       `json:"listingDate"`
	Contacted          bool         `json:"contacted"`
	ConvertedToContact bool         `json:"convertedToContact,omitempty"`
	Phase              SellerPhase  `json:"phase,omitempty"`
	PropertyType       PropertyType `json:"propertyType,omitempty"`
	Notes              string       `json:"notes,omitempty"`
}

// EffectivePhase returns the lead phase, treating an unset phase as PROSPECT.
func (l SellerLead) EffectivePhase() SellerPhase {
	if l.Phase == "" {
		return PhaseProspect
	}
	return l.Phase
}

type Annonce struct {
	Record
	MandatID    string   `json:"mandatId"`
	Title       string   `json:"title"`
	Slug        string   `json:"slug,omitempty"`
	Description string   `json:"description"`
	Photos      []string `json:"photos"`
}

// CalendarTask is a scheduled agenda entry; Date is YYYY-MM-DD and times are HH:mm.
type CalendarTask struct {
	Record
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Color       string `json:"color,omitempty"`
	ContactID   string `json:"contactId,omitempty"`
	MandatID    string `json:"mandatId,omitempty"`
}

// PipelineStage is one column of a configurable deal pipeline.
type PipelineStage struct {
	Record
	Name         string       `json:"name"`
	Order        int          `json:"order"`
	PipelineType PipelineType `json:"pipelineType"`
}

type Deal struct {
	Record
	Title     string       `json:"title"`
	ContactID string       `json:"contactId"`
	Type      PipelineType `json:"type"`
	Value     float64      `json:"value"`
	StageID   string       `json:"stageId"`
	Score     *SellerScore `json:"score,omitempty"`
}

// ScoreBreakdown holds the three weighted sub-scores of a SellerScore.
type ScoreBreakdown struct {
	Motivation   int `json:"motivation"`
	PriceRealism int `json:"priceRealism"`
	Legal        int `json:"legal"`
}

// SellerScore is the immutable result of a seller qualification questionnaire.
type SellerScore struct {
	TotalScore     int            `json:"totalScore"`
	Classification Classification `json:"classification"`
	Breakdown      ScoreBreakdown `json:"breakdown"`
}

// MonthlyGoal holds the operational targets for one month of an annual plan.
type MonthlyGoal struct {
	Month            int     `json:"month"`
	Contacts         int     `json:"contacts"`
	Prospects        int     `json:"prospects"`
	NewMandates      int     `json:"newMandates"`
	NewBuyerRequests int     `json:"newBuyerRequests"`
	ActiveProperties int     `json:"activeProperties"`
	Offers           int     `json:"offers"`
	AcceptedOffers   int     `json:"acceptedOffers"`
	Transactions     int     `json:"transactions"`
	Revenue          float64 `json:"revenue"`
}

type AnnualGoal struct {
	ID            string         `json:"id"`
	Year          int            `json:"year"`
	RevenueTarget float64        `json:"revenueTarget"`
	Seniority     SeniorityLevel `json:"seniority"`
	MonthlyGoals  []MonthlyGoal  `json:"monthlyGoals"`
}
