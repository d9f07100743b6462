// ABOUTME: Partial-update structs merged into stored entities
// ABOUTME: A nil field leaves the stored value untouched
package models

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidSchedule = errors.New("invalid schedule")

type ContactPatch struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Email     *string `json:"email,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

func (p ContactPatch) Apply(c *Contact) {
	setString(&c.FirstName, p.FirstName)
	setString(&c.LastName, p.LastName)
	setString(&c.Phone, p.Phone)
	setString(&c.Email, p.Email)
	setString(&c.Notes, p.Notes)
}

type MandatPatch struct {
	Name      *string      `json:"name,omitempty"`
	ContactID *string      `json:"contactId,omitempty"`
	Type      *MandatType  `json:"type,omitempty"`
	Stage     *BuyerStage  `json:"stage,omitempty"`
	Value     *float64     `json:"value,omitempty"`
	Date      *string      `json:"date,omitempty"`
	Score     *SellerScore `json:"score,omitempty"`
	Notes     *string      `json:"notes,omitempty"`
	AnnonceID *string      `json:"annonceId,omitempty"`
}

func (p MandatPatch) Apply(m *Mandat) {
	setString(&m.Name, p.Name)
	setString(&m.ContactID, p.ContactID)
	if p.Type != nil {
		m.Type = *p.Type
	}
	if p.Stage != nil {
		m.Stage = *p.Stage
	}
	if p.Value != nil {
		m.Value = *p.Value
	}
	setString(&m.Date, p.Date)
	if p.Score != nil {
		score := *p.Score
		m.Score = &score
	}
	setString(&m.Notes, p.Notes)
	setString(&m.AnnonceID, p.AnnonceID)
}

type BuyerPatch struct {
	MandatID *string     `json:"mandatId,omitempty"`
	Name     *string     `json:"name,omitempty"`
	Phone    *string     `json:"phone,omitempty"`
	Email    *string     `json:"email,omitempty"`
	Stage    *BuyerStage `json:"stage,omitempty"`
}

func (p BuyerPatch) Apply(b *Buyer) {
	setString(&b.MandatID, p.MandatID)
	setString(&b.Name, p.Name)
	setString(&b.Phone, p.Phone)
	setString(&b.Email, p.Email)
	if p.Stage != nil {
		b.Stage = *p.Stage
	}
}

// SellerLeadPatch deliberately has no Phase field: phase changes go through the phase machine.
type SellerLeadPatch struct {
	ContactID          *string       `json:"contactId,omitempty"`
	SellerName         *string       `json:"sellerName,omitempty"`
	Title              *string       `json:"title,omitempty"`
	Description        *string       `json:"description,omitempty"`
	Phone              *string       `json:"phone,omitempty"`
	Region             *string       `json:"region,omitempty"`
	Photos             []string      `json:"photos,omitempty"`
	Source             *string       `json:"source,omitempty"`
	ListingDate        *string       `json:"listingDate,omitempty"`
	Contacted          *bool         `json:"contacted,omitempty"`
	ConvertedToContact *bool         `json:"convertedToContact,omitempty"`
	PropertyType       *PropertyType `json:"propertyType,omitempty"`
	Notes              *string       `json:"notes,omitempty"`
}

func (p SellerLeadPatch) Apply(l *SellerLead) {
	setString(&l.ContactID, p.ContactID)
	setString(&l.SellerName, p.SellerName)
	setString(&l.Title, p.Title)
	setString(&l.Description, p.Description)
	setString(&l.Phone, p.Phone)
	setString(&l.Region, p.Region)
	if p.Photos != nil {
		l.Photos = append([]string(nil), p.Photos...)
	}
	setString(&l.Source, p.Source)
	setString(&l.ListingDate, p.ListingDate)
	if p.Contacted != nil {
		l.Contacted = *p.Contacted
	}
	if p.ConvertedToContact != nil {
		l.ConvertedToContact = *p.ConvertedToContact
	}
	if p.PropertyType != nil {
		l.PropertyType = *p.PropertyType
	}
	setString(&l.Notes, p.Notes)
}

type AnnoncePatch struct {
	MandatID    *string  `json:"mandatId,omitempty"`
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Photos      []string `json:"photos,omitempty"`
}

func (p AnnoncePatch) Apply(a *Annonce) {
	setString(&a.MandatID, p.MandatID)
	setString(&a.Title, p.Title)
	setString(&a.Description, p.Description)
	if p.Photos != nil {
		a.Photos = append([]string(nil), p.Photos...)
	}
}

type CalendarTaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Date        *string `json:"date,omitempty"`
	StartTime   *string `json:"startTime,omitempty"`
	EndTime     *string `json:"endTime,omitempty"`
	Color       *string `json:"color,omitempty"`
	ContactID   *string `json:"contactId,omitempty"`
	MandatID    *string `json:"mandatId,omitempty"`
}

func (p CalendarTaskPatch) Apply(t *CalendarTask) {
	setString(&t.Title, p.Title)
	setString(&t.Description, p.Description)
	setString(&t.Date, p.Date)
	setString(&t.StartTime, p.StartTime)
	setString(&t.EndTime, p.EndTime)
	setString(&t.Color, p.Color)
	setString(&t.ContactID, p.ContactID)
	setString(&t.MandatID, p.MandatID)
}

type DealPatch struct {
	Title     *string      `json:"title,omitempty"`
	ContactID *string      `json:"contactId,omitempty"`
	Value     *float64     `json:"value,omitempty"`
	StageID   *string      `json:"stageId,omitempty"`
	Score     *SellerScore `json:"score,omitempty"`
}

func (p DealPatch) Apply(d *Deal) {
	setString(&d.Title, p.Title)
	setString(&d.ContactID, p.ContactID)
	if p.Value != nil {
		d.Value = *p.Value
	}
	setString(&d.StageID, p.StageID)
	if p.Score != nil {
		score := *p.Score
		d.Score = &score
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// Layouts used by calendar tasks.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Validate checks the date and time formats and that the task does not end before it starts.
func (t CalendarTask) Validate() error {
	if _, err := time.Parse(DateLayout, t.Date); err != nil {
		return fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidSchedule, t.Date)
	}
	start, err := time.Parse(TimeLayout, t.StartTime)
	if err != nil {
		return fmt.Errorf("%w: start time %q must be HH:mm", ErrInvalidSchedule, t.StartTime)
	}
	end, err := time.Parse(TimeLayout, t.EndTime)
	if err != nil {
		return fmt.Errorf("%w: end time %q must be HH:mm", ErrInvalidSchedule, t.EndTime)
	}
	if end.Before(start) {
		return fmt.Errorf("%w: end time %s is before start time %s", ErrInvalidSchedule, t.EndTime, t.StartTime)
	}
	return nil
}
