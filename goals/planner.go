// ABOUTME: Reverse funnel planning from an annual revenue target to monthly activity goals
// ABOUTME: Walks fixed conversion rates backward from transactions, rounding up at every step
package goals

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/harperreed/immo/models"
)

var (
	ErrInvalidRevenue = errors.New("annual revenue must be a positive number")
	ErrInvalidYear    = errors.New("year is required")
)

// AverageCommission is the assumed commission earned per transaction.
const AverageCommission = 5000.0

// Funnel conversion rates, read downstream.
const (
	OfferAcceptanceRate = 0.9 // accepted offers that close
	OfferConversionRate = 0.7 // offers that get accepted
	BuyerRequestRate    = 0.6 // buyer requests that produce an offer
	PropertiesPerOffer  = 2.0 // active listings needed per offer
	MandateRenewalRate  = 0.2 // share of active listings that are new mandates
	ProspectSigningRate = 0.3 // prospects that sign a mandate
	ContactQualifyRate  = 0.5 // contacts that become prospects
)

var seniorityMultipliers = map[models.SeniorityLevel]float64{
	models.SeniorityDebutant: 0.8,
	models.SeniorityJunior:   1.0,
	models.SeniorityConfirme: 1.2,
	models.SenioritySenior:   1.5,
	models.SeniorityLeader:   2.0,
	models.SeniorityExpert:   2.5,
}

// SeniorityMultiplier returns the productivity factor for a level, or 1 for an unknown level.
// The planner does not apply it; the funnel depends only on revenue.
func SeniorityMultiplier(level models.SeniorityLevel) float64 {
	if m, ok := seniorityMultipliers[level]; ok {
		return m
	}
	return 1.0
}

// Planner generates annual goals. NewID supplies the goal identifier.
type Planner struct {
	newID func() string
}

func NewPlanner(newID func() string) *Planner {
	return &Planner{newID: newID}
}

// Generate builds an AnnualGoal with twelve identical monthly funnels.
func (p *Planner) Generate(year int, annualRevenue float64, seniority models.SeniorityLevel) (*models.AnnualGoal, error) {
	if err := Validate(year, annualRevenue, seniority); err != nil {
		return nil, err
	}

	month := MonthlyTargets(annualRevenue)
	monthly := make([]models.MonthlyGoal, 12)
	for i := range monthly {
		monthly[i] = month
		monthly[i].Month = i + 1
	}

	return &models.AnnualGoal{
		ID:            p.newID(),
		Year:          year,
		RevenueTarget: annualRevenue,
		Seniority:     seniority,
		MonthlyGoals:  monthly,
	}, nil
}

// Validate rejects inputs the funnel cannot plan for.
func Validate(year int, annualRevenue float64, seniority models.SeniorityLevel) error {
	if year <= 0 {
		return ErrInvalidYear
	}
	if math.IsNaN(annualRevenue) || math.IsInf(annualRevenue, 0) || annualRevenue <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidRevenue, annualRevenue)
	}
	if !seniority.IsValid() {
		return fmt.Errorf("%w: %q", models.ErrInvalidSeniority, seniority)
	}
	return nil
}

// MonthlyTargets computes one month of the funnel. The returned Month field is zero.
func MonthlyTargets(annualRevenue float64) models.MonthlyGoal {
	annualTransactions := math.Ceil(annualRevenue / AverageCommission)

	transactions := math.Ceil(annualTransactions / 12)
	acceptedOffers := math.Ceil(transactions / OfferAcceptanceRate)
	offers := math.Ceil(acceptedOffers / OfferConversionRate)
	newBuyerRequests := math.Ceil(offers / BuyerRequestRate)
	activeProperties := math.Ceil(offers * PropertiesPerOffer)
	newMandates := math.Ceil(activeProperties * MandateRenewalRate)
	prospects := math.Ceil(newMandates / ProspectSigningRate)
	contacts := math.Ceil(prospects / ContactQualifyRate)

	return models.MonthlyGoal{
		Contacts:         int(contacts),
		Prospects:        int(prospects),
		NewMandates:      int(newMandates),
		NewBuyerRequests: int(newBuyerRequests),
		ActiveProperties: int(activeProperties),
		Offers:           int(offers),
		AcceptedOffers:   int(acceptedOffers),
		Transactions:     int(transactions),
		Revenue:          MonthlyRevenue(annualRevenue),
	}
}

// MonthlyRevenue is a twelfth of the annual revenue rounded to cents.
func MonthlyRevenue(annualRevenue float64) float64 {
	return decimal.NewFromFloat(annualRevenue).
		Div(decimal.NewFromInt(12)).
		Round(2).
		InexactFloat64()
}

// SuggestSeniority maps a revenue figure to the level whose band contains it.
func SuggestSeniority(revenue float64) models.SeniorityLevel {
	switch {
	case revenue < 50000:
		return models.SeniorityDebutant
	case revenue < 80000:
		return models.SeniorityJunior
	case revenue < 120000:
		return models.SeniorityConfirme
	case revenue < 180000:
		return models.SenioritySenior
	case revenue < 300000:
		return models.SeniorityLeader
	default:
		return models.SeniorityExpert
	}
}
