// ABOUTME: Seller qualification scoring from a four-question questionnaire
// ABOUTME: Table-driven weights sum to a 0-100 score classified CHAUD, TIÈDE or FROID
package scoring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/harperreed/immo/models"
)

var ErrInvalidAnswer = errors.New("invalid questionnaire answer")

type Timeframe string

const (
	TimeframeImmediate Timeframe = "IMMEDIATE"
	Timeframe3Months   Timeframe = "3_MONTHS"
	Timeframe6Months   Timeframe = "6_MONTHS"
	TimeframeUncertain Timeframe = "UNCERTAIN"
)

type Motivation string

const (
	MotivationMustSell Motivation = "MUST_SELL"
	MotivationWantSell Motivation = "WANT_SELL"
	MotivationCurious  Motivation = "curious"
)

type PriceExpectation string

const (
	PriceMarket      PriceExpectation = "MARKET"
	PriceAboveMarket PriceExpectation = "ABOVE_MARKET"
	PriceUnrealistic PriceExpectation = "UNREALISTIC"
)

type Exclusivity string

const (
	ExclusivityYes   Exclusivity = "YES"
	ExclusivityMaybe Exclusivity = "MAYBE"
	ExclusivityNo    Exclusivity = "NO"
)

// Answers is the seller questionnaire.
type Answers struct {
	Timeframe        Timeframe        `json:"timeframe"`
	Motivation       Motivation       `json:"motivation"`
	PriceExpectation PriceExpectation `json:"priceExpectation"`
	Exclusivity      Exclusivity      `json:"exclusivity"`
}

var (
	timeframeWeights = map[Timeframe]int{
		TimeframeImmediate: 30,
		Timeframe3Months:   20,
		Timeframe6Months:   10,
		TimeframeUncertain: 0,
	}
	motivationWeights = map[Motivation]int{
		MotivationMustSell: 30,
		MotivationWantSell: 15,
		MotivationCurious:  0,
	}
	priceWeights = map[PriceExpectation]int{
		PriceMarket:      20,
		PriceAboveMarket: 10,
		PriceUnrealistic: 0,
	}
	exclusivityWeights = map[Exclusivity]int{
		ExclusivityYes:   20,
		ExclusivityMaybe: 10,
		ExclusivityNo:    0,
	}
)

// Classification thresholds, evaluated high to low.
const (
	HotThreshold  = 80
	WarmThreshold = 50
)

// Score computes the weighted seller score. Any answer outside its closed set is rejected.
func Score(a Answers) (models.SellerScore, error) {
	tf, ok := timeframeWeights[a.Timeframe]
	if !ok {
		return models.SellerScore{}, fmt.Errorf("%w: timeframe %q", ErrInvalidAnswer, a.Timeframe)
	}
	mo, ok := motivationWeights[a.Motivation]
	if !ok {
		return models.SellerScore{}, fmt.Errorf("%w: motivation %q", ErrInvalidAnswer, a.Motivation)
	}
	price, ok := priceWeights[a.PriceExpectation]
	if !ok {
		return models.SellerScore{}, fmt.Errorf("%w: price expectation %q", ErrInvalidAnswer, a.PriceExpectation)
	}
	legal, ok := exclusivityWeights[a.Exclusivity]
	if !ok {
		return models.SellerScore{}, fmt.Errorf("%w: exclusivity %q", ErrInvalidAnswer, a.Exclusivity)
	}

	motivation := tf + mo
	total := motivation + price + legal

	return models.SellerScore{
		TotalScore:     total,
		Classification: Classify(total),
		Breakdown: models.ScoreBreakdown{
			Motivation:   motivation,
			PriceRealism: price,
			Legal:        legal,
		},
	}, nil
}

// Classify maps a total score to its tier.
func Classify(total int) models.Classification {
	switch {
	case total >= HotThreshold:
		return models.ClassificationChaud
	case total >= WarmThreshold:
		return models.ClassificationTiede
	default:
		return models.ClassificationFroid
	}
}

// ParseAnswers builds Answers from raw strings, as typed on the command line or sent by a tool call.
// Timeframe, price and exclusivity are case-insensitive; motivation keeps its stored casing for "curious".
func ParseAnswers(timeframe, motivation, price, exclusivity string) (Answers, error) {
	a := Answers{
		Timeframe:        Timeframe(upper(timeframe)),
		Motivation:       Motivation(upper(motivation)),
		PriceExpectation: PriceExpectation(upper(price)),
		Exclusivity:      Exclusivity(upper(exclusivity)),
	}
	if a.Motivation == "CURIOUS" {
		a.Motivation = MotivationCurious
	}
	if _, err := Score(a); err != nil {
		return Answers{}, err
	}
	return a, nil
}

func upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Timeframes, Motivations, PriceExpectations and Exclusivities list the accepted answers in weight order.
var (
	Timeframes        = []Timeframe{TimeframeImmediate, Timeframe3Months, Timeframe6Months, TimeframeUncertain}
	Motivations       = []Motivation{MotivationMustSell, MotivationWantSell, MotivationCurious}
	PriceExpectations = []PriceExpectation{PriceMarket, PriceAboveMarket, PriceUnrealistic}
	Exclusivities     = []Exclusivity{ExclusivityYes, ExclusivityMaybe, ExclusivityNo}
)
