// ABOUTME: Closed enumerations for stages, phases, mandat kinds and score tiers
// ABOUTME: Each enum validates itself and parses user input with sentinel errors
package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidStage        = errors.New("invalid stage")
	ErrInvalidPhase        = errors.New("invalid phase")
	ErrInvalidMandatType   = errors.New("invalid mandat type")
	ErrInvalidPropertyType = errors.New("invalid property type")
	ErrInvalidSeniority    = errors.New("invalid seniority level")
	ErrInvalidPipelineType = errors.New("invalid pipeline type")
)

// BuyerStage is the pipeline position shared by Mandat.Stage and Buyer.Stage.
type BuyerStage string

const (
	StageLead        BuyerStage = "LEAD"
	StageProspect    BuyerStage = "PROSPECT"
	StageVisites     BuyerStage = "VISITES"
	StageOffre       BuyerStage = "OFFRE"
	StageNegociation BuyerStage = "NEGOCIATION"
	StagePurchased   BuyerStage = "PURCHASED"
	StageApresVente  BuyerStage = "APRES_VENTE"
)

// BuyerStages lists every stage in board order.
var BuyerStages = []BuyerStage{
	StageLead, StageProspect, StageVisites, StageOffre,
	StageNegociation, StagePurchased, StageApresVente,
}

var buyerStageLabels = map[BuyerStage]string{
	StageLead:        "Lead",
	StageProspect:    "Prospect",
	StageVisites:     "Visites",
	StageOffre:       "Offre",
	StageNegociation: "Négociation",
	StagePurchased:   "Purchased",
	StageApresVente:  "Après-Vente",
}

func (s BuyerStage) IsValid() bool {
	_, ok := buyerStageLabels[s]
	return ok
}

func (s BuyerStage) Label() string {
	if label, ok := buyerStageLabels[s]; ok {
		return label
	}
	return string(s)
}

// ParseBuyerStage accepts the stage constant in any case.
func ParseBuyerStage(raw string) (BuyerStage, error) {
	s := BuyerStage(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStage, raw)
	}
	return s, nil
}

// SellerPhase is the ordered qualification phase of a SellerLead.
type SellerPhase string

const (
	PhaseProspect         SellerPhase = "PROSPECT"
	PhaseProspectQualifie SellerPhase = "PROSPECT_QUALIFIE"
	PhaseClient           SellerPhase = "CLIENT"
	PhaseApresVente       SellerPhase = "APRES_VENTE"
)

// SellerPhases lists every phase in ascending order.
var SellerPhases = []SellerPhase{PhaseProspect, PhaseProspectQualifie, PhaseClient, PhaseApresVente}

var sellerPhaseLabels = map[SellerPhase]string{
	PhaseProspect:         "Prospects",
	PhaseProspectQualifie: "Prospects Qualifiés",
	PhaseClient:           "Clients",
	PhaseApresVente:       "Après Vente",
}

func (p SellerPhase) IsValid() bool {
	_, ok := sellerPhaseLabels[p]
	return ok
}

// Index returns the phase ordinal; an unset phase counts as PROSPECT and an unknown one as -1.
func (p SellerPhase) Index() int {
	if p == "" {
		return 0
	}
	for i, phase := range SellerPhases {
		if phase == p {
			return i
		}
	}
	return -1
}

func (p SellerPhase) Label() string {
	if label, ok := sellerPhaseLabels[p]; ok {
		return label
	}
	return string(p)
}

func ParseSellerPhase(raw string) (SellerPhase, error) {
	p := SellerPhase(strings.ToUpper(strings.TrimSpace(raw)))
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPhase, raw)
	}
	return p, nil
}

type MandatType string

const (
	MandatSimple    MandatType = "MANDAT_SIMPLE"
	MandatExclusif  MandatType = "MANDAT_EXCLUSIF"
	MandatRecherche MandatType = "MANDAT_RECHERCHE"
)

func (t MandatType) IsValid() bool {
	switch t {
	case MandatSimple, MandatExclusif, MandatRecherche:
		return true
	}
	return false
}

// ParseMandatType accepts both the stored form (MANDAT_SIMPLE) and the short form (SIMPLE).
func ParseMandatType(raw string) (MandatType, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if !strings.HasPrefix(s, "MANDAT_") {
		s = "MANDAT_" + s
	}
	t := MandatType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMandatType, raw)
	}
	return t, nil
}

type PropertyType string

const (
	PropertyVilla           PropertyType = "Villa"
	PropertyAppartement     PropertyType = "Appartement"
	PropertyMaison          PropertyType = "Maison"
	PropertyStudio          PropertyType = "Studio"
	PropertyTerrain         PropertyType = "Terrain"
	PropertyBureau          PropertyType = "Bureau"
	PropertyLocalCommercial PropertyType = "Local Commercial"
	PropertyAutre           PropertyType = "Autre"
)

var PropertyTypes = []PropertyType{
	PropertyVilla, PropertyAppartement, PropertyMaison, PropertyStudio,
	PropertyTerrain, PropertyBureau, PropertyLocalCommercial, PropertyAutre,
}

func ParsePropertyType(raw string) (PropertyType, error) {
	for _, p := range PropertyTypes {
		if strings.EqualFold(string(p), strings.TrimSpace(raw)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPropertyType, raw)
}

// Classification is the hot/warm/cold tier of a seller score.
type Classification string

const (
	ClassificationChaud Classification = "CHAUD"
	ClassificationTiede Classification = "TIÈDE"
	ClassificationFroid Classification = "FROID"
)

func (c Classification) IsValid() bool {
	switch c {
	case ClassificationChaud, ClassificationTiede, ClassificationFroid:
		return true
	}
	return false
}

type SeniorityLevel string

const (
	SeniorityDebutant SeniorityLevel = "Débutant"
	SeniorityJunior   SeniorityLevel = "Junior"
	SeniorityConfirme SeniorityLevel = "Confirmé"
	SenioritySenior   SeniorityLevel = "Senior"
	SeniorityLeader   SeniorityLevel = "Leader"
	SeniorityExpert   SeniorityLevel = "Expert"
)

var SeniorityLevels = []SeniorityLevel{
	SeniorityDebutant, SeniorityJunior, SeniorityConfirme,
	SenioritySenior, SeniorityLeader, SeniorityExpert,
}

func (s SeniorityLevel) IsValid() bool {
	for _, level := range SeniorityLevels {
		if level == s {
			return true
		}
	}
	return false
}

// ParseSeniority matches case-insensitively and tolerates missing accents ("debutant").
func ParseSeniority(raw string) (SeniorityLevel, error) {
	want := strings.ToLower(strings.TrimSpace(raw))
	for _, level := range SeniorityLevels {
		name := strings.ToLower(string(level))
		plain := strings.NewReplacer("é", "e").Replace(name)
		if want == name || want == plain {
			return level, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSeniority, raw)
}

// PipelineType selects the BUYER or SELLER deal pipeline.
type PipelineType string

const (
	PipelineBuyer  PipelineType = "BUYER"
	PipelineSeller PipelineType = "SELLER"
)

func (p PipelineType) IsValid() bool {
	return p == PipelineBuyer || p == PipelineSeller
}

func ParsePipelineType(raw string) (PipelineType, error) {
	p := PipelineType(strings.ToUpper(strings.TrimSpace(raw)))
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPipelineType, raw)
	}
	return p, nil
}
