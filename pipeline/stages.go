// ABOUTME: Default deal pipelines for buyer and seller deals
// ABOUTME: Stages are ordered columns; lookups always sort by Order
package pipeline

import (
	"sort"

	"github.com/harperreed/immo/models"
)

var defaultBuyerStages = []string{
	"New Lead", "Contacted", "Visit Scheduled", "Offer Made", "Under Contract", "Closed", "Lost",
}

var defaultSellerStages = []string{
	"Valuation Request", "Valuation Done", "Mandate Signed", "Marketing",
	"Offer Received", "Under Contract", "Closed", "Lost",
}

// DefaultStages seeds both pipelines with fresh identifiers from newID.
func DefaultStages(newID func() string) []models.PipelineStage {
	stages := make([]models.PipelineStage, 0, len(defaultBuyerStages)+len(defaultSellerStages))
	add := func(names []string, kind models.PipelineType) {
		for i, name := range names {
			stages = append(stages, models.PipelineStage{
				Record:       models.Record{ID: newID()},
				Name:         name,
				Order:        i,
				PipelineType: kind,
			})
		}
	}
	add(defaultBuyerStages, models.PipelineBuyer)
	add(defaultSellerStages, models.PipelineSeller)
	return stages
}

// StagesFor filters stages to one pipeline, sorted by Order.
func StagesFor(stages []models.PipelineStage, kind models.PipelineType) []models.PipelineStage {
	var out []models.PipelineStage
	for _, s := range stages {
		if s.PipelineType == kind {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}
