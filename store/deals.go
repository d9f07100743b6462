// ABOUTME: Pipeline stage and deal stores
// ABOUTME: Stages are seeded with the default buyer and seller pipelines on first load
package store

import (
	"errors"
	"fmt"

	"github.com/harperreed/immo/models"
	"github.com/harperreed/immo/pipeline"
)

var ErrUnknownStage = errors.New("unknown pipeline stage")

type PipelineStages struct {
	*Collection[models.PipelineStage, *models.PipelineStage]
}

func newPipelineStages(deps Deps) (*PipelineStages, error) {
	c, err := loadCollection[models.PipelineStage](KeyPipelineStages, deps)
	if err != nil {
		return nil, err
	}
	s := &PipelineStages{c}
	if c.Len() == 0 {
		now := deps.Now()
		stages := pipeline.DefaultStages(deps.IDs.NewID)
		for i := range stages {
			stages[i].CreatedAt = now
			stages[i].UpdatedAt = now
		}
		if err := c.Replace(stages); err != nil {
			return nil, fmt.Errorf("failed to seed pipeline stages: %w", err)
		}
	}
	return s, nil
}

// ByType lists one pipeline's stages sorted by order.
func (s *PipelineStages) ByType(kind models.PipelineType) []models.PipelineStage {
	return pipeline.StagesFor(s.All(), kind)
}

// First returns the lowest-order stage of a pipeline.
func (s *PipelineStages) First(kind models.PipelineType) (models.PipelineStage, bool) {
	stages := s.ByType(kind)
	if len(stages) == 0 {
		return models.PipelineStage{}, false
	}
	return stages[0], true
}

type Deals struct {
	*Collection[models.Deal, *models.Deal]
	stages *PipelineStages
}

// Add places a deal in its pipeline; an empty stage id means the first stage.
func (s *Deals) Add(d models.Deal) (models.Deal, error) {
	if !d.Type.IsValid() {
		return models.Deal{}, fmt.Errorf("%w: %q", models.ErrInvalidPipelineType, d.Type)
	}
	if d.StageID == "" {
		first, ok := s.stages.First(d.Type)
		if !ok {
			return models.Deal{}, fmt.Errorf("%w: %s pipeline has no stages", ErrUnknownStage, d.Type)
		}
		d.StageID = first.ID
	} else if err := s.checkStage(d.Type, d.StageID); err != nil {
		return models.Deal{}, err
	}
	return s.Collection.Add(d)
}

func (s *Deals) Update(id string, patch models.DealPatch) (models.Deal, bool, error) {
	if patch.StageID != nil {
		deal, ok := s.Get(id)
		if !ok {
			return models.Deal{}, false, nil
		}
		if err := s.checkStage(deal.Type, *patch.StageID); err != nil {
			return models.Deal{}, true, err
		}
	}
	return s.Modify(id, patch.Apply)
}

// Move puts a deal on another stage of its own pipeline.
func (s *Deals) Move(id, stageID string) (models.Deal, bool, error) {
	return s.Update(id, models.DealPatch{StageID: &stageID})
}

func (s *Deals) checkStage(kind models.PipelineType, stageID string) error {
	stage, ok := s.stages.Get(stageID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownStage, stageID)
	}
	if stage.PipelineType != kind {
		return fmt.Errorf("%w: stage %q belongs to the %s pipeline", ErrUnknownStage, stage.Name, stage.PipelineType)
	}
	return nil
}

func (s *Deals) ByStage(stageID string) []models.Deal {
	return s.Filter(func(d models.Deal) bool { return d.StageID == stageID })
}

func (s *Deals) ByType(kind models.PipelineType) []models.Deal {
	return s.Filter(func(d models.Deal) bool { return d.Type == kind })
}
