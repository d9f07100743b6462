// ABOUTME: Transition rules for mandat/buyer stages and seller lead phases
// ABOUTME: Stages move freely; phases refuse demotion once a lead is a client
package pipeline

import (
	"fmt"

	"github.com/harperreed/immo/models"
)

// MoveStage returns the stage a Mandat or Buyer lands on when dropped on target.
// Any stage may follow any other, including backward jumps such as PURCHASED to LEAD.
func MoveStage(current, target models.BuyerStage) (models.BuyerStage, error) {
	if !target.IsValid() {
		return current, fmt.Errorf("%w: %q", models.ErrInvalidStage, target)
	}
	return target, nil
}

// Decision is the outcome of a phase transition request.
type Decision int

const (
	// Reject leaves the phase unchanged without reporting an error.
	Reject Decision = iota
	// Commit applies the target phase directly.
	Commit
	// RequireMandat applies the target phase only together with a newly created Mandat.
	RequireMandat
)

func (d Decision) String() string {
	switch d {
	case Reject:
		return "reject"
	case Commit:
		return "commit"
	case RequireMandat:
		return "require-mandat"
	}
	return fmt.Sprintf("Decision(%d)", int(d))
}

// clientIndex is the first phase from which a lead cannot move back.
var clientIndex = models.PhaseClient.Index()

// DecidePhase applies the seller phase rules. An unset current phase counts as PROSPECT.
func DecidePhase(current, target models.SellerPhase) (Decision, error) {
	if !target.IsValid() {
		return Reject, fmt.Errorf("%w: %q", models.ErrInvalidPhase, target)
	}
	if current != "" && !current.IsValid() {
		return Reject, fmt.Errorf("%w: current phase %q", models.ErrInvalidPhase, current)
	}

	from, to := current.Index(), target.Index()
	if from >= clientIndex && to < from {
		return Reject, nil
	}
	if target == models.PhaseClient && from != clientIndex {
		return RequireMandat, nil
	}
	return Commit, nil
}

// CanDemote reports whether a lead in phase may still move to an earlier phase.
func CanDemote(phase models.SellerPhase) bool {
	return phase.Index() < clientIndex
}
