package lifecycle

import (
	"github.com/disclosurehub/disclosure-api/disclosure-api/internal/types"
)

type (
	// Change is the classification portion of an update, held against the
	// stored submission state. Absent fields mean "not touched".
	Change struct {
		Status   types.Optional[types.SubmissionStatus]
		Severity types.Optional[types.Severity]
		Reward   types.Optional[float64]
	}

	// Stored is the relevant prior state of the submission.
	Stored struct {
		Status   types.SubmissionStatus
		Severity types.Severity
		Points   int
		Reward   *float64
		Resolved bool // ResolvedAt already set
	}

	// Effects is the full ledger consequence of applying a Change. Computed
	// up front so the apply step is a dumb sequence of increments.
	Effects struct {
		// Submission side
		Points        int
		PointsChanged bool
		SetResolvedAt bool

		// Researcher ledger
		ReputationDelta  int
		ReportsAccepted  int
		ReportsRejected  int
		DuplicateReports int
		BountyDelta      float64
		BountyChanged    bool

		// Program ledger
		ProgramResolvedReports int

		// For audit events
		StatusChanged   bool
		SeverityChanged bool
	}
)

// Compute derives the effect set of a Change. Re-submitting the stored value
// of any field is a no-op for that field.
func Compute(stored Stored, change Change) Effects {
	effects := Effects{Points: stored.Points}

	if change.Severity.Defined && change.Severity.Value != nil &&
		*change.Severity.Value != stored.Severity {
		newPoints := PointsForSeverity(*change.Severity.Value)

		effects.SeverityChanged = true
		effects.Points = newPoints
		effects.PointsChanged = newPoints != stored.Points
		effects.ReputationDelta = newPoints - stored.Points
	}

	if change.Status.Defined && change.Status.Value != nil &&
		*change.Status.Value != stored.Status {
		status := *change.Status.Value
		effects.StatusChanged = true

		switch status {
		case types.SubmissionStatusResolved, types.SubmissionStatusUnresolved:
			effects.ReportsAccepted = 1
			effects.ProgramResolvedReports = 1
		case types.SubmissionStatusRejected:
			effects.ReportsRejected = 1
		case types.SubmissionStatusDuplicated:
			effects.DuplicateReports = 1
		case types.SubmissionStatusPending,
			types.SubmissionStatusTriaged,
			types.SubmissionStatusAccepted:
			// no ledger movement
		}

		if status == types.SubmissionStatusResolved && !stored.Resolved {
			effects.SetResolvedAt = true
		}
	}

	if change.Reward.Defined && change.Reward.Value != nil {
		reward := *change.Reward.Value

		var storedReward float64
		if stored.Reward != nil {
			storedReward = *stored.Reward
		}

		if reward != storedReward {
			effects.BountyChanged = true
			effects.BountyDelta = reward - storedReward
		}
	}

	return effects
}
