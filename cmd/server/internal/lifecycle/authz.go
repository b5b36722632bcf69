package lifecycle

import (
	"errors"

	"github.com/disclosurehub/disclosure-api/disclosure-api/cmd/server/internal/models"
	"github.com/disclosurehub/disclosure-api/disclosure-api/internal/types"
)

var (
	ErrNotAuthorized    = errors.New("actor is not authorized for this operation")
	ErrProgramNotActive = errors.New("program is not accepting reports")
)

// CanAdminister reports whether the actor may reclassify submissions under
// the program: set severity, status, and reward.
func CanAdminister(actor types.Actor, program *models.Program) bool {
	if actor.IsAdmin() {
		return true
	}

	return actor.Kind == types.ActorKindOrganization && actor.ID == program.OrganizationID
}

// CanParticipate reports whether the actor is part of the conversation on a
// submission: the authoring researcher, a listed collaborator (matched by
// email), the owning organization, or an admin. Participant access gates both
// reads and message appends.
func CanParticipate(
	actor types.Actor,
	program *models.Program,
	submission *models.Submission,
) bool {
	if CanAdminister(actor, program) {
		return true
	}

	if actor.Kind != types.ActorKindResearcher {
		return false
	}

	if actor.ID == submission.ResearcherID {
		return true
	}

	return containsFold(submission.Collaborators, actor.Email)
}

// CanSubmit reports whether the researcher may file reports against the
// program: the program must be active, and private programs require an
// invite. Only researchers author reports; a submission is attributed to the
// author's ledger row, which admins and organizations do not have.
func CanSubmit(actor types.Actor, program *models.Program) error {
	if !program.IsActive() {
		return ErrProgramNotActive
	}

	if actor.Kind != types.ActorKindResearcher {
		return ErrNotAuthorized
	}

	if program.Visibility == types.ProgramVisibilityPrivate && !program.Invited(actor.Email) {
		return ErrNotAuthorized
	}

	return nil
}

// CanView reports whether the actor may see the program at all. Private
// programs are hidden from uninvited researchers.
func CanView(actor types.Actor, program *models.Program) bool {
	if CanAdminister(actor, program) {
		return true
	}

	if program.Visibility == types.ProgramVisibilityPublic {
		return true
	}

	return actor.Kind == types.ActorKindResearcher && program.Invited(actor.Email)
}
