package types

import "github.com/google/uuid"

// ActorKind tags who is acting on a submission. It is resolved once from the
// authenticated credential at the HTTP boundary and passed explicitly; it is
// never inferred from request content.
type ActorKind string

const (
	ActorKindResearcher   ActorKind = "researcher"
	ActorKindOrganization ActorKind = "organization"
	ActorKindAdmin        ActorKind = "admin"
)

type Actor struct {
	Kind ActorKind
	ID   uuid.UUID
	// Display name snapshot recorded on messages
	Name string
	// Used for collaborator matching; empty for admin actors
	Email string
}

func (a Actor) IsAdmin() bool {
	return a.Kind == ActorKindAdmin
}
