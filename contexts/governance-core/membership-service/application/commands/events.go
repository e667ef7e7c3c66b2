package commands

import (
	"time"

	"polity/internal/shared/events"
)

// Permission names consumed from the authorization service. Kept as local
// constants so this context does not import authz domain types.
const permissionManageMembers = "governance.members.manage"

func newMembershipEnvelope(
	eventID string,
	eventType string,
	account string,
	occurredAt time.Time,
	data map[string]any,
) (events.Envelope, error) {
	// Membership events are partitioned by account for stable per-account
	// ordering on consumers.
	return events.New(eventID, eventType, "membership-service", "account", account, occurredAt, data)
}
