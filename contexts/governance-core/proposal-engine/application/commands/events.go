package commands

import (
	"strconv"
	"time"

	"polity/internal/shared/events"
)

const permissionManageParams = "governance.params.manage"

func newProposalEnvelope(
	eventID string,
	eventType string,
	proposalID uint64,
	occurredAt time.Time,
	data map[string]any,
) (events.Envelope, error) {
	// Proposal events are partitioned by proposal id so per-proposal
	// consumers observe creation, votes, and execution in order.
	return events.New(
		eventID,
		eventType,
		"proposal-engine",
		"proposal_id",
		strconv.FormatUint(proposalID, 10),
		occurredAt,
		data,
	)
}
