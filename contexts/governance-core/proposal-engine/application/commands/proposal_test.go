package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"polity/contexts/governance-core/proposal-engine/adapters/memory"
	"polity/contexts/governance-core/proposal-engine/domain/entities"
	domainerrors "polity/contexts/governance-core/proposal-engine/domain/errors"
	"polity/contexts/governance-core/proposal-engine/ports"
)

type fakeDirectory struct {
	status map[string]ports.MemberStatus
	power  map[string]uint64
	total  uint64
}

func (f fakeDirectory) MemberStatus(_ context.Context, account string) (ports.MemberStatus, error) {
	return f.status[account], nil
}

func (f fakeDirectory) VotingPower(_ context.Context, account string) (uint64, error) {
	return f.power[account], nil
}

func (f fakeDirectory) TotalVotingPower(context.Context) (uint64, error) {
	return f.total, nil
}

type stubAuthorizer struct {
	err error
}

func (s stubAuthorizer) RequirePermission(context.Context, string, string) error {
	return s.err
}

// stepClock lets tests move time forward across the voting window.
type stepClock struct {
	now time.Time
}

func (c *stepClock) Now() time.Time { return c.now }

func (c *stepClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func eligibleVoters() fakeDirectory {
	return fakeDirectory{
		status: map[string]ports.MemberStatus{
			"alice": {Approved: true, CompliancePassed: true},
			"bob":   {Approved: true, CompliancePassed: true},
		},
		power: map[string]uint64{"alice": 100, "bob": 50},
		total: 150,
	}
}

func newEngine(directory fakeDirectory, clock *stepClock, params entities.Parameters) (ProposalUseCase, *memory.Store) {
	store := memory.NewStore(params)
	uc := ProposalUseCase{
		Proposals:  store,
		Parameters: store,
		Membership: directory,
		Outbox:     store,
		Clock:      clock,
		IDGen:      store,
	}
	return uc, store
}

func defaultParams() entities.Parameters {
	return entities.Parameters{
		VotingPeriod:     100 * time.Second,
		QuorumPercentage: 10,
	}
}

func TestCreateProposalSequentialIDs(t *testing.T) {
	clock := &stepClock{now: time.Date(2026, time.March, 4, 9, 0, 0, 0, time.UTC)}
	uc, _ := newEngine(eligibleVoters(), clock, defaultParams())

	first, err := uc.CreateProposal(context.Background(), CreateProposalCommand{CallerID: "alice", Description: "fund the library"})
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	second, err := uc.CreateProposal(context.Background(), CreateProposalCommand{CallerID: "bob", Description: "repave the road"})
	if err != nil {
		t.Fatalf("second create failed: %v", err)
	}
	if first.ID != 0 || second.ID != 1 {
		t.Fatalf("ids = %d, %d; want 0, 1", first.ID, second.ID)
	}
	if !first.StartTime.Equal(clock.now) {
		t.Fatalf("start time = %v, want %v", first.StartTime, clock.now)
	}
}

func TestCreateProposalRejectsIneligibleCallers(t *testing.T) {
	directory := eligibleVoters()
	directory.status["carol"] = ports.MemberStatus{Approved: true, CompliancePassed: false}
	directory.status["dave"] = ports.MemberStatus{Approved: true, CompliancePassed: true}
	// dave has no balance and no bonus.
	clock := &stepClock{now: time.Now().UTC()}
	uc, _ := newEngine(directory, clock, defaultParams())

	_, err := uc.CreateProposal(context.Background(), CreateProposalCommand{CallerID: "stranger"})
	if !errors.Is(err, domainerrors.ErrNotMember) {
		t.Fatalf("expected ErrNotMember, got %v", err)
	}
	_, err = uc.CreateProposal(context.Background(), CreateProposalCommand{CallerID: "carol"})
	if !errors.Is(err, domainerrors.ErrNotCompliant) {
		t.Fatalf("expected ErrNotCompliant, got %v", err)
	}
	_, err = uc.CreateProposal(context.Background(), CreateProposalCommand{CallerID: "dave"})
	if !errors.Is(err, domainerrors.ErrZeroVotingPower) {
		t.Fatalf("expected ErrZeroVotingPower, got %v", err)
	}
}

func TestCastVoteAddsFullWeightOnce(t *testing.T) {
	clock := &stepClock{now: time.Date(2026, time.March, 4, 9, 0, 0, 0, time.UTC)}
	uc, store := newEngine(eligibleVoters(), clock, defaultParams())

	proposal, err := uc.CreateProposal(context.Background(), CreateProposalCommand{CallerID: "alice", Description: "x"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	result, err := uc.CastVote(context.Background(), CastVoteCommand{CallerID: "alice", ProposalID: proposal.ID, Support: true})
	if err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	if result.Weight != 100 || result.ForVotes != 100 || result.AgainstVotes != 0 {
		t.Fatalf("unexpected tally: %+v", result)
	}

	_, err = uc.CastVote(context.Background(), CastVoteCommand{CallerID: "alice", ProposalID: proposal.ID, Support: false})
	if !errors.Is(err, domainerrors.ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted, got %v", err)
	}
	stored, err := store.GetProposal(context.Background(), proposal.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.ForVotes != 100 || stored.AgainstVotes != 0 {
		t.Fatalf("rejected vote must not change tallies: %+v", stored)
	}
}

func TestCastVoteWindowFollowsCurrentPeriod(t *testing.T) {
	clock := &stepClock{now: time.Date(2026, time.March, 4, 9, 0, 0, 0, time.UTC)}
	uc, _ := newEngine(eligibleVoters(), clock, defaultParams())
	params := ParameterUseCase{
		Parameters: uc.Parameters,
		Authorizer: stubAuthorizer{},
		Outbox:     uc.Outbox,
		Clock:      clock,
		IDGen:      uc.IDGen,
	}

	proposal, err := uc.CreateProposal(context.Background(), CreateProposalCommand{CallerID: "alice", Description: "x"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	clock.advance(150 * time.Second)
	_, err = uc.CastVote(context.Background(), CastVoteCommand{CallerID: "bob", ProposalID: proposal.ID, Support: true})
	if !errors.Is(err, domainerrors.ErrVotingClosed) {
		t.Fatalf("expected ErrVotingClosed, got %v", err)
	}

	// Extending the global period reopens the in-flight window.
	if _, err := params.SetVotingPeriod(context.Background(), SetVotingPeriodCommand{ActorID: "root", VotingPeriod: 200 * time.Second}); err != nil {
		t.Fatalf("set period failed: %v", err)
	}
	if _, err := uc.CastVote(context.Background(), CastVoteCommand{CallerID: "bob", ProposalID: proposal.ID, Support: true}); err != nil {
		t.Fatalf("vote after extension failed: %v", err)
	}
}

func TestExecuteProposalLifecycle(t *testing.T) {
	clock := &stepClock{now: time.Date(2026, time.March, 4, 9, 0, 0, 0, time.UTC)}
	uc, _ := newEngine(eligibleVoters(), clock, defaultParams())

	proposal, err := uc.CreateProposal(context.Background(), CreateProposalCommand{CallerID: "alice", Description: "x"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := uc.CastVote(context.Background(), CastVoteCommand{CallerID: "alice", ProposalID: proposal.ID, Support: true}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	_, err = uc.ExecuteProposal(context.Background(), ExecuteProposalCommand{CallerID: "anyone", ProposalID: proposal.ID})
	if !errors.Is(err, domainerrors.ErrVotingNotElapsed) {
		t.Fatalf("expected ErrVotingNotElapsed while open, got %v", err)
	}

	clock.advance(101 * time.Second)
	result, err := uc.ExecuteProposal(context.Background(), ExecuteProposalCommand{CallerID: "anyone", ProposalID: proposal.ID})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !result.Proposal.Executed {
		t.Fatal("proposal must be marked executed")
	}
	if result.QuorumVotes != 15 || result.TotalVotes != 100 {
		t.Fatalf("unexpected outcome figures: %+v", result)
	}

	_, err = uc.ExecuteProposal(context.Background(), ExecuteProposalCommand{CallerID: "anyone", ProposalID: proposal.ID})
	if !errors.Is(err, domainerrors.ErrAlreadyExecuted) {
		t.Fatalf("expected ErrAlreadyExecuted, got %v", err)
	}

	// Tallies are frozen after the window; late votes are rejected.
	_, err = uc.CastVote(context.Background(), CastVoteCommand{CallerID: "bob", ProposalID: proposal.ID, Support: false})
	if !errors.Is(err, domainerrors.ErrVotingClosed) {
		t.Fatalf("expected ErrVotingClosed after execution, got %v", err)
	}
}

func TestExecuteProposalQuorumBoundary(t *testing.T) {
	directory := eligibleVoters()
	// Quorum floor: 151 * 10 / 100 truncates to 15.
	directory.total = 151
	directory.power["alice"] = 15
	clock := &stepClock{now: time.Date(2026, time.March, 4, 9, 0, 0, 0, time.UTC)}
	uc, _ := newEngine(directory, clock, defaultParams())

	proposal, err := uc.CreateProposal(context.Background(), CreateProposalCommand{CallerID: "alice", Description: "x"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := uc.CastVote(context.Background(), CastVoteCommand{CallerID: "alice", ProposalID: proposal.ID, Support: true}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	clock.advance(101 * time.Second)
	result, err := uc.ExecuteProposal(context.Background(), ExecuteProposalCommand{CallerID: "anyone", ProposalID: proposal.ID})
	if err != nil {
		t.Fatalf("execute at exact quorum must pass: %v", err)
	}
	if result.TotalVotes != result.QuorumVotes {
		t.Fatalf("expected boundary case, got total=%d quorum=%d", result.TotalVotes, result.QuorumVotes)
	}
}

func TestExecuteProposalQuorumNotReached(t *testing.T) {
	directory := eligibleVoters()
	directory.power["bob"] = 14
	clock := &stepClock{now: time.Date(2026, time.March, 4, 9, 0, 0, 0, time.UTC)}
	uc, _ := newEngine(directory, clock, defaultParams())

	proposal, err := uc.CreateProposal(context.Background(), CreateProposalCommand{CallerID: "bob", Description: "x"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := uc.CastVote(context.Background(), CastVoteCommand{CallerID: "bob", ProposalID: proposal.ID, Support: true}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	clock.advance(101 * time.Second)
	_, err = uc.ExecuteProposal(context.Background(), ExecuteProposalCommand{CallerID: "anyone", ProposalID: proposal.ID})
	if !errors.Is(err, domainerrors.ErrQuorumNotReached) {
		t.Fatalf("expected ErrQuorumNotReached with 14 < 15, got %v", err)
	}
}

func TestExecuteProposalTieFails(t *testing.T) {
	directory := eligibleVoters()
	directory.power["alice"] = 50
	clock := &stepClock{now: time.Date(2026, time.March, 4, 9, 0, 0, 0, time.UTC)}
	uc, _ := newEngine(directory, clock, defaultParams())

	proposal, err := uc.CreateProposal(context.Background(), CreateProposalCommand{CallerID: "alice", Description: "x"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := uc.CastVote(context.Background(), CastVoteCommand{CallerID: "alice", ProposalID: proposal.ID, Support: true}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	if _, err := uc.CastVote(context.Background(), CastVoteCommand{CallerID: "bob", ProposalID: proposal.ID, Support: false}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	clock.advance(101 * time.Second)
	_, err = uc.ExecuteProposal(context.Background(), ExecuteProposalCommand{CallerID: "anyone", ProposalID: proposal.ID})
	if !errors.Is(err, domainerrors.ErrProposalNotPassing) {
		t.Fatalf("expected ErrProposalNotPassing on a 50/50 tie, got %v", err)
	}
}

func TestSetQuorumPercentageBounds(t *testing.T) {
	clock := &stepClock{now: time.Date(2026, time.March, 4, 9, 0, 0, 0, time.UTC)}
	_, store := newEngine(eligibleVoters(), clock, defaultParams())
	params := ParameterUseCase{
		Parameters: store,
		Authorizer: stubAuthorizer{},
		Outbox:     store,
		Clock:      clock,
		IDGen:      store,
	}

	if _, err := params.SetQuorumPercentage(context.Background(), SetQuorumCommand{ActorID: "root", QuorumPercentage: 0}); !errors.Is(err, domainerrors.ErrInvalidQuorum) {
		t.Fatalf("quorum 0 must be rejected, got %v", err)
	}
	if _, err := params.SetQuorumPercentage(context.Background(), SetQuorumCommand{ActorID: "root", QuorumPercentage: 101}); !errors.Is(err, domainerrors.ErrInvalidQuorum) {
		t.Fatalf("quorum 101 must be rejected, got %v", err)
	}
	updated, err := params.SetQuorumPercentage(context.Background(), SetQuorumCommand{ActorID: "root", QuorumPercentage: 100})
	if err != nil {
		t.Fatalf("quorum 100 must be accepted: %v", err)
	}
	if updated.QuorumPercentage != 100 {
		t.Fatalf("quorum = %d, want 100", updated.QuorumPercentage)
	}

	forbidden := errors.New("caller lacks required role")
	denied := ParameterUseCase{
		Parameters: store,
		Authorizer: stubAuthorizer{err: forbidden},
		Outbox:     store,
		Clock:      clock,
		IDGen:      store,
	}
	if _, err := denied.SetQuorumPercentage(context.Background(), SetQuorumCommand{ActorID: "mallory", QuorumPercentage: 50}); !errors.Is(err, forbidden) {
		t.Fatalf("expected authorizer error, got %v", err)
	}
}
