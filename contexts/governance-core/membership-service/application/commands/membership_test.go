package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"polity/contexts/governance-core/membership-service/adapters/memory"
	domainerrors "polity/contexts/governance-core/membership-service/domain/errors"
)

type stubAuthorizer struct {
	err error
}

func (s stubAuthorizer) RequirePermission(context.Context, string, string) error {
	return s.err
}

type fakeLedger struct {
	balances   map[string]uint64
	compliance map[string]bool
	failWith   error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		balances:   make(map[string]uint64),
		compliance: make(map[string]bool),
	}
}

func (f *fakeLedger) BalanceOf(_ context.Context, account string) (uint64, error) {
	return f.balances[account], nil
}

func (f *fakeLedger) SetComplianceStatus(_ context.Context, account string, status bool) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.compliance[account] = status
	return nil
}

type fixedClock struct {
	now time.Time
}

func (f fixedClock) Now() time.Time { return f.now }

func newMembershipUseCase(store *memory.Store, authorizer stubAuthorizer, ledger *fakeLedger) MembershipUseCase {
	return MembershipUseCase{
		Members:    store,
		Authorizer: authorizer,
		Ledger:     ledger,
		Outbox:     store,
		Clock:      store,
		IDGen:      store,
	}
}

func TestAddMemberStartsNonCompliant(t *testing.T) {
	store := memory.NewStore()
	uc := newMembershipUseCase(store, stubAuthorizer{}, newFakeLedger())

	member, err := uc.AddMember(context.Background(), AddMemberCommand{
		ActorID:          "root",
		Account:          "alice",
		BonusVotingPower: 5,
	})
	if err != nil {
		t.Fatalf("add member failed: %v", err)
	}
	if !member.Approved {
		t.Fatal("new member must be approved")
	}
	if member.CompliancePassed {
		t.Fatal("new member must start with compliance unset")
	}
	if member.BonusVotingPower != 5 {
		t.Fatalf("bonus = %d, want 5", member.BonusVotingPower)
	}

	roll, err := store.ListRoll(context.Background())
	if err != nil {
		t.Fatalf("list roll failed: %v", err)
	}
	if len(roll) != 1 || roll[0] != "alice" {
		t.Fatalf("roll = %v, want [alice]", roll)
	}
}

func TestAddMemberRejectsExistingMember(t *testing.T) {
	store := memory.NewStore()
	uc := newMembershipUseCase(store, stubAuthorizer{}, newFakeLedger())

	if _, err := uc.AddMember(context.Background(), AddMemberCommand{ActorID: "root", Account: "alice"}); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	_, err := uc.AddMember(context.Background(), AddMemberCommand{ActorID: "root", Account: "alice"})
	if !errors.Is(err, domainerrors.ErrAlreadyMember) {
		t.Fatalf("expected ErrAlreadyMember, got %v", err)
	}
}

func TestAddMemberRequiresPermission(t *testing.T) {
	store := memory.NewStore()
	forbidden := errors.New("caller lacks required role")
	uc := newMembershipUseCase(store, stubAuthorizer{err: forbidden}, newFakeLedger())

	_, err := uc.AddMember(context.Background(), AddMemberCommand{ActorID: "mallory", Account: "alice"})
	if !errors.Is(err, forbidden) {
		t.Fatalf("expected authorizer error, got %v", err)
	}
	if _, found, _ := store.GetMember(context.Background(), "alice"); found {
		t.Fatal("rejected add must not write a member record")
	}
}

func TestRemoveMemberKeepsRollEntry(t *testing.T) {
	store := memory.NewStore()
	uc := newMembershipUseCase(store, stubAuthorizer{}, newFakeLedger())

	if _, err := uc.AddMember(context.Background(), AddMemberCommand{ActorID: "root", Account: "alice"}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := uc.RemoveMember(context.Background(), RemoveMemberCommand{ActorID: "root", Account: "alice"}); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	if _, found, _ := store.GetMember(context.Background(), "alice"); found {
		t.Fatal("member record must be gone after removal")
	}
	roll, _ := store.ListRoll(context.Background())
	if len(roll) != 1 || roll[0] != "alice" {
		t.Fatalf("roll must keep the removed address, got %v", roll)
	}

	err := uc.RemoveMember(context.Background(), RemoveMemberCommand{ActorID: "root", Account: "alice"})
	if !errors.Is(err, domainerrors.ErrNotMember) {
		t.Fatalf("expected ErrNotMember on second removal, got %v", err)
	}
}

func TestUpdateComplianceDrivesLedgerInLockstep(t *testing.T) {
	store := memory.NewStore()
	ledger := newFakeLedger()
	uc := newMembershipUseCase(store, stubAuthorizer{}, ledger)

	if _, err := uc.AddMember(context.Background(), AddMemberCommand{ActorID: "root", Account: "alice"}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := uc.UpdateCompliance(context.Background(), UpdateComplianceCommand{ActorID: "root", Account: "alice", Status: true}); err != nil {
		t.Fatalf("update compliance failed: %v", err)
	}

	member, _, _ := store.GetMember(context.Background(), "alice")
	if !member.CompliancePassed {
		t.Fatal("governance flag must be set")
	}
	if !ledger.compliance["alice"] {
		t.Fatal("ledger flag must be set in lockstep")
	}
}

func TestUpdateComplianceLedgerFailureLeavesStateUntouched(t *testing.T) {
	store := memory.NewStore()
	ledger := newFakeLedger()
	uc := newMembershipUseCase(store, stubAuthorizer{}, ledger)

	if _, err := uc.AddMember(context.Background(), AddMemberCommand{ActorID: "root", Account: "alice"}); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	ledger.failWith = errors.New("ledger unavailable")
	err := uc.UpdateCompliance(context.Background(), UpdateComplianceCommand{ActorID: "root", Account: "alice", Status: true})
	if err == nil {
		t.Fatal("expected ledger failure to propagate")
	}
	member, _, _ := store.GetMember(context.Background(), "alice")
	if member.CompliancePassed {
		t.Fatal("governance flag must stay unset when the ledger write fails")
	}
}

func TestDelegateRequiresCompliantMember(t *testing.T) {
	store := memory.NewStore()
	membership := newMembershipUseCase(store, stubAuthorizer{}, newFakeLedger())
	delegate := DelegateUseCase{
		Members:     store,
		Delegations: store,
		Outbox:      store,
		Clock:       store,
		IDGen:       store,
	}

	if _, err := membership.AddMember(context.Background(), AddMemberCommand{ActorID: "root", Account: "alice"}); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	err := delegate.Execute(context.Background(), DelegateCommand{CallerID: "alice", Delegatee: "bob"})
	if !errors.Is(err, domainerrors.ErrNotCompliant) {
		t.Fatalf("expected ErrNotCompliant, got %v", err)
	}
	err = delegate.Execute(context.Background(), DelegateCommand{CallerID: "stranger", Delegatee: "bob"})
	if !errors.Is(err, domainerrors.ErrNotMember) {
		t.Fatalf("expected ErrNotMember, got %v", err)
	}
}

func TestDelegateOverwritesPreviousTarget(t *testing.T) {
	store := memory.NewStore()
	membership := newMembershipUseCase(store, stubAuthorizer{}, newFakeLedger())
	delegate := DelegateUseCase{
		Members:     store,
		Delegations: store,
		Outbox:      store,
		Clock:       fixedClock{now: time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC)},
		IDGen:       store,
	}

	if _, err := membership.AddMember(context.Background(), AddMemberCommand{ActorID: "root", Account: "alice"}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := membership.UpdateCompliance(context.Background(), UpdateComplianceCommand{ActorID: "root", Account: "alice", Status: true}); err != nil {
		t.Fatalf("compliance failed: %v", err)
	}

	if err := delegate.Execute(context.Background(), DelegateCommand{CallerID: "alice", Delegatee: "bob"}); err != nil {
		t.Fatalf("first delegate failed: %v", err)
	}
	if err := delegate.Execute(context.Background(), DelegateCommand{CallerID: "alice", Delegatee: "carol"}); err != nil {
		t.Fatalf("second delegate failed: %v", err)
	}

	delegatee, err := store.GetDelegation(context.Background(), "alice")
	if err != nil {
		t.Fatalf("get delegation failed: %v", err)
	}
	if delegatee != "carol" {
		t.Fatalf("delegatee = %q, want carol", delegatee)
	}

	err = delegate.Execute(context.Background(), DelegateCommand{CallerID: "alice", Delegatee: ""})
	if !errors.Is(err, domainerrors.ErrNullDelegatee) {
		t.Fatalf("expected ErrNullDelegatee, got %v", err)
	}
}
