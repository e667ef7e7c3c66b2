package queries

import (
	"context"
	"testing"
	"time"

	"polity/contexts/governance-core/membership-service/adapters/memory"
	"polity/contexts/governance-core/membership-service/domain/entities"
)

type fakeLedger struct {
	balances map[string]uint64
}

func (f fakeLedger) BalanceOf(_ context.Context, account string) (uint64, error) {
	return f.balances[account], nil
}

func (f fakeLedger) SetComplianceStatus(context.Context, string, bool) error {
	return nil
}

func seedMember(t *testing.T, store *memory.Store, address string, bonus uint64) {
	t.Helper()
	now := time.Date(2026, time.March, 3, 10, 0, 0, 0, time.UTC)
	if err := store.SaveMember(context.Background(), entities.Member{
		Address:          address,
		Approved:         true,
		CompliancePassed: true,
		BonusVotingPower: bonus,
		AddedAt:          now,
		UpdatedAt:        now,
	}); err != nil {
		t.Fatalf("save member %s failed: %v", address, err)
	}
	if err := store.AppendToRoll(context.Background(), address); err != nil {
		t.Fatalf("append roll %s failed: %v", address, err)
	}
}

func TestVotingPowerCombinesBalanceAndBonus(t *testing.T) {
	store := memory.NewStore()
	ledger := fakeLedger{balances: map[string]uint64{"alice": 100, "bob": 50}}
	seedMember(t, store, "alice", 5)
	seedMember(t, store, "bob", 7)

	power := VotingPowerUseCase{Members: store, Delegations: store, Ledger: ledger}

	got, err := power.VotingPower(context.Background(), "alice")
	if err != nil {
		t.Fatalf("voting power failed: %v", err)
	}
	if got != 105 {
		t.Fatalf("alice power = %d, want 105", got)
	}
}

func TestVotingPowerFollowsDelegationAndDiscardsOwnBonus(t *testing.T) {
	store := memory.NewStore()
	ledger := fakeLedger{balances: map[string]uint64{"alice": 100, "bob": 50}}
	seedMember(t, store, "alice", 5)
	seedMember(t, store, "bob", 7)

	if err := store.SaveDelegation(context.Background(), entities.Delegation{
		Delegator: "alice",
		Delegatee: "bob",
		UpdatedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("save delegation failed: %v", err)
	}

	power := VotingPowerUseCase{Members: store, Delegations: store, Ledger: ledger}

	got, err := power.VotingPower(context.Background(), "alice")
	if err != nil {
		t.Fatalf("voting power failed: %v", err)
	}
	// Delegated weight is bob's balance plus bob's bonus; alice's own
	// balance and bonus drop out entirely.
	if got != 57 {
		t.Fatalf("delegated power = %d, want 57", got)
	}

	bobPower, err := power.VotingPower(context.Background(), "bob")
	if err != nil {
		t.Fatalf("voting power failed: %v", err)
	}
	if bobPower != 57 {
		t.Fatalf("bob power = %d, want 57", bobPower)
	}
}

func TestVotingPowerDelegationIsOneHop(t *testing.T) {
	store := memory.NewStore()
	ledger := fakeLedger{balances: map[string]uint64{"alice": 100, "bob": 50, "carol": 25}}
	seedMember(t, store, "alice", 0)
	seedMember(t, store, "bob", 0)
	seedMember(t, store, "carol", 3)

	for delegator, delegatee := range map[string]string{"alice": "bob", "bob": "carol"} {
		if err := store.SaveDelegation(context.Background(), entities.Delegation{
			Delegator: delegator,
			Delegatee: delegatee,
			UpdatedAt: time.Now().UTC(),
		}); err != nil {
			t.Fatalf("save delegation failed: %v", err)
		}
	}

	power := VotingPowerUseCase{Members: store, Delegations: store, Ledger: ledger}

	got, err := power.VotingPower(context.Background(), "alice")
	if err != nil {
		t.Fatalf("voting power failed: %v", err)
	}
	// Resolution stops at bob; bob's own delegation to carol is not chased.
	if got != 50 {
		t.Fatalf("one-hop power = %d, want 50", got)
	}
}

func TestTotalVotingPowerIncludesRemovedMembers(t *testing.T) {
	store := memory.NewStore()
	ledger := fakeLedger{balances: map[string]uint64{"alice": 100, "bob": 50}}
	seedMember(t, store, "alice", 0)
	seedMember(t, store, "bob", 0)

	power := VotingPowerUseCase{Members: store, Delegations: store, Ledger: ledger}

	total, err := power.TotalVotingPower(context.Background())
	if err != nil {
		t.Fatalf("total failed: %v", err)
	}
	if total != 150 {
		t.Fatalf("total = %d, want 150", total)
	}

	// Removal deletes the record but not the roll entry, so bob's balance
	// still counts toward the aggregate.
	if err := store.RemoveMember(context.Background(), "bob"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	total, err = power.TotalVotingPower(context.Background())
	if err != nil {
		t.Fatalf("total after removal failed: %v", err)
	}
	if total != 150 {
		t.Fatalf("total after removal = %d, want 150", total)
	}
}
