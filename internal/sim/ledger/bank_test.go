package ledger

import (
	"errors"
	"testing"
)

func TestBank_DepositWithTip(t *testing.T) {
	b := New(0)
	b.DepositWithTip(10, 4, "agent E1.1")
	if b.Balance() != 14 || b.Tips() != 4 {
		t.Fatalf("balance=%d tips=%d", b.Balance(), b.Tips())
	}
	txs := b.Drain()
	if len(txs) != 2 || txs[0].Kind != KindDeposit || txs[1].Kind != KindTip {
		t.Fatalf("txs=%+v", txs)
	}
	if again := b.Drain(); again != nil {
		t.Fatalf("second drain returned %+v", again)
	}
}

func TestBank_WithdrawOverdraft(t *testing.T) {
	b := New(5)
	err := b.Withdraw(10, "jukebox")
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if b.Balance() != 5 {
		t.Fatalf("failed withdraw changed balance: %d", b.Balance())
	}
	if err := b.Withdraw(5, "jukebox"); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if b.Balance() != 0 {
		t.Fatalf("balance=%d", b.Balance())
	}
}

func TestBank_ZeroDepositIgnored(t *testing.T) {
	b := New(0)
	b.DepositWithTip(0, 0, "")
	if len(b.Transactions()) != 0 {
		t.Fatalf("zero deposit recorded")
	}
}
