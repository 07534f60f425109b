// Package ledger keeps the bar's money.
package ledger

import (
	"errors"
	"fmt"
)

var ErrInsufficientFunds = errors.New("ledger: insufficient funds")

type Kind string

const (
	KindDeposit  Kind = "deposit"
	KindTip      Kind = "tip"
	KindWithdraw Kind = "withdraw"
)

type Transaction struct {
	Seq    uint64 `json:"seq"`
	Kind   Kind   `json:"kind"`
	Amount int    `json:"amount"`
	Memo   string `json:"memo,omitempty"`
}

// Bank is not safe for concurrent use; the world loop owns it.
type Bank struct {
	balance   int
	tips      int
	nextSeq   uint64
	txs       []Transaction
	undrained int
}

func New(opening int) *Bank { return &Bank{balance: opening} }

func (b *Bank) Balance() int { return b.balance }
func (b *Bank) Tips() int    { return b.tips }

func (b *Bank) record(kind Kind, amount int, memo string) {
	b.nextSeq++
	b.txs = append(b.txs, Transaction{Seq: b.nextSeq, Kind: kind, Amount: amount, Memo: memo})
	b.undrained++
}

func (b *Bank) Deposit(amount int, memo string) {
	if amount <= 0 {
		return
	}
	b.balance += amount
	b.record(KindDeposit, amount, memo)
}

func (b *Bank) DepositWithTip(amount, tip int, memo string) {
	b.Deposit(amount, memo)
	if tip > 0 {
		b.balance += tip
		b.tips += tip
		b.record(KindTip, tip, memo)
	}
}

func (b *Bank) Withdraw(amount int, memo string) error {
	if amount < 0 {
		return fmt.Errorf("ledger: negative withdraw %d", amount)
	}
	if amount > b.balance {
		return fmt.Errorf("withdraw %d from %d: %w", amount, b.balance, ErrInsufficientFunds)
	}
	b.balance -= amount
	b.record(KindWithdraw, amount, memo)
	return nil
}

func (b *Bank) Transactions() []Transaction {
	out := make([]Transaction, len(b.txs))
	copy(out, b.txs)
	return out
}

// Drain returns transactions recorded since the previous Drain.
func (b *Bank) Drain() []Transaction {
	if b.undrained == 0 {
		return nil
	}
	out := make([]Transaction, b.undrained)
	copy(out, b.txs[len(b.txs)-b.undrained:])
	b.undrained = 0
	return out
}

// Restore resets the bank to a snapshotted balance with an empty history.
func (b *Bank) Restore(balance, tips int, nextSeq uint64) {
	b.balance = balance
	b.tips = tips
	b.nextSeq = nextSeq
	b.txs = nil
	b.undrained = 0
}

func (b *Bank) NextSeq() uint64 { return b.nextSeq }
