// Package ledger provides in-memory reference implementations of the
// collaborators an auction consumes: a fungible payment-token ledger with
// operator allowances and a unique-asset registry with custody tracking.
package ledger

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/DrakeEvans/auction-playground/auction"
)

var (
	// ErrInsufficientBalance is returned when a transfer exceeds the
	// payer's balance.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInsufficientAllowance is returned when an operator transfer
	// exceeds the payer's authorization for that operator.
	ErrInsufficientAllowance = errors.New("insufficient allowance")

	// ErrInvalidAmount is returned for zero or negative amounts.
	ErrInvalidAmount = errors.New("amount must be positive")
)

// TokenLedger is an in-memory fungible-token ledger. Transfers on behalf
// of another account are gated by that account's prior allowance for the
// operator, mirroring the allowance model of the wrapped-token ledgers
// auctions settle in.
type TokenLedger struct {
	symbol string

	mu         sync.RWMutex
	balances   map[string]decimal.Decimal
	allowances map[string]map[string]decimal.Decimal // owner -> operator -> remaining
}

// NewTokenLedger creates an empty ledger identified by symbol.
func NewTokenLedger(symbol string) *TokenLedger {
	return &TokenLedger{
		symbol:     symbol,
		balances:   make(map[string]decimal.Decimal),
		allowances: make(map[string]map[string]decimal.Decimal),
	}
}

// Symbol returns the ledger's token identifier.
func (l *TokenLedger) Symbol() string { return l.symbol }

// Faucet credits amount to the account. Test and demo seeding only.
func (l *TokenLedger) Faucet(account string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("faucet %s: %w", amount.String(), ErrInvalidAmount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[account] = l.balances[account].Add(amount)
	return nil
}

// BalanceOf returns the account's current balance.
func (l *TokenLedger) BalanceOf(account string) decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[account]
}

// Allowance returns how much the operator may still move out of owner's
// balance.
func (l *TokenLedger) Allowance(owner, operator string) decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.allowances[owner][operator]
}

// Approve sets the operator's allowance on owner's balance to amount,
// replacing any prior value.
func (l *TokenLedger) Approve(owner, operator string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("approve %s: %w", amount.String(), ErrInvalidAmount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.setAllowance(owner, operator, amount)
	return nil
}

// IncreaseAllowance raises the operator's allowance on owner's balance.
func (l *TokenLedger) IncreaseAllowance(owner, operator string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("increase allowance %s: %w", amount.String(), ErrInvalidAmount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.setAllowance(owner, operator, l.allowances[owner][operator].Add(amount))
	return nil
}

func (l *TokenLedger) setAllowance(owner, operator string, amount decimal.Decimal) {
	byOperator, ok := l.allowances[owner]
	if !ok {
		byOperator = make(map[string]decimal.Decimal)
		l.allowances[owner] = byOperator
	}
	byOperator[operator] = amount
}

// Transfer moves amount between accounts with no allowance check; the
// caller vouches that from is acting on its own balance.
func (l *TokenLedger) Transfer(from, to string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("transfer %s: %w", amount.String(), ErrInvalidAmount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.move(from, to, amount)
}

// TransferFrom moves amount from one account to another on behalf of the
// operator, consuming the payer's allowance. Nothing moves on failure.
func (l *TokenLedger) TransferFrom(operator, from, to string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("transfer %s: %w", amount.String(), ErrInvalidAmount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	remaining := l.allowances[from][operator]
	if remaining.LessThan(amount) {
		return fmt.Errorf("operator %s has %s of %s approved by %s: %w",
			operator, remaining.String(), amount.String(), from, ErrInsufficientAllowance)
	}
	if err := l.move(from, to, amount); err != nil {
		return err
	}
	l.setAllowance(from, operator, remaining.Sub(amount))
	return nil
}

func (l *TokenLedger) move(from, to string, amount decimal.Decimal) error {
	balance := l.balances[from]
	if balance.LessThan(amount) {
		return fmt.Errorf("%s holds %s of %s: %w", from, balance.String(), amount.String(), ErrInsufficientBalance)
	}
	l.balances[from] = balance.Sub(amount)
	l.balances[to] = l.balances[to].Add(amount)
	return nil
}

// EscrowAccount binds a holder identity to this ledger as an
// auction.EscrowLedger: deposits pull from the bidder's allowance into the
// holder's balance, and payouts spend the holder's own balance.
func (l *TokenLedger) EscrowAccount(holder string) auction.EscrowLedger {
	return &escrowAccount{ledger: l, holder: holder}
}

type escrowAccount struct {
	ledger *TokenLedger
	holder string
}

func (e *escrowAccount) TransferIn(from string, amount decimal.Decimal) error {
	return e.ledger.TransferFrom(e.holder, from, e.holder, amount)
}

func (e *escrowAccount) TransferOut(to string, amount decimal.Decimal) error {
	return e.ledger.Transfer(e.holder, to, amount)
}
