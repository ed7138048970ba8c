package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency names one side of the dual balance.
type Currency string

const (
	CurrencyPrimary Currency = "primary"
	CurrencyToken   Currency = "token"
)

// Other returns the opposite side of the dual balance.
func (c Currency) Other() Currency {
	if c == CurrencyPrimary {
		return CurrencyToken
	}
	return CurrencyPrimary
}

// DualBalance holds a user's funds in both denominations.
// Both fields are invariantly non-negative; every mutation stamps LastUpdated.
type DualBalance struct {
	Primary     decimal.Decimal `json:"primary_balance"`
	Token       decimal.Decimal `json:"token_balance"`
	LastUpdated time.Time       `json:"last_updated"`
}

// Get returns the named balance.
func (b *DualBalance) Get(c Currency) decimal.Decimal {
	if c == CurrencyToken {
		return b.Token
	}
	return b.Primary
}

// Set overwrites the named balance and stamps LastUpdated.
func (b *DualBalance) Set(c Currency, v decimal.Decimal, now time.Time) {
	if c == CurrencyToken {
		b.Token = v
	} else {
		b.Primary = v
	}
	b.LastUpdated = now
}

// TransactionType classifies ledger movements.
type TransactionType string

const (
	TxDeposit  TransactionType = "deposit"
	TxWithdraw TransactionType = "withdraw"
	TxExchange TransactionType = "exchange"
	TxStake    TransactionType = "stake"
)

// TransactionStatus is the settlement state of a transaction. In-process
// operations settle synchronously, so durable records are always confirmed
// or failed; pending exists for wire compatibility only.
type TransactionStatus string

const (
	TxPending   TransactionStatus = "pending"
	TxConfirmed TransactionStatus = "confirmed"
	TxFailed    TransactionStatus = "failed"
)

// Transaction is one immutable entry in a user's history. Once appended it is
// never mutated apart from status finalization within the same call.
type Transaction struct {
	ID        string            `json:"id"`
	From      string            `json:"from"`
	To        string            `json:"to,omitempty"`
	Amount    decimal.Decimal   `json:"amount"`
	Type      TransactionType   `json:"type"`
	Timestamp time.Time         `json:"timestamp"`
	Status    TransactionStatus `json:"status"`
	Hash      string            `json:"hash,omitempty"`
}

// ExchangeResult reports both legs of a completed currency exchange.
type ExchangeResult struct {
	FromAmount  decimal.Decimal `json:"from_amount"`
	ToAmount    decimal.Decimal `json:"to_amount"`
	Rate        decimal.Decimal `json:"rate"`
	Transaction Transaction     `json:"transaction"`
}
