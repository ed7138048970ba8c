package ledger

import (
	"fmt"
	"time"

	"wallet-staking-go/internal/models"
	"wallet-staking-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// The ledger mutates exactly one user record per call and validates before
// touching any field, so a failed operation leaves the record untouched.

// Credit increases the named balance and appends a confirmed transaction.
func Credit(user *models.UserRecord, currency models.Currency, amount decimal.Decimal, txType models.TransactionType, now time.Time) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("credit %s %s: %w", amount, currency, store.ErrInvalidAmount)
	}

	before := user.Balance.Get(currency)
	user.Balance.Set(currency, before.Add(amount), now)
	tx := appendTransaction(user, amount, txType, now)

	zap.L().Debug("Balance credited",
		zap.String("wallet", user.WalletAddress),
		zap.String("currency", string(currency)),
		zap.String("amount", amount.String()),
		zap.String("balance_before", before.String()),
		zap.String("balance_after", user.Balance.Get(currency).String()),
		zap.String("tx_id", tx.ID))
	return tx, nil
}

// Debit decreases the named balance, refusing any overdraft, and appends a
// confirmed transaction.
func Debit(user *models.UserRecord, currency models.Currency, amount decimal.Decimal, txType models.TransactionType, now time.Time) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("debit %s %s: %w", amount, currency, store.ErrInvalidAmount)
	}

	before := user.Balance.Get(currency)
	if amount.GreaterThan(before) {
		return nil, fmt.Errorf("debit %s %s from balance %s: %w",
			amount, currency, before, store.ErrInsufficientBalance)
	}

	user.Balance.Set(currency, before.Sub(amount), now)
	tx := appendTransaction(user, amount, txType, now)

	zap.L().Debug("Balance debited",
		zap.String("wallet", user.WalletAddress),
		zap.String("currency", string(currency)),
		zap.String("amount", amount.String()),
		zap.String("balance_before", before.String()),
		zap.String("balance_after", user.Balance.Get(currency).String()),
		zap.String("tx_id", tx.ID))
	return tx, nil
}

// Exchange converts amount of the from currency into the other currency at
// rate (the configured primary→token rate). Both legs apply atomically: all
// checks run before either balance moves, and one exchange transaction
// records the net effect.
func Exchange(user *models.UserRecord, from models.Currency, amount, rate decimal.Decimal, now time.Time) (*models.ExchangeResult, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("exchange %s %s: %w", amount, from, store.ErrInvalidAmount)
	}
	if !rate.IsPositive() {
		return nil, fmt.Errorf("exchange rate %s is not positive", rate)
	}

	to := from.Other()
	var toAmount decimal.Decimal
	if from == models.CurrencyPrimary {
		toAmount = amount.Mul(rate)
	} else {
		toAmount = amount.Div(rate)
	}

	fromBefore := user.Balance.Get(from)
	if amount.GreaterThan(fromBefore) {
		return nil, fmt.Errorf("exchange %s %s from balance %s: %w",
			amount, from, fromBefore, store.ErrInsufficientBalance)
	}

	// All checks passed; apply both legs.
	user.Balance.Set(from, fromBefore.Sub(amount), now)
	user.Balance.Set(to, user.Balance.Get(to).Add(toAmount), now)
	tx := appendTransaction(user, amount, models.TxExchange, now)

	zap.L().Info("Exchange completed",
		zap.String("wallet", user.WalletAddress),
		zap.String("from", string(from)),
		zap.String("from_amount", amount.String()),
		zap.String("to", string(to)),
		zap.String("to_amount", toAmount.String()),
		zap.String("rate", rate.String()),
		zap.String("tx_id", tx.ID))

	return &models.ExchangeResult{
		FromAmount:  amount,
		ToAmount:    toAmount,
		Rate:        rate,
		Transaction: *tx,
	}, nil
}

// appendTransaction writes one immutable confirmed entry to the user's
// history. In-process operations settle synchronously, so entries are born
// confirmed.
func appendTransaction(user *models.UserRecord, amount decimal.Decimal, txType models.TransactionType, now time.Time) *models.Transaction {
	user.Transactions = append(user.Transactions, models.Transaction{
		ID:        uuid.New().String(),
		From:      user.WalletAddress,
		Amount:    amount,
		Type:      txType,
		Timestamp: now,
		Status:    models.TxConfirmed,
	})
	return &user.Transactions[len(user.Transactions)-1]
}
