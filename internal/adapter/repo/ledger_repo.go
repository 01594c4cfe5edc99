package repo

import (
	"context"

	"github.com/lefilcompany/creator-leap-studio-sub000/internal/domain"
	"github.com/lefilcompany/creator-leap-studio-sub000/internal/infra"
	"github.com/lefilcompany/creator-leap-studio-sub000/internal/sqlinline"
)

// CreditLedgerPG implements domain.CreditLedger on PostgreSQL. Every mutation
// is a single statement that updates the balance and appends the ledger entry
// together, so concurrent callers serialize on the organization row.
type CreditLedgerPG struct {
	sql infra.SQLExecutor
}

// NewCreditLedger creates a ledger backed by the given executor.
func NewCreditLedger(sql infra.SQLExecutor) *CreditLedgerPG {
	return &CreditLedgerPG{sql: sql}
}

// Reserve debits units for a job. When the balance cannot cover the units the
// conditional update matches nothing and the current balance is reported back
// in a *domain.InsufficientCreditsError.
func (l *CreditLedgerPG) Reserve(ctx context.Context, orgID string, units int64, jobID string) (domain.BalanceSnapshot, error) {
	row := l.sql.QueryRow(ctx, sqlinline.QReserveCredits, orgID, units, "video generation", jobID)
	var snap domain.BalanceSnapshot
	if err := row.Scan(&snap.Before, &snap.After); err != nil {
		if infra.IsNoRows(err) {
			available, balErr := l.Balance(ctx, orgID)
			if balErr != nil {
				return domain.BalanceSnapshot{}, balErr
			}
			return domain.BalanceSnapshot{}, &domain.InsufficientCreditsError{Required: units, Available: available}
		}
		return domain.BalanceSnapshot{}, err
	}
	return snap, nil
}

// Refund credits units back for a job. The statement matches nothing when a
// refund for the job already exists, which surfaces as ErrRefundAlreadyIssued.
func (l *CreditLedgerPG) Refund(ctx context.Context, orgID string, units int64, jobID, reason string) (domain.BalanceSnapshot, error) {
	row := l.sql.QueryRow(ctx, sqlinline.QRefundCredits, orgID, units, "video generation refund", jobID, reason)
	var snap domain.BalanceSnapshot
	if err := row.Scan(&snap.Before, &snap.After); err != nil {
		if infra.IsNoRows(err) {
			return domain.BalanceSnapshot{}, domain.ErrRefundAlreadyIssued
		}
		return domain.BalanceSnapshot{}, err
	}
	return snap, nil
}

// Balance returns the organization's current credit balance.
func (l *CreditLedgerPG) Balance(ctx context.Context, orgID string) (int64, error) {
	row := l.sql.QueryRow(ctx, sqlinline.QSelectCreditBalance, orgID)
	var balance int64
	if err := row.Scan(&balance); err != nil {
		if infra.IsNoRows(err) {
			return 0, domain.ErrNotFound
		}
		return 0, err
	}
	return balance, nil
}

var _ domain.CreditLedger = (*CreditLedgerPG)(nil)
