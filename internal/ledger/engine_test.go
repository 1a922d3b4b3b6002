package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/folio-erp/folio-erp/internal/shared"
)

type journalFake struct {
	subs map[int64]SubAccount
	rows []Transaction
}

func (j *journalFake) GetSubAccount(_ context.Context, id int64) (SubAccount, error) {
	sub, ok := j.subs[id]
	if !ok {
		return SubAccount{}, shared.NotFoundf("sub-account %d", id)
	}
	return sub, nil
}

func (j *journalFake) InsertTransaction(_ context.Context, txn Transaction) (int64, error) {
	txn.ID = int64(len(j.rows) + 1)
	j.rows = append(j.rows, txn)
	return txn.ID, nil
}

func newJournalFake() *journalFake {
	return &journalFake{subs: map[int64]SubAccount{
		11: {ID: 11, AccountID: 1, CompanyID: 1, Status: SubAccountStatusActive},
		18: {ID: 18, AccountID: 8, CompanyID: 1, Status: SubAccountStatusActive},
		19: {ID: 19, AccountID: 8, CompanyID: 1, Status: SubAccountStatusActive},
		31: {ID: 31, AccountID: 3, CompanyID: 2, Status: SubAccountStatusActive},
	}}
}

func TestEnginePostResolvesAccounts(t *testing.T) {
	engine := NewEngine()
	engine.WithNow(func() time.Time { return time.Date(2025, 3, 10, 16, 45, 12, 0, time.UTC) })
	tx := newJournalFake()

	txn, err := engine.Post(context.Background(), tx, PostingInput{
		SubDebitID:  11,
		SubCreditID: 18,
		Amount:      decimal.RequireFromString("100.456"),
		Type:        "sale",
		RelatedID:   42,
		CompanyID:   1,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), txn.ID)
	require.Equal(t, int64(1), txn.DebitID, "account id resolved from sub-account")
	require.Equal(t, int64(8), txn.CreditID)
	require.True(t, decimal.RequireFromString("100.46").Equal(txn.Amount), "amounts round to 2dp")
	require.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), txn.Date, "dates truncate to midnight")
	require.Len(t, tx.rows, 1)
}

func TestEnginePostRejectsNonPositiveAmount(t *testing.T) {
	engine := NewEngine()
	tx := newJournalFake()

	for _, amount := range []string{"0", "-5"} {
		_, err := engine.Post(context.Background(), tx, PostingInput{
			SubDebitID:  11,
			SubCreditID: 18,
			Amount:      decimal.RequireFromString(amount),
			CompanyID:   1,
		})
		require.ErrorIs(t, err, shared.ErrValidation)
	}
	require.Empty(t, tx.rows)
}

func TestEnginePostRejectsSameAccount(t *testing.T) {
	engine := NewEngine()
	tx := newJournalFake()

	// Subs 18 and 19 live under the same account.
	_, err := engine.Post(context.Background(), tx, PostingInput{
		SubDebitID:  18,
		SubCreditID: 19,
		Amount:      decimal.NewFromInt(10),
		CompanyID:   1,
	})
	require.ErrorIs(t, err, ErrSameAccount)
}

func TestEnginePostRejectsForeignSubAccount(t *testing.T) {
	engine := NewEngine()
	tx := newJournalFake()

	_, err := engine.Post(context.Background(), tx, PostingInput{
		SubDebitID:  11,
		SubCreditID: 31,
		Amount:      decimal.NewFromInt(10),
		CompanyID:   1,
	})
	require.ErrorIs(t, err, shared.ErrForbidden)
	require.Empty(t, tx.rows)
}

func TestEnginePostRequiresCompany(t *testing.T) {
	engine := NewEngine()
	_, err := engine.Post(context.Background(), newJournalFake(), PostingInput{
		SubDebitID:  11,
		SubCreditID: 18,
		Amount:      decimal.NewFromInt(10),
	})
	require.ErrorIs(t, err, shared.ErrTenant)
}

func TestNormalizeDate(t *testing.T) {
	loc := time.FixedZone("BST", 6*3600)
	in := time.Date(2025, 3, 10, 2, 15, 0, 0, loc)
	require.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), NormalizeDate(in))
}
