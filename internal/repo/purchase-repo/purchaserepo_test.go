package purchaserepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GlebRadaev/creator-ledger/internal/domain"
)

var (
	creatorID = uuid.MustParse("7d6f0a3e-1c55-4b7e-9a43-5e2f1f0d9c11")
	now       = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cols      = []string{"id", "creator_id", "amount", "base_price", "status", "earnings_accrued_amount",
		"earnings_pending_until", "earnings_released", "created_at", "updated_at"}
)

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockDB.Close)

	return New(mockDB), mockDB
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRepository_InsertPurchase(t *testing.T) {
	repo, mock := NewMock(t)
	purchase := &domain.Purchase{
		ID:        "pur_1001",
		CreatorID: creatorID,
		Amount:    dec("10.00"),
		BasePrice: decimal.NewNullDecimal(dec("10.00")),
		Status:    domain.PurchaseCompleted,
	}

	tests := []struct {
		name        string
		mockSetup   func()
		expectedErr error
	}{
		{
			name: "Inserted or already present",
			mockSetup: func() {
				mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT (id) DO NOTHING`)).
					WithArgs(purchase.ID, creatorID, purchase.Amount, purchase.BasePrice, domain.PurchaseCompleted).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "Unknown creator",
			mockSetup: func() {
				mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO purchases`)).
					WithArgs(purchase.ID, creatorID, purchase.Amount, purchase.BasePrice, domain.PurchaseCompleted).
					WillReturnError(&pgconn.PgError{Code: "23503"})
			},
			expectedErr: domain.ErrUnknownCreator,
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO purchases`)).
					WithArgs(purchase.ID, creatorID, purchase.Amount, purchase.BasePrice, domain.PurchaseCompleted).
					WillReturnError(errors.New("database error"))
			},
			expectedErr: errors.New("database error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			err := repo.InsertPurchase(context.Background(), purchase)

			if tt.expectedErr != nil {
				assert.EqualError(t, err, tt.expectedErr.Error())
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_MarkAccrued(t *testing.T) {
	repo, mock := NewMock(t)
	earnings := dec("9.00")
	until := now.Add(24 * time.Hour)

	tests := []struct {
		name      string
		mockSetup func()
		expectNil bool
	}{
		{
			name: "First accrual",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1 AND earnings_accrued_amount IS NULL AND status = 'COMPLETED'`)).
					WithArgs("pur_1001", earnings, until).
					WillReturnRows(pgxmock.NewRows(cols).AddRow("pur_1001", creatorID, dec("10.00"),
						decimal.NewNullDecimal(dec("10.00")), domain.PurchaseCompleted, decimal.NewNullDecimal(earnings),
						&until, false, now, now))
			},
		},
		{
			name: "Already accrued",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`earnings_accrued_amount IS NULL`)).
					WithArgs("pur_1001", earnings, until).
					WillReturnError(pgx.ErrNoRows)
			},
			expectNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			result, err := repo.MarkAccrued(context.Background(), "pur_1001", earnings, until)

			require.NoError(t, err)
			if tt.expectNil {
				assert.Nil(t, result)
			} else {
				require.NotNil(t, result)
				assert.True(t, result.Accrued())
				assert.True(t, earnings.Equal(result.EarningsAccruedAmount.Decimal))
				assert.Equal(t, until, *result.EarningsPendingUntil)
				assert.False(t, result.EarningsReleased)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_MarkReleased(t *testing.T) {
	repo, mock := NewMock(t)
	until := now.Add(-time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta(`SET earnings_released = TRUE`)).
		WithArgs("pur_1001").
		WillReturnRows(pgxmock.NewRows(cols).AddRow("pur_1001", creatorID, dec("10.00"), decimal.NullDecimal{},
			domain.PurchaseCompleted, decimal.NewNullDecimal(dec("8.50")), &until, true, now, now))
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1 AND earnings_released = FALSE`)).
		WithArgs("pur_1001").
		WillReturnError(pgx.ErrNoRows)

	first, err := repo.MarkReleased(context.Background(), "pur_1001")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.True(t, first.EarningsReleased)

	second, err := repo.MarkReleased(context.Background(), "pur_1001")
	require.NoError(t, err)
	assert.Nil(t, second)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindMatured(t *testing.T) {
	repo, mock := NewMock(t)
	first := now.Add(-2 * time.Hour)
	second := now.Add(-time.Hour)
	cursor := domain.ReleaseCursor{}

	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY earnings_pending_until, id LIMIT $4`)).
		WithArgs(now, cursor.PendingUntil, cursor.ID, 100).
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow("pur_1", creatorID, dec("10"), decimal.NullDecimal{}, domain.PurchaseCompleted,
				decimal.NewNullDecimal(dec("8.50")), &first, false, now, now).
			AddRow("pur_2", creatorID, dec("20"), decimal.NullDecimal{}, domain.PurchaseCompleted,
				decimal.NewNullDecimal(dec("17.00")), &second, false, now, now))

	result, err := repo.FindMatured(context.Background(), now, cursor, 100)

	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "pur_1", result[0].ID)
	assert.Equal(t, "pur_2", result[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_AccrualTotals(t *testing.T) {
	repo, mock := NewMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`GROUP BY creator_id`)).
		WillReturnRows(pgxmock.NewRows([]string{"creator_id", "accrued", "unreleased"}).
			AddRow(creatorID, dec("26.00"), dec("17.00")))
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE creator_id = $1 AND earnings_accrued_amount IS NOT NULL`)).
		WithArgs(creatorID).
		WillReturnRows(pgxmock.NewRows([]string{"accrued", "unreleased"}).AddRow(dec("26.00"), dec("17.00")))

	totals, err := repo.AccrualTotals(context.Background())
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, creatorID, totals[0].CreatorID)
	assert.True(t, dec("17").Equal(totals[0].Unreleased))

	one, err := repo.CreatorAccrualTotals(context.Background(), creatorID)
	require.NoError(t, err)
	assert.True(t, dec("26").Equal(one.Accrued))

	assert.NoError(t, mock.ExpectationsWereMet())
}
