package transaction_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/coinquest/internal/errs"
	"github.com/MrJamesThe3rd/coinquest/internal/transaction"
)

func validParams() transaction.CreateParams {
	return transaction.CreateParams{
		Date:       time.Date(2023, 5, 1, 8, 30, 0, 0, time.UTC),
		Type:       transaction.TypeExpense,
		Amount:     decimal.RequireFromString("45.99"),
		CategoryID: uuid.New(),
		MerchantID: uuid.New(),
		Note:       "Weekly groceries",
	}
}

func TestService_Create(t *testing.T) {
	type testCase struct {
		name      string
		params    func() transaction.CreateParams
		setupMock func(m *transaction.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name:   "Success",
			params: validParams,
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *transaction.Transaction) error {
						tx.ID = uuid.New()
						tx.CreatedAt = time.Now()
						return nil
					})
			},
		},
		{
			name: "NegativeAmount",
			params: func() transaction.CreateParams {
				p := validParams()
				p.Amount = decimal.RequireFromString("-1")
				return p
			},
			wantErr: errs.ErrValidation,
		},
		{
			name: "TooManyDecimals",
			params: func() transaction.CreateParams {
				p := validParams()
				p.Amount = decimal.RequireFromString("0.001")
				return p
			},
			wantErr: errs.ErrValidation,
		},
		{
			name: "UnknownType",
			params: func() transaction.CreateParams {
				p := validParams()
				p.Type = "transfer"
				return p
			},
			wantErr: errs.ErrValidation,
		},
		{
			name: "MissingCategory",
			params: func() transaction.CreateParams {
				p := validParams()
				p.CategoryID = uuid.Nil
				return p
			},
			wantErr: errs.ErrValidation,
		},
		{
			name: "MissingDate",
			params: func() transaction.CreateParams {
				p := validParams()
				p.Date = time.Time{}
				return p
			},
			wantErr: errs.ErrValidation,
		},
		{
			name:   "DanglingReference",
			params: validParams,
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					Return(errs.ErrInvalidReference)
			},
			wantErr: errs.ErrInvalidReference,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := transaction.NewService(repo)
			got, err := svc.Create(context.Background(), tt.params())

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, got.ID)
			assert.Equal(t, "45.99", got.Amount.String())
		})
	}
}

func TestService_AmountScale(t *testing.T) {
	tests := []struct {
		amount  string
		wantErr bool
	}{
		{amount: "12.5"},
		{amount: "12.500"},
		{amount: "0.01"},
		{amount: "0.001", wantErr: true},
		{amount: "19.999", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := transaction.NewMockRepository(ctrl)

			if !tt.wantErr {
				repo.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(nil)
			}

			p := validParams()
			p.Amount = decimal.RequireFromString(tt.amount)

			_, err := transaction.NewService(repo).Create(context.Background(), p)
			if tt.wantErr {
				assert.ErrorIs(t, err, errs.ErrValidation)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().
		ListTransactions(gomock.Any(), transaction.ListFilter{}).
		Return([]*transaction.Transaction{{ID: uuid.New()}, {ID: uuid.New()}}, nil)

	got, err := transaction.NewService(repo).List(context.Background(), transaction.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestService_Update(t *testing.T) {
	t.Run("NotFound", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := transaction.NewMockRepository(ctrl)
		repo.EXPECT().UpdateTransaction(gomock.Any(), gomock.Any()).Return(transaction.ErrNotFound)

		p := validParams()
		tx := &transaction.Transaction{
			ID:         uuid.New(),
			Date:       p.Date,
			Type:       p.Type,
			Amount:     p.Amount,
			CategoryID: p.CategoryID,
			MerchantID: p.MerchantID,
		}

		err := transaction.NewService(repo).Update(context.Background(), tx)
		assert.ErrorIs(t, err, transaction.ErrNotFound)
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("RejectedBeforeStore", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := transaction.NewMockRepository(ctrl)

		err := transaction.NewService(repo).Update(context.Background(), &transaction.Transaction{ID: uuid.New()})
		assert.ErrorIs(t, err, errs.ErrValidation)
	})
}

func TestService_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	id := uuid.New()
	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().DeleteTransaction(gomock.Any(), id).Return(transaction.ErrNotFound)

	err := transaction.NewService(repo).Delete(context.Background(), id)
	assert.ErrorIs(t, err, transaction.ErrNotFound)
}

func TestService_CreateBatch(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := transaction.NewMockRepository(ctrl)
		repo.EXPECT().CreateTransactions(gomock.Any(), gomock.Len(2)).Return(nil)

		txs, err := transaction.NewService(repo).CreateBatch(context.Background(), []transaction.CreateParams{validParams(), validParams()})
		require.NoError(t, err)
		assert.Len(t, txs, 2)
		assert.Equal(t, transaction.TypeExpense, txs[0].Type)
	})

	t.Run("InvalidEntryAbortsAll", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := transaction.NewMockRepository(ctrl)

		bad := validParams()
		bad.Amount = decimal.NewFromInt(-5)

		_, err := transaction.NewService(repo).CreateBatch(context.Background(), []transaction.CreateParams{validParams(), bad})
		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValidation)
		assert.Contains(t, err.Error(), "entry 2")
	})

	t.Run("StoreError", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := transaction.NewMockRepository(ctrl)
		repo.EXPECT().CreateTransactions(gomock.Any(), gomock.Any()).Return(errors.New("db error"))

		_, err := transaction.NewService(repo).CreateBatch(context.Background(), []transaction.CreateParams{validParams()})
		assert.Error(t, err)
	})

	t.Run("Empty", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		txs, err := transaction.NewService(transaction.NewMockRepository(ctrl)).CreateBatch(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, txs)
	})
}
