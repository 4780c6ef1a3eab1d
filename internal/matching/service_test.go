package matching_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/coinquest/internal/errs"
	"github.com/MrJamesThe3rd/coinquest/internal/matching"
)

func TestService_Suggest(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	merchantID := uuid.New()
	repo := matching.NewMockRepository(ctrl)
	repo.EXPECT().FindMatch(gomock.Any(), "STARBUCKS #1234").Return(merchantID, nil)

	svc := matching.NewService(repo)

	got, err := svc.Suggest(context.Background(), "  STARBUCKS #1234 ")
	require.NoError(t, err)
	assert.Equal(t, merchantID, got)

	got, err = svc.Suggest(context.Background(), "   ")
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, got)
}

func TestService_Learn(t *testing.T) {
	merchantID := uuid.New()

	tests := []struct {
		name       string
		pattern    string
		merchantID uuid.UUID
		setupMock  func(m *matching.MockRepository)
		wantErr    error
	}{
		{
			name:       "Success",
			pattern:    " starbucks ",
			merchantID: merchantID,
			setupMock: func(m *matching.MockRepository) {
				m.EXPECT().CreateMapping(gomock.Any(), "starbucks", merchantID).Return(nil)
			},
		},
		{
			name:       "EmptyPattern",
			pattern:    "",
			merchantID: merchantID,
			wantErr:    errs.ErrValidation,
		},
		{
			name:    "MissingMerchant",
			pattern: "starbucks",
			wantErr: errs.ErrValidation,
		},
		{
			name:       "UnknownMerchant",
			pattern:    "starbucks",
			merchantID: merchantID,
			setupMock: func(m *matching.MockRepository) {
				m.EXPECT().CreateMapping(gomock.Any(), "starbucks", merchantID).Return(errs.ErrInvalidReference)
			},
			wantErr: errs.ErrInvalidReference,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := matching.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			err := matching.NewService(repo).Learn(context.Background(), tt.pattern, tt.merchantID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
		})
	}
}
