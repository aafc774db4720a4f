package matching_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/budgetwise/internal/bill"
	"github.com/MrJamesThe3rd/budgetwise/internal/matching"
)

func TestService_Suggest(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := matching.NewMockRepository(ctrl)
	svc := matching.NewService(repo)

	repo.EXPECT().FindCategory(gomock.Any(), "Vodafone Fibra").Return("Utilities", nil)

	got, err := svc.Suggest(context.Background(), "  Vodafone Fibra ")
	require.NoError(t, err)
	assert.Equal(t, "Utilities", got)

	got, err = svc.Suggest(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestService_Learn(t *testing.T) {
	type args struct {
		pattern  string
		category string
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *matching.MockRepository)
		wantErr   error
	}

	dbErr := errors.New("connection reset")

	tests := []testCase{
		{
			name: "TrimsAndStores",
			args: args{pattern: " vodafone ", category: " Utilities"},
			setupMock: func(m *matching.MockRepository) {
				m.EXPECT().CreateRule(gomock.Any(), "vodafone", "Utilities").Return(nil)
			},
		},
		{
			name:    "EmptyPattern",
			args:    args{pattern: "", category: "Utilities"},
			wantErr: bill.ErrValidation,
		},
		{
			name:    "EmptyCategory",
			args:    args{pattern: "gym", category: " "},
			wantErr: bill.ErrValidation,
		},
		{
			name: "StoreError",
			args: args{pattern: "gym", category: "Health"},
			setupMock: func(m *matching.MockRepository) {
				m.EXPECT().CreateRule(gomock.Any(), "gym", "Health").Return(dbErr)
			},
			wantErr: dbErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := matching.NewMockRepository(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			err := matching.NewService(repo).Learn(context.Background(), tt.args.pattern, tt.args.category)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			assert.NoError(t, err)
		})
	}
}
