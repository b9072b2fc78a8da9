package service

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserService_CheckActive(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	tests := []struct {
		name    string
		user    *model.User
		repoErr error
		wantErr error
		anyErr  bool
	}{
		{name: "active user", user: &model.User{ID: userID, IsActive: true}},
		{name: "unknown user", wantErr: model.ErrUserNotFound},
		{name: "deactivated user", user: &model.User{ID: userID}, wantErr: model.ErrUserInactive},
		{name: "lookup failure", repoErr: errors.New("connection refused"), anyErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			svc := NewUserService(repo, zerolog.Nop())
			repo.On("GetByID", ctx, userID).Return(tt.user, tt.repoErr)

			err := svc.CheckActive(ctx, userID)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.anyErr:
				require.Error(t, err)
				assert.NotErrorIs(t, err, model.ErrUserNotFound)
			default:
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestUserService_DeleteUser(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	user := &model.User{ID: userID, Email: "ada@example.com", IsActive: true}

	tests := []struct {
		name        string
		user        *model.User
		hasOrders   bool
		writeErr    error
		wantOutcome model.DeleteOutcome
		wantErr     error
	}{
		{name: "no orders deletes", user: user, wantOutcome: model.DeleteOutcomeDeleted},
		{name: "orders force deactivation", user: user, hasOrders: true, wantOutcome: model.DeleteOutcomeDeactivated},
		{name: "unknown user", wantErr: model.ErrUserNotFound},
		{name: "delete failure", user: user, writeErr: errors.New("fk violation")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			tx := new(MockTx)
			svc := NewUserService(repo, zerolog.Nop())

			repo.On("BeginTx", ctx).Return(tx, nil)
			repo.On("GetForUpdate", ctx, tx, userID).Return(tt.user, nil)
			if tt.user != nil {
				repo.On("HasOrders", ctx, tx, userID).Return(tt.hasOrders, nil)
				if tt.hasOrders {
					repo.On("Deactivate", ctx, tx, userID).Return(tt.writeErr)
				} else {
					repo.On("Delete", ctx, tx, userID).Return(tt.writeErr)
				}
			}
			succeeds := tt.wantErr == nil && tt.writeErr == nil
			if succeeds {
				tx.On("Commit", ctx).Return(nil)
			} else {
				tx.On("Rollback", ctx).Return(nil)
			}

			outcome, err := svc.DeleteUser(ctx, userID)

			if succeeds {
				require.NoError(t, err)
				assert.Equal(t, tt.wantOutcome, outcome)
				assert.True(t, tx.committed)
			} else {
				require.Error(t, err)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				assert.Empty(t, outcome)
				assert.True(t, tx.rolledBack)
			}
			if tt.hasOrders {
				repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
			}
			repo.AssertExpectations(t)
			tx.AssertExpectations(t)
		})
	}
}

func TestUserService_DeleteUser_BeginFailure(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	repo.On("BeginTx", ctx).Return(nil, errors.New("pool closed"))

	_, err := NewUserService(repo, zerolog.Nop()).DeleteUser(ctx, uuid.New())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "pool closed")
}
