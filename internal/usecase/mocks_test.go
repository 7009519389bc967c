package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/tictactoe-league/internal/entity"
)

type mockRefreshTrigger struct {
	mock.Mock
}

func (that *mockRefreshTrigger) TriggerAverageMovesRefresh() {
	that.Called()
}

type mockScoreRepo struct {
	mock.Mock
}

func (that *mockScoreRepo) Append(ctx context.Context, score *entity.Score) error {
	args := that.Called(ctx, score)
	return args.Error(0)
}

func (that *mockScoreRepo) List(ctx context.Context) ([]*entity.Score, error) {
	args := that.Called(ctx)
	return args.Get(0).([]*entity.Score), args.Error(1)
}

func (that *mockScoreRepo) ListByPlayer(ctx context.Context, name string) ([]*entity.Score, error) {
	args := that.Called(ctx, name)
	return args.Get(0).([]*entity.Score), args.Error(1)
}
