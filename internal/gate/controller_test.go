package gate_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"mmfc-attendance/internal/gate"
)

type mockStore struct {
	mock.Mock
	gets int64
}

func (m *mockStore) GetGate(ctx context.Context) (bool, error) {
	atomic.AddInt64(&m.gets, 1)
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) SetGate(ctx context.Context, open bool) error {
	args := m.Called(ctx, open)
	return args.Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (p *mockPublisher) PublishGateChanged(open bool) error {
	args := p.Called(open)
	return args.Error(0)
}

func TestRefreshUpdatesCachedState(t *testing.T) {
	db := new(mockStore)
	controller := gate.NewController(db, nil, nil)

	db.On("GetGate", mock.Anything).Return(true, nil).Once()

	open, err := controller.Refresh(context.Background())

	assert.NoError(t, err)
	assert.True(t, open)
	assert.True(t, controller.IsOpen())
}

func TestRefreshFailureKeepsCachedState(t *testing.T) {
	db := new(mockStore)
	controller := gate.NewController(db, nil, nil)

	db.On("GetGate", mock.Anything).Return(true, nil).Once()
	_, err := controller.Refresh(context.Background())
	assert.NoError(t, err)

	db.On("GetGate", mock.Anything).Return(false, errors.New("connection reset")).Once()
	_, err = controller.Refresh(context.Background())

	assert.Error(t, err)
	assert.True(t, controller.IsOpen())
}

func TestToggleWritesThenUpdatesAndPublishes(t *testing.T) {
	db := new(mockStore)
	events := new(mockPublisher)
	controller := gate.NewController(db, events, nil)

	db.On("SetGate", mock.Anything, true).Return(nil)
	events.On("PublishGateChanged", true).Return(nil)

	err := controller.Toggle(context.Background(), true)

	assert.NoError(t, err)
	assert.True(t, controller.IsOpen())
	db.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestToggleFailureLeavesStateUnchanged(t *testing.T) {
	db := new(mockStore)
	events := new(mockPublisher)
	controller := gate.NewController(db, events, nil)

	db.On("SetGate", mock.Anything, true).Return(errors.New("connection reset"))

	err := controller.Toggle(context.Background(), true)

	assert.Error(t, err)
	assert.False(t, controller.IsOpen())
	events.AssertNotCalled(t, "PublishGateChanged", mock.Anything)
}

func TestToggleSurvivesPublishFailure(t *testing.T) {
	db := new(mockStore)
	events := new(mockPublisher)
	controller := gate.NewController(db, events, nil)

	db.On("SetGate", mock.Anything, false).Return(nil)
	events.On("PublishGateChanged", false).Return(errors.New("broker down"))

	err := controller.Toggle(context.Background(), false)

	assert.NoError(t, err)
	assert.False(t, controller.IsOpen())
}

func TestStartPollsAtInterval(t *testing.T) {
	db := new(mockStore)
	controller := gate.NewController(db, nil, nil)
	controller.Interval = 10 * time.Millisecond

	db.On("GetGate", mock.Anything).Return(true, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	controller.Start(ctx)

	assert.Eventually(t, controller.IsOpen, time.Second, 5*time.Millisecond)
	// At least one tick beyond the initial refresh.
	assert.Eventually(t, func() bool {
		return atomic.LoadInt64(&db.gets) >= 2
	}, time.Second, 5*time.Millisecond)
}
