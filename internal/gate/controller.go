package gate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mmfc-attendance/internal/logger"
)

type StoreLayer interface {
	GetGate(ctx context.Context) (bool, error)
	SetGate(ctx context.Context, open bool) error
}

type EventPublisher interface {
	PublishGateChanged(open bool) error
}

// Controller caches the singleton gate flag and keeps it fresh with a
// fixed-interval poll. Writes go through Toggle; local state only moves on
// a successful write.
type Controller struct {
	DB       StoreLayer
	Events   EventPublisher
	Logger   *logger.Logger
	Interval time.Duration

	mu       sync.Mutex
	isActive bool
}

func NewController(db StoreLayer, events EventPublisher, log *logger.Logger) *Controller {
	return &Controller{
		DB:       db,
		Events:   events,
		Logger:   log,
		Interval: 15 * time.Second,
	}
}

// Start refreshes once immediately, then on every tick. Each tick fires an
// independent refresh: a slow poll never delays or suppresses the next one.
func (c *Controller) Start(ctx context.Context) {
	go func() {
		c.refresh(ctx)
		ticker := time.NewTicker(c.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				go c.refresh(ctx)
			}
		}
	}()
}

func (c *Controller) refresh(ctx context.Context) {
	open, err := c.DB.GetGate(ctx)
	if err != nil {
		if c.Logger != nil {
			c.Logger.Error("GATE", fmt.Sprintf("Failed to poll gate state: %v", err))
		}
		return
	}
	c.mu.Lock()
	c.isActive = open
	c.mu.Unlock()
}

// IsOpen reports the last known gate state.
func (c *Controller) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isActive
}

// Refresh forces a poll and returns the fetched state.
func (c *Controller) Refresh(ctx context.Context) (bool, error) {
	open, err := c.DB.GetGate(ctx)
	if err != nil {
		return false, err
	}
	c.mu.Lock()
	c.isActive = open
	c.mu.Unlock()
	return open, nil
}

// Toggle upserts the gate flag. On failure the cached state is left exactly
// as it was and the error is surfaced to the caller.
func (c *Controller) Toggle(ctx context.Context, open bool) error {
	if err := c.DB.SetGate(ctx, open); err != nil {
		return err
	}
	c.mu.Lock()
	c.isActive = open
	c.mu.Unlock()

	if c.Events != nil {
		if err := c.Events.PublishGateChanged(open); err != nil && c.Logger != nil {
			c.Logger.Warn("GATE", fmt.Sprintf("Failed to publish gate change event: %v", err))
		}
	}
	return nil
}
