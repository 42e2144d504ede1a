package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUpstream = errors.New("paypal 503")

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }
func fail(context.Context) error         { return errUpstream }
func succeed(context.Context) error      { return nil }

func newBreaker(t *testing.T, cfg Config) (*CircuitBreaker, *clock, *[]string) {
	t.Helper()
	changes := &[]string{}
	cfg.OnStateChange = func(name string, from, to State) {
		*changes = append(*changes, from.String()+"->"+to.String())
	}
	cb := New("paypal", cfg)
	c := &clock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	cb.now = c.now
	return cb, c, changes
}

func TestCircuitBreaker_Trip(t *testing.T) {
	cb, _, changes := newBreaker(t, Config{Timeout: 10 * time.Second, ReadyToTrip: ConsecutiveFailures(3)})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(ctx, fail), errUpstream)
	}
	assert.Equal(t, StateOpen, cb.State())
	assert.Equal(t, []string{"CLOSED->OPEN"}, *changes)

	called := false
	err := cb.Execute(ctx, func(context.Context) error { called = true; return nil })
	assert.ErrorIs(t, err, ErrOpenState)
	assert.False(t, called, "熔断打开时不应调用下游")
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	cb, clk, changes := newBreaker(t, Config{Timeout: 10 * time.Second, ReadyToTrip: ConsecutiveFailures(1)})
	ctx := context.Background()

	require.Error(t, cb.Execute(ctx, fail))
	require.Equal(t, StateOpen, cb.State())

	t.Run("超时后进入半开并探测成功", func(t *testing.T) {
		clk.advance(11 * time.Second)
		assert.Equal(t, StateHalfOpen, cb.State())
		assert.NoError(t, cb.Execute(ctx, succeed))
		assert.Equal(t, StateClosed, cb.State())
	})

	t.Run("半开探测失败立即回到打开", func(t *testing.T) {
		require.Error(t, cb.Execute(ctx, fail))
		clk.advance(11 * time.Second)
		require.Equal(t, StateHalfOpen, cb.State())
		require.Error(t, cb.Execute(ctx, fail))
		assert.Equal(t, StateOpen, cb.State())
	})

	assert.Equal(t, []string{
		"CLOSED->OPEN", "OPEN->HALF_OPEN", "HALF_OPEN->CLOSED",
		"CLOSED->OPEN", "OPEN->HALF_OPEN", "HALF_OPEN->OPEN",
	}, *changes)
}

func TestCircuitBreaker_IsSuccessful(t *testing.T) {
	errDeclined := errors.New("INSTRUMENT_DECLINED")
	cb, _, _ := newBreaker(t, Config{
		ReadyToTrip:  ConsecutiveFailures(1),
		IsSuccessful: func(err error) bool { return err == nil || errors.Is(err, errDeclined) },
	})

	err := cb.Execute(context.Background(), func(context.Context) error { return errDeclined })
	assert.ErrorIs(t, err, errDeclined)
	assert.Equal(t, StateClosed, cb.State(), "业务拒绝不计入失败")
}

func TestCircuitBreaker_IntervalReset(t *testing.T) {
	cb, clk, _ := newBreaker(t, Config{Interval: time.Minute, ReadyToTrip: ConsecutiveFailures(2)})
	ctx := context.Background()

	require.Error(t, cb.Execute(ctx, fail))
	clk.advance(2 * time.Minute)
	require.Error(t, cb.Execute(ctx, fail))

	assert.Equal(t, StateClosed, cb.State(), "窗口过期后计数应清零")
	assert.Equal(t, uint32(1), cb.Counts().ConsecutiveFailures)
}

func TestCircuitBreaker_CanceledContext(t *testing.T) {
	cb := New("paypal", Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := cb.Execute(ctx, succeed)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, uint32(0), cb.Counts().Requests)
}
