package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRefresher struct {
	calls int32
	err   error
}

func (c *countingRefresher) Refresh(ctx context.Context) error {
	atomic.AddInt32(&c.calls, 1)
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("no deadline")
	}
	return c.err
}

func TestWarmerSchedule(t *testing.T) {
	r := &countingRefresher{}
	w := NewWarmer(r, time.Second)
	require.NoError(t, w.Start("* * * * * *"))
	defer w.Stop()

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&r.calls) >= 1 }, 3*time.Second, 50*time.Millisecond)
}

func TestWarmerRunNow(t *testing.T) {
	r := &countingRefresher{err: errors.New("upstream down")}
	w := NewWarmer(r, 0)
	w.RunNow()
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&r.calls) == 1 }, time.Second, 10*time.Millisecond)
}

func TestWarmerBadSpec(t *testing.T) {
	w := NewWarmer(&countingRefresher{}, 0)
	assert.Error(t, w.Start("every now and then"))
}

func TestWarmerDefaultSpec(t *testing.T) {
	w := NewWarmer(&countingRefresher{}, 0)
	require.NoError(t, w.Start(""))
	w.Stop()
}
