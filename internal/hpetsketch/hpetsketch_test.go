package hpetsketch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liumos/internal/pmem"
	"liumos/internal/sched"
)

func TestTickerFiresEveryPeriodTicks(t *testing.T) {
	s := sched.NewScheduler(sched.NewRootProcess(), &pmem.RecordingFlusher{})
	a := sched.NewProcess(nil)
	require.NoError(t, s.RegisterProcess(a))

	ticker := NewTicker(s, 3)
	for i := 0; i < 2; i++ {
		next, err := ticker.Tick()
		require.NoError(t, err)
		assert.Nil(t, next)
	}
	next, err := ticker.Tick()
	require.NoError(t, err)
	assert.Equal(t, a, next)
}
