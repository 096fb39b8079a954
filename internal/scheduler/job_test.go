package scheduler

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobHistoryCap(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < 150; i++ {
		h.AddResult(JobResult{JobName: fmt.Sprintf("run-%d", i), Success: true})
	}

	assert.Len(t, h.Results, 100)
	assert.Equal(t, "run-149", h.Results[99].JobName)
	assert.Equal(t, "run-50", h.Results[0].JobName)
}

func TestJobHistorySuccessRate(t *testing.T) {
	h := &JobHistory{}
	assert.Equal(t, 0.0, h.SuccessRate())

	h.AddResult(JobResult{Success: true})
	h.AddResult(JobResult{Success: true})
	h.AddResult(JobResult{Success: false})

	assert.InDelta(t, 2.0/3.0, h.SuccessRate(), 1e-9)
}

func TestJobHistoryLatest(t *testing.T) {
	h := &JobHistory{}

	_, ok := h.Latest()
	assert.False(t, ok)

	h.AddResult(JobResult{JobName: "first"})
	h.AddResult(JobResult{JobName: "second"})

	last, ok := h.Latest()
	assert.True(t, ok)
	assert.Equal(t, "second", last.JobName)
}
