package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandingCadencesParse(t *testing.T) {
	specs := map[string]string{
		"interest":    InterestEvery,
		"cacheSweep":  CacheSweepEvery,
		"audit":       AuditEvery,
		"perfSample":  PerfSampleEvery,
		"jobSweep":    JobSweepEvery,
		"expirySweep": ExpirySweepEvery,
	}

	s := NewScheduler()
	for name, spec := range specs {
		assert.NoError(t, s.Add(Task{
			Name: name,
			Spec: spec,
			Run:  func(context.Context) error { return nil },
		}), name)
	}

	assert.Equal(t, "@every 24h", InterestEvery, "interest must not run more than once per accrual period")
}

func TestAddRejectsBadSpec(t *testing.T) {
	s := NewScheduler()
	err := s.Add(Task{Name: "broken", Spec: "not a cron spec", Run: func(context.Context) error { return nil }})
	require.Error(t, err)
}

func TestHeartbeatsRecordSuccess(t *testing.T) {
	s := NewScheduler()
	s.runOnce(Task{Name: "ok", Run: func(context.Context) error { return nil }})

	hb := s.Heartbeats()
	require.Contains(t, hb, "ok")
	assert.WithinDuration(t, time.Now(), hb["ok"], time.Minute)
}

func TestPanickingTaskIsContained(t *testing.T) {
	s := NewScheduler()
	assert.NotPanics(t, func() {
		s.runOnce(Task{Name: "boom", Run: func(context.Context) error { panic("boom") }})
	})
	assert.NotContains(t, s.Heartbeats(), "boom")
}
