package jobs

import (
	"context"
	"errors"
	"testing"

	"petclinic/internal/platform/logger"
	"petclinic/internal/platform/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestScheduler_AddValidatesSpec(t *testing.T) {
	s := NewScheduler(logger.Nop())

	if err := s.Add("ok", "@every 1m", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Add("disabled", "", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("empty spec should disable, got %v", err)
	}
	if err := s.Add("bad", "not a cron", func(context.Context) error { return nil }); err == nil {
		t.Fatalf("expected error for invalid spec")
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 scheduled job, got %d", s.Len())
	}
}

func TestScheduler_RunRecordsOutcome(t *testing.T) {
	s := NewScheduler(nil)

	calls := 0
	s.Run("scheduler-test-ok", func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			t.Errorf("job ctx should carry a deadline")
		}
		calls++
		return nil
	})
	s.Run("scheduler-test-fail", func(context.Context) error { return errors.New("boom") })

	if calls != 1 {
		t.Fatalf("expected job to run once, got %d", calls)
	}
	if v := testutil.ToFloat64(metrics.JobRuns.WithLabelValues("scheduler-test-ok", "true")); v != 1 {
		t.Fatalf("expected success counter 1, got %v", v)
	}
	if v := testutil.ToFloat64(metrics.JobRuns.WithLabelValues("scheduler-test-fail", "false")); v != 1 {
		t.Fatalf("expected failure counter 1, got %v", v)
	}
}
