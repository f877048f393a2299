package billing

import (
	"context"

	"petclinic/internal/platform/jobs"
)

func RegisterJobs(s *jobs.Scheduler, svc *Service, overdueSpec string) error {
	return s.Add("billing.mark_overdue", overdueSpec, func(ctx context.Context) error {
		_, err := svc.MarkOverdue(ctx)
		return err
	})
}
