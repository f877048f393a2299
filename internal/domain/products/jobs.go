package products

import (
	"context"

	"petclinic/internal/platform/jobs"
)

// RegisterJobs agenda el recálculo de status y el reset mensual de requestCount.
func RegisterJobs(s *jobs.Scheduler, svc *Service, statusSpec, resetSpec string) error {
	if err := s.Add("products.refresh_status", statusSpec, func(ctx context.Context) error {
		_, err := svc.RefreshStatuses(ctx)
		return err
	}); err != nil {
		return err
	}
	return s.Add("products.reset_request_counts", resetSpec, func(ctx context.Context) error {
		_, err := svc.ResetRequestCounts(ctx)
		return err
	})
}
