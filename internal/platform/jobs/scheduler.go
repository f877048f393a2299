package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"petclinic/internal/platform/logger"
	"petclinic/internal/platform/metrics"

	"github.com/robfig/cron/v3"
)

// Func es un job programado. Recibe un ctx con timeout propio.
type Func func(ctx context.Context) error

// Scheduler envuelve robfig/cron con logging y métricas por job.
type Scheduler struct {
	cron    *cron.Cron
	log     logger.Logger
	timeout time.Duration
}

func NewScheduler(log logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		log:     log,
		timeout: 5 * time.Minute,
	}
}

// Add registra un job. spec acepta el formato estándar de 5 campos y descriptores (@every 1h, @daily).
// spec vacío = job deshabilitado.
func (s *Scheduler) Add(name, spec string, fn Func) error {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		s.log.Info("job disabled", map[string]any{"job": name})
		return nil
	}
	_, err := s.cron.AddFunc(spec, func() { s.Run(name, fn) })
	if err != nil {
		return fmt.Errorf("jobs: schedule %s (%q): %w", name, spec, err)
	}
	return nil
}

// Run ejecuta el job una vez (también lo usan los tests).
func (s *Scheduler) Run(name string, fn Func) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	fields := map[string]any{"job": name, "duration_ms": time.Since(start).Milliseconds()}
	if err != nil {
		fields["err"] = err
		s.log.Error("job failed", fields)
		metrics.JobRuns.WithLabelValues(name, "false").Inc()
		return
	}
	s.log.Debug("job done", fields)
	metrics.JobRuns.WithLabelValues(name, "true").Inc()
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop detiene el scheduler y espera a que terminen los jobs en curso.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Len devuelve la cantidad de jobs registrados.
func (s *Scheduler) Len() int { return len(s.cron.Entries()) }
