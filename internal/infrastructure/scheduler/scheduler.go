// Package scheduler ejecuta tareas periódicas del servicio (vencimiento de cotizaciones).
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Expirer vence cotizaciones cuya vigencia pasó; devuelve cuántas cambió.
type Expirer interface {
	ExpireDue(ctx context.Context, batch int) (int, error)
}

// Config programación del barrido.
type Config struct {
	Schedule string        // expresión cron o descriptor (@every 15m)
	Batch    int           // máximo de cotizaciones por corrida
	Timeout  time.Duration // tope de una corrida
}

// Scheduler administra las tareas programadas.
type Scheduler struct {
	cron    *cron.Cron
	expirer Expirer
	cfg     Config
	log     zerolog.Logger
}

// New construye el scheduler. Las corridas no se solapan: si una sigue en curso, la siguiente se omite.
func New(cfg Config, expirer Expirer, log zerolog.Logger) *Scheduler {
	if cfg.Schedule == "" {
		cfg.Schedule = "@every 15m"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	return &Scheduler{cron: c, expirer: expirer, cfg: cfg, log: log}
}

// AddJob registra una tarea auxiliar (p. ej. limpieza del rate limiter). Llamar antes de Start.
func (s *Scheduler) AddJob(name, schedule string, fn func()) error {
	if _, err := s.cron.AddFunc(schedule, fn); err != nil {
		return fmt.Errorf("programar %s %q: %w", name, schedule, err)
	}
	return nil
}

// Start registra el barrido y arranca el cron.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.Schedule, s.ExpireQuotes); err != nil {
		return fmt.Errorf("programar vencimiento %q: %w", s.cfg.Schedule, err)
	}
	s.log.Info().Str("schedule", s.cfg.Schedule).Msg("scheduler iniciado")
	s.cron.Start()
	return nil
}

// Stop detiene el cron y espera a que termine la corrida en curso.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("scheduler detenido")
}

// ExpireQuotes una corrida del barrido de vencimiento.
func (s *Scheduler) ExpireQuotes() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
	defer cancel()

	n, err := s.expirer.ExpireDue(ctx, s.cfg.Batch)
	if err != nil {
		s.log.Error().Err(err).Int("expired", n).Msg("fallo el vencimiento de cotizaciones")
		return
	}
	s.log.Debug().Int("expired", n).Msg("barrido de vencimiento terminado")
}
