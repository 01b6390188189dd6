package background

import (
	"context"
	"time"

	"backoffice/internal/services"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

// JobScheduler runs the recurring maintenance jobs. Jobs execute with no
// authenticated actor and no tenant context; audit attribution for anything
// they touch falls back to entity stamps.
type JobScheduler struct {
	scheduler     gocron.Scheduler
	inviteService services.InviteService
	log           zerolog.Logger
}

func NewJobScheduler(inviteService services.InviteService, log zerolog.Logger) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler:     scheduler,
		inviteService: inviteService,
		log:           log,
	}
	if err := js.registerJobs(); err != nil {
		return nil, err
	}
	return js, nil
}

func (js *JobScheduler) Start() {
	js.log.Info().Msg("starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	js.log.Info().Msg("stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() error {
	_, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(js.sweepExpiredInvites),
		gocron.WithName("invite-expiry-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	return err
}

func (js *JobScheduler) sweepExpiredInvites() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := js.inviteService.SweepExpired(ctx); err != nil {
		js.log.Error().Err(err).Msg("invite expiry sweep failed")
	}
}
