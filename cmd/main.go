package main

import (
	"os"

	"github.com/rs/zerolog"

	"farmpulse/internal/api"
	"farmpulse/internal/auth"
	"farmpulse/internal/config"
	"farmpulse/internal/database"
	"farmpulse/internal/notify"
	"farmpulse/internal/report"
	"farmpulse/internal/scheduler"
	"farmpulse/internal/store"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer database.Close(db)

	schedules := store.NewScheduleStore(db)
	history := store.NewHistoryStore(db)
	analytics := store.NewAnalyticsStore(db)
	records := store.NewRecordStore(db)

	mailer := notify.NewMailer(notify.MailerConfig{
		SMTPHost: cfg.Email.SMTPHost,
		SMTPPort: cfg.Email.SMTPPort,
		From:     cfg.Email.From,
		Password: cfg.Email.Password,
	})

	var alerter scheduler.FailureAlerter
	if cfg.Slack.Token != "" {
		alerter = notify.NewSlackAlerter(cfg.Slack.Token, cfg.Slack.Channel, cfg.Slack.AlertCooldown, log)
	}

	pipeline := &scheduler.Pipeline{
		Schedules:  schedules,
		History:    history,
		Analytics:  analytics,
		Generator:  report.NewGenerator(records),
		Deliverer:  mailer,
		Alerter:    alerter,
		Clock:      scheduler.SystemClock(),
		JobTimeout: cfg.Scheduler.JobTimeout,
		Log:        log,
	}

	sched := scheduler.New(pipeline, schedules, cfg.Scheduler.Interval, cfg.Scheduler.Workers, log)
	sched.Start()
	defer sched.Stop()

	tokens := auth.NewTokens(cfg.Auth.JWTSecret, db)
	server := api.NewServer(sched, schedules, history, analytics, tokens, db)
	if err := server.Start(cfg.Server.Port); err != nil {
		log.Fatal().Err(err).Msg("api server exited")
	}
}
