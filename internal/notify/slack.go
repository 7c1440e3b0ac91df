package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"

	"farmpulse/internal/models"
)

// SlackAlerter posts an ops-channel message when a schedule keeps failing.
// Because a failed schedule is retried on every tick with no backoff, a
// permanently broken job burns one generation+delivery attempt per tick
// forever; this alerter is how that risk becomes visible. It implements
// scheduler.FailureAlerter and never influences scheduling.
type SlackAlerter struct {
	client   *slack.Client
	channel  string
	cooldown time.Duration
	log      zerolog.Logger

	mu       sync.Mutex
	lastSent map[uint]time.Time
}

func NewSlackAlerter(token, channel string, cooldown time.Duration, log zerolog.Logger) *SlackAlerter {
	return &SlackAlerter{
		client:   slack.New(token),
		channel:  channel,
		cooldown: cooldown,
		log:      log,
		lastSent: make(map[uint]time.Time),
	}
}

func (s *SlackAlerter) ExecutionFailed(sched *models.ReportSchedule, snap *models.ReportAnalyticsSnapshot) {
	if !s.shouldSend(sched.ID) {
		return
	}

	attachment := slack.Attachment{
		Color: "#ff0000",
		Title: fmt.Sprintf("Report schedule failing: %s", sched.Name),
		Text:  snap.LastFailureReason,
		Fields: []slack.AttachmentField{
			{Title: "Schedule", Value: fmt.Sprintf("%d (%s)", sched.ID, sched.ReportType), Short: true},
			{Title: "Farm", Value: fmt.Sprintf("%d", sched.FarmID), Short: true},
			{Title: "Total Failed", Value: fmt.Sprintf("%d", snap.TotalFailed), Short: true},
			{Title: "Success Rate", Value: fmt.Sprintf("%.1f%%", snap.SuccessRatePercent), Short: true},
		},
		Footer: "FarmPulse report scheduler",
	}

	if _, _, err := s.client.PostMessage(s.channel, slack.MsgOptionAttachments(attachment)); err != nil {
		s.log.Error().Err(err).Uint("schedule_id", sched.ID).Msg("failed to post slack alert")
	}
}

// shouldSend rate-limits alerts per schedule so the no-backoff retry loop
// does not flood the channel once per tick.
func (s *SlackAlerter) shouldSend(scheduleID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if last, ok := s.lastSent[scheduleID]; ok && time.Since(last) < s.cooldown {
		return false
	}
	s.lastSent[scheduleID] = time.Now()
	return true
}
