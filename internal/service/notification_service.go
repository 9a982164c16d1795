package service

import (
	"fmt"
	"strings"

	"worksheet_edu_backend/internal/config"
	"worksheet_edu_backend/internal/model"
	"worksheet_edu_backend/pkg/logger"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"
)

// NotificationService emails advisory level-change summaries to the teacher.
// Delivery is fire-and-forget: every failure is logged and swallowed so a
// mail outage can never block score persistence.
type NotificationService struct {
	cfg    config.MailConfig
	dialer *gomail.Dialer
}

func NewNotificationService(cfg config.MailConfig) *NotificationService {
	s := &NotificationService{cfg: cfg}
	if cfg.Enabled && cfg.Host != "" {
		s.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return s
}

func (s *NotificationService) NotifyLevelChanges(teacher *model.User, events []model.LevelChangeEvent) {
	if s.dialer == nil || teacher == nil || teacher.Email == "" || len(events) == 0 {
		return
	}

	var b strings.Builder
	b.WriteString("Level changes from the latest diagnostic:\n\n")
	for _, ev := range events {
		switch ev.Kind {
		case model.LevelAAchieved:
			fmt.Fprintf(&b, "- %s reached Level A on %q (previously %s)\n", ev.StudentName, ev.Topic, ev.Previous)
		case model.LevelDrop:
			fmt.Fprintf(&b, "- %s dropped from Level %s to Level %s on %q\n", ev.StudentName, ev.Previous, ev.Current, ev.Topic)
		}
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", teacher.Email)
	m.SetHeader("Subject", "Level changes in your class")
	m.SetBody("text/plain", b.String())

	if err := s.dialer.DialAndSend(m); err != nil {
		logger.Log.Error("level-change notification failed",
			zap.String("to", teacher.Email),
			zap.Int("events", len(events)),
			zap.Error(err))
	}
}
