package notify

import (
	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gorm.io/gorm"

	"github.com/stackit-app/stackit/backend/internal/config"
	"github.com/stackit-app/stackit/backend/internal/models"
)

// Sink delivers notifications on a best-effort basis. Failures are logged and
// absorbed here; callers never see them and the triggering operation always
// succeeds regardless of delivery.
type Sink struct {
	db   *gorm.DB
	log  *logrus.Logger
	sms  *twilio.RestClient
	from string
}

func NewSink(db *gorm.DB, log *logrus.Logger, cfg config.TwilioConfig) *Sink {
	s := &Sink{db: db, log: log}
	if cfg.AccountSID != "" && cfg.AuthToken != "" && cfg.FromNumber != "" {
		s.sms = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		})
		s.from = cfg.FromNumber
	}
	return s
}

// Create persists the notification and, when SMS is configured and the
// recipient has a phone number on file, sends a text as a secondary channel.
func (s *Sink) Create(n models.Notification) {
	if err := s.db.Create(&n).Error; err != nil {
		s.log.WithFields(logrus.Fields{
			"user_id": n.UserID,
			"type":    n.Type,
			"error":   err.Error(),
		}).Error("failed to create notification")
		return
	}

	if s.sms == nil {
		return
	}

	var user models.User
	if err := s.db.First(&user, n.UserID).Error; err != nil || user.Phone == "" {
		return
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(user.Phone)
	params.SetFrom(s.from)
	params.SetBody(n.Message)

	if _, err := s.sms.Api.CreateMessage(params); err != nil {
		s.log.WithFields(logrus.Fields{
			"user_id": n.UserID,
			"type":    n.Type,
			"error":   err.Error(),
		}).Warn("failed to send SMS notification")
	}
}
