package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/meridiancap/cms-apiserver/internal/logger"
	"github.com/meridiancap/cms-apiserver/internal/mq"
	"github.com/meridiancap/cms-apiserver/types"
)

// ContactService records contact-form submissions and publishes a
// notification event for each one. The broker is optional: a nil MQ
// disables notifications, and a failed publish is logged but never fails
// the submission.
type ContactService struct {
	repo  ResourceRepository
	mq    *mq.MQ
	queue string
	log   *logger.Logger
}

func NewContactService(repo ResourceRepository, broker *mq.MQ, queue string, log *logger.Logger) *ContactService {
	return &ContactService{
		repo:  repo,
		mq:    broker,
		queue: queue,
		log:   log,
	}
}

// contactEvent is the notification payload published per submission.
type contactEvent struct {
	ContactID   int       `json:"contact_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Subject     string    `json:"subject"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Submit validates and stores a contact-form submission, then publishes
// a notification event best-effort.
func (s *ContactService) Submit(ctx context.Context, attrs types.Resource) (int, error) {
	if attrs == nil {
		attrs = types.Resource{}
	}
	// Submissions are always unread regardless of what the caller sent.
	attrs["is_read"] = false

	id, err := s.repo.Create(ctx, attrs)
	if err != nil {
		return 0, err
	}

	s.notify(ctx, id, attrs)
	return id, nil
}

func (s *ContactService) notify(ctx context.Context, id int, attrs types.Resource) {
	if s.mq == nil {
		return
	}

	name, _ := attrs["name"].(string)
	email, _ := attrs["email"].(string)
	subject, _ := attrs["subject"].(string)
	payload, err := json.Marshal(contactEvent{
		ContactID:   id,
		Name:        name,
		Email:       email,
		Subject:     subject,
		SubmittedAt: time.Now(),
	})
	if err != nil {
		s.log.Warn().Err(err).Int("contact_id", id).Msg("failed to encode contact event")
		return
	}

	if _, err := s.mq.Publish(ctx, s.queue, payload, map[string]string{"event": "contact.submitted"}); err != nil {
		s.log.Warn().Err(err).Int("contact_id", id).Msg("failed to publish contact event")
	}
}
