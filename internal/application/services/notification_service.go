package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/homematch-ai/recommender/internal/domain/entities"
	"github.com/homematch-ai/recommender/internal/domain/providers"
	"github.com/homematch-ai/recommender/internal/domain/repositories"
)

// MessageSender sends a text message to a phone number.
type MessageSender interface {
	SendText(to, body string) (string, error)
}

// NotificationService listens for scored-run events and tells buyers with
// a phone on file that fresh matches are waiting.
type NotificationService struct {
	buyers repositories.BuyerRepository
	bus    providers.EventBus
	sender MessageSender
	cancel context.CancelFunc
}

func NewNotificationService(buyers repositories.BuyerRepository, bus providers.EventBus, sender MessageSender) *NotificationService {
	return &NotificationService{buyers: buyers, bus: bus, sender: sender}
}

// Start subscribes to the recommendation channel and processes events
// until Stop is called.
func (s *NotificationService) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	events, err := s.bus.Subscribe(ctx, entities.RecommendationEventChannel)
	if err != nil {
		cancel()
		return err
	}

	go func() {
		for event := range events {
			s.notify(ctx, event)
		}
	}()
	return nil
}

// Stop unsubscribes from the event channel.
func (s *NotificationService) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *NotificationService) notify(ctx context.Context, event *entities.RecommendationEvent) {
	phone, err := s.buyers.ContactPhone(ctx, event.BuyerID)
	if err != nil {
		log.Warn().Err(err).Str("buyer_id", event.BuyerID).Msg("failed to look up buyer phone")
		return
	}
	if phone == "" {
		return
	}

	body := fmt.Sprintf(
		"We found %d new home matches for you. Your top match scored %.0f/100. Open the app to take a look.",
		len(event.ListingIDs), event.TopScore,
	)
	messageID, err := s.sender.SendText(phone, body)
	if err != nil {
		log.Warn().Err(err).Str("buyer_id", event.BuyerID).Msg("failed to send match notification")
		return
	}
	log.Debug().Str("buyer_id", event.BuyerID).Str("message_id", messageID).Msg("match notification sent")
}
