package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homematch-ai/recommender/internal/application/services"
	"github.com/homematch-ai/recommender/internal/domain/entities"
)

type stubBuyerRepo struct {
	phones map[string]string
	err    error
}

func (r *stubBuyerRepo) ContactPhone(_ context.Context, buyerID string) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return r.phones[buyerID], nil
}

type channelBus struct {
	events chan *entities.RecommendationEvent
}

func (b *channelBus) Publish(_ context.Context, _ string, event *entities.RecommendationEvent) error {
	b.events <- event
	return nil
}

func (b *channelBus) Subscribe(_ context.Context, _ string) (<-chan *entities.RecommendationEvent, error) {
	return b.events, nil
}

func (b *channelBus) Unsubscribe(_ context.Context, _ string) error { return nil }
func (b *channelBus) Close() error                                  { return nil }

type recordingSender struct {
	mu    sync.Mutex
	sends []string
	to    []string
}

func (s *recordingSender) SendText(to, body string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.to = append(s.to, to)
	s.sends = append(s.sends, body)
	return "wamid.1", nil
}

func (s *recordingSender) sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sends...)
}

func TestNotificationService_SendsOnScoredEvent(t *testing.T) {
	bus := &channelBus{events: make(chan *entities.RecommendationEvent, 1)}
	sender := &recordingSender{}
	buyers := &stubBuyerRepo{phones: map[string]string{"b1": "+14155550100"}}

	svc := services.NewNotificationService(buyers, bus, sender)
	require.NoError(t, svc.Start())
	defer svc.Stop()

	require.NoError(t, bus.Publish(context.Background(), entities.RecommendationEventChannel, &entities.RecommendationEvent{
		BuyerID:    "b1",
		ListingIDs: []string{"l1", "l2", "l3"},
		TopScore:   92.4,
	}))

	require.Eventually(t, func() bool {
		return len(sender.sent()) == 1
	}, time.Second, 10*time.Millisecond)

	sender.mu.Lock()
	body := sender.sends[0]
	recipient := sender.to[0]
	sender.mu.Unlock()

	assert.Contains(t, body, "3 new home matches")
	assert.Contains(t, body, "92/100")
	assert.Equal(t, "+14155550100", recipient)
}

func TestNotificationService_SkipsBuyerWithoutPhone(t *testing.T) {
	bus := &channelBus{events: make(chan *entities.RecommendationEvent, 1)}
	sender := &recordingSender{}

	svc := services.NewNotificationService(&stubBuyerRepo{}, bus, sender)
	require.NoError(t, svc.Start())
	defer svc.Stop()

	require.NoError(t, bus.Publish(context.Background(), entities.RecommendationEventChannel, &entities.RecommendationEvent{
		BuyerID:    "opted-out",
		ListingIDs: []string{"l1"},
	}))

	assert.Never(t, func() bool {
		return len(sender.sent()) > 0
	}, 100*time.Millisecond, 10*time.Millisecond)
}

func TestNotificationService_LookupFailureDropsEvent(t *testing.T) {
	bus := &channelBus{events: make(chan *entities.RecommendationEvent, 1)}
	sender := &recordingSender{}

	svc := services.NewNotificationService(&stubBuyerRepo{err: errors.New("db down")}, bus, sender)
	require.NoError(t, svc.Start())
	defer svc.Stop()

	require.NoError(t, bus.Publish(context.Background(), entities.RecommendationEventChannel, &entities.RecommendationEvent{
		BuyerID:    "b1",
		ListingIDs: []string{"l1"},
	}))

	assert.Never(t, func() bool {
		return len(sender.sent()) > 0
	}, 100*time.Millisecond, 10*time.Millisecond)
}
