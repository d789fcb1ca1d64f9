package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"raffle-sales-backend/internal/features/raffle/models"
	rplatform "raffle-sales-backend/internal/platform/redis"
)

const (
	EventStream       = "raffle:events"
	eventStreamMaxLen = 10000
)

// EventPublisher appends domain events to the raffle event stream.
type EventPublisher struct {
	client *rplatform.Client
}

func NewEventPublisher(client *rplatform.Client) *EventPublisher {
	return &EventPublisher{client: client}
}

func (p *EventPublisher) Publish(ctx context.Context, e models.Event) error {
	err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: EventStream,
		MaxLen: eventStreamMaxLen,
		Approx: true,
		Values: EncodeEvent(e),
	}).Err()
	if err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	return nil
}

// EncodeEvent flattens an event into stream field/value pairs.
func EncodeEvent(e models.Event) map[string]interface{} {
	nums := make([]string, len(e.Numbers))
	for i, n := range e.Numbers {
		nums[i] = strconv.Itoa(n)
	}
	return map[string]interface{}{
		"type":           string(e.Type),
		"raffle_id":      e.RaffleID,
		"seller_id":      e.SellerID,
		"participant_id": e.ParticipantID,
		"buyer_name":     e.BuyerName,
		"numbers":        strings.Join(nums, ","),
		"message":        e.Message,
		"at":             e.At.UTC().Format(time.RFC3339Nano),
	}
}

// DecodeEvent is the inverse of EncodeEvent for values read back from the
// stream, where every value arrives as a string.
func DecodeEvent(values map[string]interface{}) (models.Event, error) {
	str := func(k string) string {
		s, _ := values[k].(string)
		return s
	}
	e := models.Event{
		Type:          models.EventType(str("type")),
		RaffleID:      str("raffle_id"),
		SellerID:      str("seller_id"),
		ParticipantID: str("participant_id"),
		BuyerName:     str("buyer_name"),
		Message:       str("message"),
	}
	if e.Type == "" || e.RaffleID == "" {
		return e, fmt.Errorf("event without type or raffle_id: %v", values)
	}
	if raw := str("numbers"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			n, err := strconv.Atoi(part)
			if err != nil {
				return e, fmt.Errorf("bad number %q in event: %w", part, err)
			}
			e.Numbers = append(e.Numbers, n)
		}
	}
	if at := str("at"); at != "" {
		t, err := time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return e, fmt.Errorf("bad event time %q: %w", at, err)
		}
		e.At = t
	}
	return e, nil
}
