package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	rplatform "raffle-sales-backend/internal/platform/redis"
)

// ErrSelectionBusy is returned when an update kept losing to concurrent
// writers of the same selection.
var ErrSelectionBusy = errors.New("selection changed concurrently")

const maxUpdateAttempts = 5

// SelectionStore persists each seller's in-progress selection as a Redis set
// so that no selection state lives in the API process.
type SelectionStore struct {
	client *rplatform.Client
	ttl    time.Duration
}

func NewSelectionStore(client *rplatform.Client, ttl time.Duration) *SelectionStore {
	return &SelectionStore{client: client, ttl: ttl}
}

func selectionKey(raffleID, sellerID string) string {
	return fmt.Sprintf("raffle:selection:%s:%s", raffleID, sellerID)
}

// Load returns the stored selection sorted ascending.
func (s *SelectionStore) Load(ctx context.Context, raffleID, sellerID string) ([]int, error) {
	members, err := s.client.SMembers(ctx, selectionKey(raffleID, sellerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("load selection: %w", err)
	}
	return parseMembers(members)
}

// Update runs fn on the stored selection under WATCH and writes the result
// in MULTI/EXEC, retrying when another writer touched the key in between.
// Errors from fn are returned unchanged and nothing is written.
func (s *SelectionStore) Update(ctx context.Context, raffleID, sellerID string, fn func(current []int) ([]int, error)) ([]int, error) {
	key := selectionKey(raffleID, sellerID)
	var next []int

	txf := func(tx *redis.Tx) error {
		members, err := tx.SMembers(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("load selection: %w", err)
		}
		current, err := parseMembers(members)
		if err != nil {
			return err
		}
		next, err = fn(current)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			if len(next) == 0 {
				return nil
			}
			members := make([]interface{}, len(next))
			for i, n := range next {
				members[i] = strconv.Itoa(n)
			}
			pipe.SAdd(ctx, key, members...)
			if s.ttl > 0 {
				pipe.Expire(ctx, key, s.ttl)
			}
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			out := append([]int(nil), next...)
			sort.Ints(out)
			return out, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("update selection %s: %w", key, ErrSelectionBusy)
}

func (s *SelectionStore) Clear(ctx context.Context, raffleID, sellerID string) error {
	if err := s.client.Del(ctx, selectionKey(raffleID, sellerID)).Err(); err != nil {
		return fmt.Errorf("clear selection: %w", err)
	}
	return nil
}

func parseMembers(members []string) ([]int, error) {
	out := make([]int, 0, len(members))
	for _, m := range members {
		n, err := strconv.Atoi(m)
		if err != nil {
			return nil, fmt.Errorf("corrupt selection member %q: %w", m, err)
		}
		out = append(out, n)
	}
	sort.Ints(out)
	return out, nil
}
