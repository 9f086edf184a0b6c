package kvstore

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// stubSortedSets повторяет семантику ZADD NX, ZREM, ZSCORE, ZCARD, ZREVRANGE.
type stubSortedSets struct {
	mu   sync.Mutex
	sets map[string]map[string]float64
	err  error
}

func newStubSortedSets() *stubSortedSets {
	return &stubSortedSets{sets: make(map[string]map[string]float64)}
}

func (s *stubSortedSets) ZAddNX(ctx context.Context, key string, members ...redis.Z) *redis.IntCmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return redis.NewIntResult(0, s.err)
	}
	set, ok := s.sets[key]
	if !ok {
		set = make(map[string]float64)
		s.sets[key] = set
	}
	var added int64
	for _, m := range members {
		name := m.Member.(string)
		if _, exists := set[name]; !exists {
			set[name] = m.Score
			added++
		}
	}
	return redis.NewIntResult(added, nil)
}

func (s *stubSortedSets) ZRem(ctx context.Context, key string, members ...interface{}) *redis.IntCmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for _, m := range members {
		if _, ok := s.sets[key][m.(string)]; ok {
			delete(s.sets[key], m.(string))
			removed++
		}
	}
	return redis.NewIntResult(removed, s.err)
}

func (s *stubSortedSets) ZScore(ctx context.Context, key, member string) *redis.FloatCmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return redis.NewFloatResult(0, s.err)
	}
	score, ok := s.sets[key][member]
	if !ok {
		return redis.NewFloatResult(0, redis.Nil)
	}
	return redis.NewFloatResult(score, nil)
}

func (s *stubSortedSets) ZCard(ctx context.Context, key string) *redis.IntCmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	return redis.NewIntResult(int64(len(s.sets[key])), s.err)
}

func (s *stubSortedSets) ZRevRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.sets[key]
	members := make([]string, 0, len(set))
	for m := range set {
		members = append(members, m)
	}
	sort.Slice(members, func(i, j int) bool {
		if set[members[i]] != set[members[j]] {
			return set[members[i]] > set[members[j]]
		}
		return members[i] > members[j]
	})
	if start >= int64(len(members)) {
		return redis.NewStringSliceResult([]string{}, s.err)
	}
	if stop >= int64(len(members)) {
		stop = int64(len(members)) - 1
	}
	return redis.NewStringSliceResult(members[start:stop+1], s.err)
}

func newTestRedisFavorites(client sortedSetCommands) *RedisFavoritesRepository {
	tick := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	return &RedisFavoritesRepository{client: client, now: func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		tick = tick.Add(time.Second)
		return tick
	}}
}

func TestRedisFavoritesRepository(t *testing.T) {
	ctx := context.Background()
	client := newStubSortedSets()
	repo := newTestRedisFavorites(client)
	user := uuid.New()
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	for _, id := range []uuid.UUID{a, b, a, c} {
		if err := repo.Add(ctx, user, id); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	page, err := repo.FindPaginatedByUser(ctx, user, 2, 0)
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if page.TotalCount != 3 || !reflect.DeepEqual(page.PropertyIDs, []uuid.UUID{c, b}) {
		t.Fatalf("first page = %+v", page)
	}
	page, _ = repo.FindPaginatedByUser(ctx, user, 2, 2)
	if !reflect.DeepEqual(page.PropertyIDs, []uuid.UUID{a}) {
		t.Fatalf("second page = %+v", page)
	}
	page, _ = repo.FindPaginatedByUser(ctx, user, 2, 10)
	if len(page.PropertyIDs) != 0 || page.TotalCount != 3 {
		t.Fatalf("page past the end = %+v", page)
	}

	if ok, _ := repo.Contains(ctx, user, b); !ok {
		t.Fatalf("b must be a favorite")
	}
	if err := repo.Remove(ctx, user, b); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := repo.Remove(ctx, user, b); err != nil {
		t.Fatalf("second remove must be a no-op: %v", err)
	}
	if ok, _ := repo.Contains(ctx, user, b); ok {
		t.Fatalf("b must be gone")
	}

	client.sets[favoritesKey(user)]["not-a-uuid"] = 1
	page, _ = repo.FindPaginatedByUser(ctx, user, 10, 0)
	if !reflect.DeepEqual(page.PropertyIDs, []uuid.UUID{c, a}) {
		t.Fatalf("unreadable member not skipped: %+v", page)
	}
}

func TestRedisFavoritesReplicasKeepEachOthersWrites(t *testing.T) {
	ctx := context.Background()
	client := newStubSortedSets()
	user := uuid.New()
	replicas := []*RedisFavoritesRepository{newTestRedisFavorites(client), newTestRedisFavorites(client)}

	var wg sync.WaitGroup
	ids := make([]uuid.UUID, 20)
	for i := range ids {
		ids[i] = uuid.New()
		wg.Add(1)
		go func(repo *RedisFavoritesRepository, id uuid.UUID) {
			defer wg.Done()
			if err := repo.Add(ctx, user, id); err != nil {
				t.Errorf("add: %v", err)
			}
		}(replicas[i%2], ids[i])
	}
	wg.Wait()

	page, err := replicas[0].FindPaginatedByUser(ctx, user, 100, 0)
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if page.TotalCount != len(ids) || len(page.PropertyIDs) != len(ids) {
		t.Fatalf("stored %d of %d favorites", page.TotalCount, len(ids))
	}
}

func TestRedisFavoritesErrors(t *testing.T) {
	if _, err := NewRedisFavoritesRepository(nil); err == nil {
		t.Fatalf("expected error for nil client")
	}

	down := errors.New("connection refused")
	client := newStubSortedSets()
	client.err = down
	repo := newTestRedisFavorites(client)

	if err := repo.Add(context.Background(), uuid.New(), uuid.New()); !errors.Is(err, down) {
		t.Fatalf("add err = %v", err)
	}
	if _, err := repo.Contains(context.Background(), uuid.New(), uuid.New()); !errors.Is(err, down) {
		t.Fatalf("contains err = %v", err)
	}
}
