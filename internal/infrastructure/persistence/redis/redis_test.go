package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/pkg/circuitbreaker"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestBookCache(t *testing.T) {
	mr, client := newTestClient(t)
	cache := NewBookCache(client, time.Minute)
	ctx := context.Background()

	_, ok := cache.Get(ctx, 1)
	assert.False(t, ok)

	v := &book.View{Book: book.Book{ID: 1, Title: "La Peste", TotalCopies: 2, AvailableCopies: 1}, AuthorName: "Albert Camus"}
	cache.Set(ctx, v)
	assert.True(t, mr.Exists("library:book:1"))
	assert.Equal(t, time.Minute, mr.TTL("library:book:1"))

	got, ok := cache.Get(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, "La Peste", got.Title)
	assert.Equal(t, "Albert Camus", got.AuthorName)
	assert.Equal(t, 1, got.AvailableCopies)

	cache.Invalidate(ctx, 1, 2)
	assert.False(t, mr.Exists("library:book:1"))
}

func TestBookCache_DegradesWhenRedisDown(t *testing.T) {
	mr, client := newTestClient(t)
	cache := NewBookCache(client, time.Minute)
	ctx := context.Background()
	mr.Close()

	for i := 0; i < 6; i++ {
		_, ok := cache.Get(ctx, 1)
		assert.False(t, ok)
	}
	assert.Equal(t, circuitbreaker.StateOpen, cache.Breaker().State())

	// 熔断后Set/Invalidate静默失败
	cache.Set(ctx, &book.View{Book: book.Book{ID: 1}})
	cache.Invalidate(ctx, 1)
}

func TestBookCache_MissDoesNotTrip(t *testing.T) {
	_, client := newTestClient(t)
	cache := NewBookCache(client, time.Minute)

	for i := 0; i < 10; i++ {
		_, ok := cache.Get(context.Background(), uint(i+100))
		assert.False(t, ok)
	}
	assert.Equal(t, circuitbreaker.StateClosed, cache.Breaker().State())
}

func TestBorrowerLock(t *testing.T) {
	mr, client := newTestClient(t)
	lock := NewBorrowerLock(client, 5*time.Second)
	ctx := context.Background()

	unlock, err := lock.Lock(ctx, "borrower:marie@example.com")
	require.NoError(t, err)
	assert.True(t, mr.Exists("library:lock:borrower:marie@example.com"))

	t.Run("已被持有时等待到超时", func(t *testing.T) {
		waitCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
		defer cancel()
		_, err := lock.Lock(waitCtx, "borrower:marie@example.com")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("不同借阅人互不影响", func(t *testing.T) {
		other, err := lock.Lock(ctx, "borrower:paul@example.com")
		require.NoError(t, err)
		other()
	})

	unlock()
	unlock()
	assert.False(t, mr.Exists("library:lock:borrower:marie@example.com"))
}

func TestBorrowerLock_DoesNotReleaseForeignToken(t *testing.T) {
	mr, client := newTestClient(t)
	lock := NewBorrowerLock(client, 5*time.Second)

	unlock, err := lock.Lock(context.Background(), "k")
	require.NoError(t, err)

	// 模拟锁过期后被他人获取
	require.NoError(t, mr.Set("library:lock:k", "someone-else"))
	unlock()

	v, err := mr.Get("library:lock:k")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", v)
}

func TestBorrowerLock_Serializes(t *testing.T) {
	_, client := newTestClient(t)
	lock := NewBorrowerLock(client, 5*time.Second)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			unlock, err := lock.Lock(ctx, "same")
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
}

func TestSessionStore(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	require.NoError(t, store.SaveSession(ctx, 1, map[string]interface{}{"email": "marie@library.org"}, time.Hour))
	session, err := store.GetSession(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "marie@library.org", session["email"])

	require.NoError(t, store.DeleteSession(ctx, 1))
	_, err = store.GetSession(ctx, 1)
	assert.Error(t, err)

	require.NoError(t, store.AddToBlacklist(ctx, "token-abc", time.Minute))
	revoked, err := store.IsInBlacklist(ctx, "token-abc")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Minute)
	revoked, err = store.IsInBlacklist(ctx, "token-abc")
	require.NoError(t, err)
	assert.False(t, revoked)
}
