package redis_session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/veritas-health/medresearch/models"
)

func startRedis(t *testing.T, ctx context.Context) (testcontainers.Container, string) {
	t.Helper()
	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(60 * time.Second),
	}
	rc, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("docker not available for integration test: %v", err)
	}
	port, err := rc.MappedPort(ctx, "6379")
	if err != nil {
		_ = rc.Terminate(ctx)
		t.Fatalf("failed to get mapped port: %v", err)
	}
	host, err := rc.Host(ctx)
	if err != nil {
		_ = rc.Terminate(ctx)
		t.Fatalf("failed to get host: %v", err)
	}
	return rc, fmt.Sprintf("%s:%s", host, port.Port())
}

func TestRedisSessionRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	rc, addr := startRedis(t, ctx)
	defer func() { _ = rc.Terminate(ctx) }()

	store, err := NewRedisSessionStore(addr, "", 0, time.Minute)
	if err != nil {
		t.Fatalf("NewRedisSessionStore: %v", err)
	}

	sess, err := store.Ensure("abc")
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if err := sess.Append(models.Exchange{Query: "q1", Response: "r1", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	again, err := store.Get("abc")
	if err != nil || again == nil {
		t.Fatalf("Get: %v, %v", again, err)
	}
	history, err := again.History()
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 || history[0].Query != "q1" {
		t.Fatalf("history = %+v", history)
	}

	missing, err := store.Get("nope")
	if err != nil {
		t.Fatalf("Get missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("unknown session must be nil")
	}
}

func TestRedisConcurrentAppendsKeepEveryExchange(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	rc, addr := startRedis(t, ctx)
	defer func() { _ = rc.Terminate(ctx) }()

	store, err := NewRedisSessionStore(addr, "", 0, time.Minute)
	if err != nil {
		t.Fatalf("NewRedisSessionStore: %v", err)
	}
	sess, err := store.Ensure("busy")
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}

	const writers = 4
	const perWriter = 5
	var wg sync.WaitGroup
	errs := make(chan error, writers*perWriter)
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				if err := sess.Append(models.Exchange{
					Query:     fmt.Sprintf("q-%d-%d", w, i),
					Response:  "r",
					CreatedAt: time.Now(),
				}); err != nil {
					errs <- err
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("Append: %v", err)
	}

	history, err := sess.History()
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != writers*perWriter {
		t.Fatalf("history = %d exchanges, want %d (concurrent append dropped writes)", len(history), writers*perWriter)
	}
}
