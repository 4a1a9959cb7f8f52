package redisutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/chainsafe/wallet-settlement/pkg/config"
	"github.com/chainsafe/wallet-settlement/pkg/pgutil"
)

// SetupTestRedis starts a redis testcontainer and returns a connected client.
// SETTLEMENT_TEST_REDIS_IMAGE overrides the image.
func SetupTestRedis(t *testing.T) (redis.UniversalClient, func()) {
	t.Helper()
	pgutil.RequireDockerAccess(t)
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        pgutil.TestImage("SETTLEMENT_TEST_REDIS_IMAGE", "redis:7-alpine"),
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		t.Fatalf("failed to get container port: %v", err)
	}

	client, err := Connect(&config.RedisConfig{Addrs: []string{fmt.Sprintf("%s:%d", host, port.Int())}})
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		t.Fatalf("failed to connect to test redis: %v", err)
	}

	cleanup := func() {
		_ = client.Close()
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}
	return client, cleanup
}
