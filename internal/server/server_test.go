package server

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"

	"github.com/redislite/redislite/internal/config"
	"github.com/redislite/redislite/internal/keyspace"
	"github.com/redislite/redislite/internal/logging"
)

func getFreePort(t *testing.T) int {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func startTestServer(t *testing.T) (*redis.Client, func()) {
	port := getFreePort(t)
	cfg := &config.Config{Port: port, Dir: ".", DBFilename: "dump.rdb"}
	ks := keyspace.New()
	log := logging.Default()
	srv := New(cfg, ks, log)

	go func() {
		if err := srv.ListenAndServe(); err != nil {
			t.Logf("server error: %v", err)
		}
	}()

	var client *redis.Client
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		client = redis.NewClient(&redis.Options{Addr: fmt.Sprintf("127.0.0.1:%d", port)})
		if err := client.Ping(context.Background()).Err(); err == nil {
			break
		}
		client.Close()
		time.Sleep(10 * time.Millisecond)
	}

	return client, func() {
		client.Close()
		srv.Shutdown()
	}
}

func TestServerPing(t *testing.T) {
	client, cleanup := startTestServer(t)
	defer cleanup()

	got, err := client.Ping(context.Background()).Result()
	require.NoError(t, err)
	require.Equal(t, "PONG", got)
}

func TestServerSetGet(t *testing.T) {
	client, cleanup := startTestServer(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, client.Set(ctx, "foo", "bar", 0).Err())

	got, err := client.Get(ctx, "foo").Result()
	require.NoError(t, err)
	require.Equal(t, "bar", got)
}

func TestServerSetPXExpiry(t *testing.T) {
	client, cleanup := startTestServer(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, client.Set(ctx, "k", "v", 50*time.Millisecond).Err())

	time.Sleep(150 * time.Millisecond)

	_, err := client.Get(ctx, "k").Result()
	require.ErrorIs(t, err, redis.Nil)
}

func TestServerSetNXOnExisting(t *testing.T) {
	client, cleanup := startTestServer(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, client.Set(ctx, "foo", "bar", 0).Err())

	reply, err := client.Do(ctx, "SET", "foo", "baz", "NX").Result()
	require.NoError(t, err)
	require.Equal(t, "OK", reply)

	got, err := client.Get(ctx, "foo").Result()
	require.NoError(t, err)
	require.Equal(t, "bar", got)
}

func TestServerConfigGet(t *testing.T) {
	port := getFreePort(t)
	cfg := &config.Config{Port: port, Dir: "/tmp", DBFilename: "d.rdb"}
	ks := keyspace.New()
	log := logging.Default()
	srv := New(cfg, ks, log)
	go srv.ListenAndServe()
	defer srv.Shutdown()

	var client *redis.Client
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		client = redis.NewClient(&redis.Options{Addr: fmt.Sprintf("127.0.0.1:%d", port)})
		if err := client.Ping(context.Background()).Err(); err == nil {
			break
		}
		client.Close()
		time.Sleep(10 * time.Millisecond)
	}
	defer client.Close()

	vals, err := client.ConfigGet(context.Background(), "dir").Result()
	require.NoError(t, err)
	require.Equal(t, []interface{}{"dir", "/tmp"}, vals)
}
