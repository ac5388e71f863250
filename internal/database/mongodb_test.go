package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClientOptions(t *testing.T) {
	opts := clientOptions("mongodb://localhost:27017/portfolio", 3*time.Second)
	require.NoError(t, opts.Validate())
	require.Equal(t, appName, *opts.AppName)
	require.Equal(t, 3*time.Second, *opts.ServerSelectionTimeout)
	require.Equal(t, []string{"localhost:27017"}, opts.Hosts)
}

func TestConnectMongoBadURI(t *testing.T) {
	_, err := ConnectMongo(context.Background(), "not-a-mongo-uri", time.Second)
	require.Error(t, err)
}

func TestPingNilClient(t *testing.T) {
	require.Error(t, Ping(context.Background(), nil))
}

func TestConnectMongoWithRetryGivesUp(t *testing.T) {
	var retries []int
	_, err := ConnectMongoWithRetry(context.Background(), "not-a-mongo-uri", 100*time.Millisecond, 2, func(attempt int, err error) {
		retries = append(retries, attempt)
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "after 2 attempts")
	require.Equal(t, []int{1}, retries)
}

func TestConnectMongoWithRetryHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ConnectMongoWithRetry(ctx, "not-a-mongo-uri", 100*time.Millisecond, 3, nil)
	require.Error(t, err)
}
