// Package mongotest hands tests a throwaway database on a live MongoDB.
//
// Tests using it are skipped in short mode and when MONGODB_TEST_URL is
// unset, e.g.
//
//	MONGODB_TEST_URL=mongodb://localhost:27017 go test ./...
package mongotest

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"

	mongox "github.com/dmitrymomot/filevault/pkg/mongo"
)

// EnvURL names the variable holding the test server connection string.
const EnvURL = "MONGODB_TEST_URL"

// Database connects to the server at EnvURL and returns a uniquely named
// database that is dropped when the test ends.
func Database(t testing.TB) *mongo.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping MongoDB test in short mode")
	}
	url := os.Getenv(EnvURL)
	if url == "" {
		t.Skip(EnvURL + " is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongox.New(ctx, mongox.Config{
		ConnectionURL:  url,
		ConnectTimeout: 5 * time.Second,
		MaxPoolSize:    10,
		RetryAttempts:  1,
	})
	require.NoError(t, err)

	name := "filevault_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	db := client.Database(name)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return db
}
