package cache

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// Init initializes the Redis connection
func Init() error {
	// K8s sets REDIS_SERVICE_HOST and REDIS_SERVICE_PORT for services
	host := os.Getenv("REDIS_SERVICE_HOST")
	if host == "" {
		host = "redis" // fallback to service name
	}
	port := os.Getenv("REDIS_SERVICE_PORT")
	if port == "" {
		port = "6379"
	}

	client = redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		// Close the failed client and set to nil for graceful degradation
		client.Close()
		client = nil
		return err
	}
	return nil
}

// GetClient returns the Redis client
func GetClient() *redis.Client {
	return client
}

// GetCached returns cached data for a key
func GetCached(ctx context.Context, key string) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetCached stores data with a TTL
func SetCached(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if client == nil {
		return
	}
	client.Set(ctx, key, data, ttl)
}

// InvalidatePattern removes all keys matching a glob pattern
func InvalidatePattern(ctx context.Context, pattern string) {
	if client == nil {
		return
	}
	keys, err := client.Keys(ctx, pattern).Result()
	if err == nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// InvalidateKeys removes specific cache keys
func InvalidateKeys(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	client.Del(ctx, keys...)
}

// InvalidateRequestCaches clears all request-list caches
// Called when: SubmitRequest, UpdateStatus, AssignJob, CompleteTransport
func InvalidateRequestCaches(ctx context.Context) {
	InvalidatePattern(ctx, "requests:*")
	InvalidateKeys(ctx, "requests:summary")
}

// InvalidateVenueCaches clears venue listings and availability caches
// Called when: CreateVenue, UpdateVenue, venue booking approval/completion
func InvalidateVenueCaches(ctx context.Context) {
	InvalidatePattern(ctx, "venues:*")
}

// InvalidateVehicleCaches clears vehicle listings and maintenance caches
// Called when: CreateVehicle, RecordMaintenance, transport completion
func InvalidateVehicleCaches(ctx context.Context) {
	InvalidatePattern(ctx, "vehicles:*")
}

// InvalidateInventoryCaches clears inventory item caches
// Called when: CreateItem, UpdateItem, returnable approval/return
func InvalidateInventoryCaches(ctx context.Context) {
	InvalidatePattern(ctx, "inventory:*")
}

// InvalidateNotificationCaches clears a user's notification caches
// Called when: notifications are created, read, or deleted for the user
func InvalidateNotificationCaches(ctx context.Context, userID int) {
	InvalidatePattern(ctx, notifPrefix(userID)+"*")
}

func notifPrefix(userID int) string {
	return "notifications:" + strconv.Itoa(userID) + ":"
}

// NotificationListKey is the cache key of one user's notification list.
// Keys live under the prefix InvalidateNotificationCaches clears.
func NotificationListKey(userID int, unreadOnly bool) string {
	if unreadOnly {
		return notifPrefix(userID) + "list:unread"
	}
	return notifPrefix(userID) + "list:all"
}

// IsHealthy returns true if Redis connection is working
func IsHealthy() bool {
	if client == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return client.Ping(ctx).Err() == nil
}
