package rdx

import (
	"os"
	"time"

	"wayfare/globals"

	"github.com/redis/go-redis/v9"
)

var Conn = redis.NewClient(&redis.Options{
	Addr: redisAddr(),
})

func redisAddr() string {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}
	return "localhost:6379"
}

func RdxSet(key, value string) error {
	return Conn.Set(globals.Ctx, key, value, 0).Err()
}

func RdxGet(key string) (string, error) {
	return Conn.Get(globals.Ctx, key).Result()
}

func RdxDel(key string) error {
	return Conn.Del(globals.Ctx, key).Err()
}

func SetWithExpiry(key, value string, ttl time.Duration) error {
	return Conn.Set(globals.Ctx, key, value, ttl).Err()
}

// SAdd/SMembers back the location token index used by search.
func RdxSAdd(key string, members ...interface{}) error {
	return Conn.SAdd(globals.Ctx, key, members...).Err()
}

func RdxSMembers(key string) ([]string, error) {
	return Conn.SMembers(globals.Ctx, key).Result()
}
