package settings

import (
	"testing"
	"time"
)

func TestRedisCacheTimeouts(t *testing.T) {
	c := NewRedisCache("localhost:6379")
	defer c.rdb.Close()

	opts := c.rdb.Options()
	if opts.DialTimeout != 2*time.Second {
		t.Errorf("Expected 2s dial timeout, got %s", opts.DialTimeout)
	}
	if opts.ReadTimeout != 2*time.Second || opts.WriteTimeout != 2*time.Second {
		t.Errorf("Expected 2s read/write timeouts, got %s/%s", opts.ReadTimeout, opts.WriteTimeout)
	}
}
