package cache

import (
	"context"
	"testing"

	"varsearch/api/models"

	"github.com/stretchr/testify/assert"
)

func TestNoRedisConfiguredDegradesToNoOp(t *testing.T) {
	rc := NewResultCache(&models.Config{})

	ctx := context.Background()

	rc.Put(ctx, "Variants___p___f___{}", []byte(`[]`))

	_, found := rc.Get(ctx, "Variants___p___f___{}")
	assert.False(t, found)
}

func TestUnreachableRedisDegradesToNoOp(t *testing.T) {
	cfg := &models.Config{}
	cfg.Redis.Url = "localhost:1" // nothing listens here

	rc := NewResultCache(cfg)

	ctx := context.Background()
	rc.Put(ctx, "some-fingerprint", []byte("payload"))

	_, found := rc.Get(ctx, "some-fingerprint")
	assert.False(t, found)
}
