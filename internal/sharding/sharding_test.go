package sharding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShardRouter_GetShard(t *testing.T) {
	r := NewShardRouter(3)

	assert.Equal(t, 0, r.GetShard(0))
	assert.Equal(t, 1, r.GetShard(7))
	assert.Equal(t, 2, r.GetShard(11))
	assert.Equal(t, 2, r.GetShard(-1))
}

func TestNewShardRouter_AtLeastOneShard(t *testing.T) {
	r := NewShardRouter(0)

	assert.Equal(t, 1, r.ShardCount)
	assert.Equal(t, 0, r.GetShard(42))
}
