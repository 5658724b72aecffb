package sharding

// ShardRouter maps a consignor to the database holding their orders.
type ShardRouter struct {
	ShardCount int // Number of shards
}

func NewShardRouter(shardCount int) *ShardRouter {
	if shardCount < 1 {
		shardCount = 1
	}
	return &ShardRouter{ShardCount: shardCount}
}

// GetShard returns the shard index for a consignor id.
func (r *ShardRouter) GetShard(consignorID int) int {
	shardIndex := consignorID % r.ShardCount
	if shardIndex < 0 {
		shardIndex += r.ShardCount
	}
	return shardIndex
}
