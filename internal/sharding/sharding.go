package sharding

import "github.com/cespare/xxhash/v2"

// ShardRouter places orders on one of ShardCount databases. A user's orders
// all live on the shard picked by ShardForUser, and every public order id
// encodes its shard so GetShard can find it without knowing the owner.
type ShardRouter struct {
	ShardCount int // Number of shards
}

func NewShardRouter(shardCount int) *ShardRouter {
	if shardCount < 1 {
		shardCount = 1
	}
	return &ShardRouter{ShardCount: shardCount}
}

// ShardForUser hashes the user id onto a shard index.
func (r *ShardRouter) ShardForUser(userID string) int {
	return int(xxhash.Sum64String(userID) % uint64(r.ShardCount))
}

// GetShard returns the shard index holding the order with the given public id.
// The result is always in [0, ShardCount), even for ids no order can have.
func (r *ShardRouter) GetShard(id int64) int {
	shardIndex := id % int64(r.ShardCount)
	if shardIndex < 0 {
		shardIndex += int64(r.ShardCount)
	}
	return int(shardIndex)
}

// GlobalID turns a shard-local auto-increment id into a public order id.
func (r *ShardRouter) GlobalID(localID int64, shard int) int64 {
	return localID*int64(r.ShardCount) + int64(shard)
}

// LocalID is the inverse of GlobalID.
func (r *ShardRouter) LocalID(id int64) int64 {
	return id / int64(r.ShardCount)
}
