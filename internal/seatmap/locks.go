package seatmap

import (
	"hash/fnv"
	"sync"

	"github.com/google/uuid"
)

const defaultLockShards = 64

// lockRing is a sharded mutex table keyed by showtime id. Two showtimes may
// share a shard, which costs a little parallelism but never correctness;
// one showtime always maps to the same shard.
type lockRing struct {
	shards []sync.Mutex
}

func newLockRing(shards int) *lockRing {
	if shards <= 0 {
		shards = defaultLockShards
	}
	return &lockRing{shards: make([]sync.Mutex, shards)}
}

func (lr *lockRing) shardFor(showtimeID uuid.UUID) *sync.Mutex {
	hash32 := fnv.New32()
	_, _ = hash32.Write([]byte(showtimeID.String()))
	return &lr.shards[int(hash32.Sum32())%len(lr.shards)]
}

// withLock runs fn while holding the shard lock for the showtime
func (lr *lockRing) withLock(showtimeID uuid.UUID, fn func() error) error {
	mu := lr.shardFor(showtimeID)
	mu.Lock()
	defer mu.Unlock()
	return fn()
}
