package repository

// Option configures a ShardStore.
type Option func(*ShardStore)

// WithShardCount sets the number of shards user timelines are hashed
// across. Values below one are ignored.
func WithShardCount(n int) Option {
	return func(s *ShardStore) {
		if n > 0 {
			s.count = n
		}
	}
}
