package repository

// DefaultPageSize is the number of items MemoryStore returns per scan page.
const DefaultPageSize = 100

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithPageSize sets the maximum number of items per scan page.
func WithPageSize(n int) Option {
	return func(s *MemoryStore) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithFailure makes every call whose operation matches op return err.
// Used to exercise failure paths without a real backend.
func WithFailure(op string, err error) Option {
	return func(s *MemoryStore) {
		if s.failures == nil {
			s.failures = make(map[string]error)
		}
		s.failures[op] = err
	}
}
