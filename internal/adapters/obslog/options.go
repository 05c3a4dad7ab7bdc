package obslog

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithPromoteMinRows sets how many clean rows a run must produce
// before the persisted log is replaced.
func WithPromoteMinRows(minRows int) Option {
	return func(s *Store) {
		if minRows > 0 {
			s.promoteMinRows = minRows
		}
	}
}
