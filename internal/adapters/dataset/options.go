package dataset

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithLoadFunc substitutes the loader used to build snapshots. Intended
// for tests that need to control load timing or inject failures.
func WithLoadFunc(load LoadFunc) Option {
	return func(m *Manager) {
		if load != nil {
			m.load = load
		}
	}
}
