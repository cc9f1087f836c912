package repos

import applog "bookbright/internal/log"

// SafeQuery runs a read and returns fallback instead of an error. Failures are
// logged under action. Use it for pages that should render with an empty
// section rather than fail.
func SafeQuery[T any](action string, fallback T, fn func() (T, error)) T {
	v, err := fn()
	if err != nil {
		applog.Error(nil, action, err, nil)
		return fallback
	}
	return v
}
