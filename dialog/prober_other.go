//go:build !windows

package dialog

// newPlatformProber reports the watcher as unavailable: only Windows ships
// the native certificate-selection dialog this package exists to dismiss.
func newPlatformProber() (prober, error) {
	return nil, ErrUnavailable
}
