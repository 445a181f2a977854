//go:build !windows

package recycle

import "errors"

// newPlatformShell reports that the recycle bin is unavailable off
// Windows. The storage constructor surfaces this at startup so the
// manager never registers an unusable backend.
func newPlatformShell() (Shell, error) {
	return nil, errors.New("the recycle bin is only available on windows")
}
