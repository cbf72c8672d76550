//go:build !linux

package sandbox

import "errors"

// MinLandlockABI is the first Landlock version that can also deny TCP.
const MinLandlockABI = 4

// LandlockABI reports 0: Landlock is Linux only.
func LandlockABI() int { return 0 }

func restrict(string, string) error {
	return errors.New("process isolation needs Linux Landlock")
}
