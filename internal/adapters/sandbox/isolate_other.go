//go:build !linux

package sandbox

import "syscall"

// isolate is a no-op: process isolation refuses to run without Landlock.
func isolate(*syscall.SysProcAttr) {}
