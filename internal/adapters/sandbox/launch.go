package sandbox

import (
	"fmt"
	"os"
	"runtime"

	"golang.org/x/sys/unix"
)

const (
	// launchArg marks a press binary re-executed as a plugin launcher.
	launchArg = "__press-sandbox-launch"
	// launchFailed is the exit status of a launcher that could not confine
	// itself. The plugin never starts in that case.
	launchFailed = 126
)

// Launch turns the process into a plugin launcher when the sandbox started it
// as one: it confines itself with Landlock and execs the plugin, never
// returning. Otherwise it returns at once. Programs hosting a Sandbox with
// process isolation call it first thing in main.
func Launch() {
	if len(os.Args) < 5 || os.Args[1] != launchArg || os.Args[3] != "--" {
		return
	}
	workDir, argv := os.Args[2], os.Args[4:]

	// Landlock binds to the calling thread, which must be the one that execs.
	runtime.LockOSThread()
	if err := restrict(workDir, argv[0]); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "sandbox:", err)
		os.Exit(launchFailed)
	}
	err := unix.Exec(argv[0], argv, []string{})
	_, _ = fmt.Fprintln(os.Stderr, "sandbox: exec plugin:", err)
	os.Exit(launchFailed)
}

// launchArgs wraps argv so that launcher confines it before exec.
func launchArgs(launcher, workDir string, argv []string) []string {
	return append([]string{launcher, launchArg, workDir, "--"}, argv...)
}
