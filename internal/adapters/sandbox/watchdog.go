package sandbox

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// DefaultPollInterval is how often the memory watchdog samples RSS. A plugin
// can overshoot its budget by at most what it allocates in one interval.
const DefaultPollInterval = 10 * time.Millisecond

// watchMemory samples the resident set of pid and its descendants and sends
// the offending size once it exceeds limit.
func watchMemory(ctx context.Context, pid int, limit int64, interval time.Duration, exceeded chan<- int64) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rss, ok := treeRSS(pid)
			if !ok {
				return
			}
			if rss > limit {
				select {
				case exceeded <- rss:
				default:
				}
				return
			}
		}
	}
}

// treeRSS sums the resident memory of pid and all its descendants. ok is
// false once pid is gone.
func treeRSS(pid int) (int64, bool) {
	rss, ok := processRSS(pid)
	if !ok {
		return 0, false
	}
	for _, child := range children(pid) {
		if n, ok := treeRSS(child); ok {
			rss += n
		}
	}
	return rss, true
}

// processRSS reads the second field of /proc/<pid>/statm, in pages.
func processRSS(pid int) (int64, bool) {
	data, err := os.ReadFile("/proc/" + strconv.Itoa(pid) + "/statm")
	if err != nil {
		return 0, false
	}
	fields := strings.Fields(string(data))
	if len(fields) < 2 {
		return 0, false
	}
	pages, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return pages * int64(unix.Getpagesize()), true
}

func children(pid int) []int {
	p := strconv.Itoa(pid)
	data, err := os.ReadFile("/proc/" + p + "/task/" + p + "/children")
	if err != nil {
		return nil
	}
	var out []int
	for _, f := range strings.Fields(string(data)) {
		if n, err := strconv.Atoi(f); err == nil {
			out = append(out, n)
		}
	}
	return out
}
