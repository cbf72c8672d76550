package sandbox

import (
	"bytes"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"go.trai.ch/press/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/sys/unix"
)

// waitDelay bounds how long Wait keeps copying stderr after the plugin exits.
const waitDelay = time.Second

// process is a started plugin in its own process group.
type process struct {
	cmd    *exec.Cmd
	stdin  *os.File
	stdout *os.File
	stderr *tailBuffer
	exited chan struct{}
	err    error
	once   sync.Once
}

// start launches argv with an empty environment inside workDir. The plugin
// talks to the host over two anonymous pipes. With namespaced set the child
// gets fresh user, network, IPC and UTS namespaces.
func start(argv []string, workDir string, namespaced bool) (*process, error) {
	inR, inW, err := os.Pipe()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create stdin pipe")
	}
	outR, outW, err := os.Pipe()
	if err != nil {
		_ = inR.Close()
		_ = inW.Close()
		return nil, zerr.Wrap(err, "failed to create stdout pipe")
	}

	cmd := exec.Command(argv[0], argv[1:]...) //nolint:gosec // plugin commands come from press.yaml
	cmd.Dir = workDir
	cmd.Env = []string{}
	cmd.Stdin = inR
	cmd.Stdout = outW
	stderr := &tailBuffer{max: stderrTail}
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if namespaced {
		isolate(cmd.SysProcAttr)
	}

	err = cmd.Start()
	// The child holds its own copies.
	_ = inR.Close()
	_ = outW.Close()
	if err != nil {
		_ = inW.Close()
		_ = outR.Close()
		return nil, zerr.With(zerr.Wrap(err, "failed to start plugin"), "command", argv[0])
	}

	p := &process{cmd: cmd, stdin: inW, stdout: outR, stderr: stderr, exited: make(chan struct{})}
	go func() {
		p.err = cmd.Wait()
		close(p.exited)
	}()
	return p, nil
}

// pid is also the process group id.
func (p *process) pid() int {
	return p.cmd.Process.Pid
}

// kill terminates the whole process group and reaps the leader.
func (p *process) kill() {
	p.once.Do(func() {
		select {
		case <-p.exited:
		default:
			_ = unix.Kill(-p.pid(), unix.SIGKILL)
			<-p.exited
		}
		_ = p.stdin.Close()
		_ = p.stdout.Close()
	})
}

// exitDetail describes how the plugin ended, for trap reports.
func (p *process) exitDetail() string {
	detail := "exited"
	if p.err != nil {
		detail = p.err.Error()
	}
	if tail := p.stderr.String(); tail != "" {
		detail += ": " + tail
	}
	return detail
}

// resolveCommand anchors relative plugin paths at the site root. Bare names
// are looked up on the host PATH before the environment is cleared.
func resolveCommand(plugin domain.PluginDescriptor) ([]string, error) {
	if len(plugin.Command) == 0 {
		return nil, zerr.New("plugin has no command")
	}
	argv := append([]string(nil), plugin.Command...)
	lp, err := exec.LookPath(plugin.Executable())
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "plugin command not found"), "command", argv[0])
	}
	argv[0] = lp
	return argv, nil
}

// systemPaths hold the shared libraries and loaders a plugin binary may need.
// Both isolation modes expose them read-only and nothing else of the host.
var systemPaths = []string{"/usr", "/bin", "/sbin", "/lib", "/lib64", "/lib32", "/etc/ld.so.cache"}

// bwrapArgs confines argv in fresh namespaces. The new root holds only the
// system library paths, the plugin binary and a writable working directory.
func bwrapArgs(bwrap, workDir string, argv []string) []string {
	args := []string{
		bwrap,
		"--unshare-all",
		"--die-with-parent",
		"--new-session",
		"--clearenv",
	}
	for _, p := range systemPaths {
		if _, err := os.Stat(p); err == nil {
			args = append(args, "--ro-bind", p, p)
		}
	}
	args = append(args,
		"--proc", "/proc",
		"--dev", "/dev",
		"--tmpfs", "/tmp",
		"--ro-bind", argv[0], argv[0],
		"--bind", workDir, workDir,
		"--chdir", workDir,
		"--",
	)
	return append(args, argv...)
}

// bwrapPath returns the bubblewrap binary if installed.
func bwrapPath() string {
	if p, err := exec.LookPath("bwrap"); err == nil {
		return p
	}
	for _, p := range []string{"/usr/bin/bwrap", "/usr/local/bin/bwrap", "/bin/bwrap"} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

const stderrTail = 2048

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	max int
	buf []byte
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.max; over > 0 {
		b.buf = append(b.buf[:0], b.buf[over:]...)
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(bytes.TrimSpace(b.buf))
}
