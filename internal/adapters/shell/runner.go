// Package shell runs external transform commands over stdin and stdout.
package shell

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.trai.ch/polish/internal/core/domain"
	"go.trai.ch/polish/internal/core/ports"
	"go.trai.ch/zerr"
)

// stderrTail bounds how much stderr is attached to a failure.
const stderrTail = 2048

// Command is one invocation of an external transform.
type Command struct {
	// Args holds the executable and its arguments.
	Args []string
	// Dir is the working directory. Its node_modules/.bin is searched first.
	Dir string
	// Stdin is written to the process and closed.
	Stdin string
}

// Result is what a finished process produced.
type Result struct {
	Stdout   []byte
	ExitCode int
}

// Runner executes commands with os/exec.
type Runner struct {
	logger ports.Logger
}

// NewRunner creates a Runner that logs each stderr line at debug level.
func NewRunner(logger ports.Logger) *Runner {
	return &Runner{logger: logger}
}

// Run executes cmd and waits for it. A non-zero exit is returned as an error
// alongside the Result so callers can inspect the exit code and stdout.
func (r *Runner) Run(ctx context.Context, cmd Command) (Result, error) {
	if len(cmd.Args) == 0 {
		return Result{ExitCode: -1}, domain.ErrEmptyCommand
	}

	name := cmd.Args[0]
	env := resolveEnvironment(os.Environ(), cmd.Dir)

	executable := name
	if !filepath.IsAbs(name) {
		if lp, err := lookPath(name, env); err == nil {
			executable = lp
		}
	}

	proc := exec.CommandContext(ctx, executable, cmd.Args[1:]...) //nolint:gosec // configured transform command
	proc.Args[0] = name
	proc.Dir = cmd.Dir
	proc.Env = env
	proc.Stdin = strings.NewReader(cmd.Stdin)

	var stdout bytes.Buffer
	stderr := &logWriter{logger: r.logger}
	proc.Stdout = &stdout
	proc.Stderr = stderr

	err := proc.Run()
	_ = stderr.Close()

	res := Result{Stdout: stdout.Bytes()}
	if err == nil {
		return res, nil
	}

	res.ExitCode = -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
	}

	err = zerr.With(zerr.Wrap(err, "command failed"), "exit_code", res.ExitCode)
	err = zerr.With(err, "command", name)
	if tail := stderr.tail(); tail != "" {
		err = zerr.With(err, "stderr", tail)
	}
	return res, err
}

// logWriter forwards complete stderr lines to the logger and keeps the last bytes.
type logWriter struct {
	logger ports.Logger
	buf    []byte
	last   []byte
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.last = append(w.last, p...)
	if len(w.last) > stderrTail {
		w.last = w.last[len(w.last)-stderrTail:]
	}

	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.logLine(w.buf[:i])
		w.buf = w.buf[i+1:]
	}

	return len(p), nil
}

func (w *logWriter) Close() error {
	if len(w.buf) > 0 {
		w.logLine(w.buf)
		w.buf = nil
	}
	return nil
}

func (w *logWriter) logLine(line []byte) {
	if w.logger == nil {
		return
	}
	w.logger.Debug(strings.TrimSuffix(string(line), "\r"))
}

func (w *logWriter) tail() string {
	return strings.TrimSpace(string(w.last))
}

// resolveEnvironment returns the system environment with dir's local
// node_modules/.bin prepended to PATH.
func resolveEnvironment(sysEnv []string, dir string) []string {
	env := make([]string, 0, len(sysEnv)+1)
	var path string
	for _, entry := range sysEnv {
		if v, ok := strings.CutPrefix(entry, "PATH="); ok {
			path = v
			continue
		}
		env = append(env, entry)
	}

	if dir != "" {
		local := filepath.Join(dir, "node_modules", ".bin")
		if path == "" {
			path = local
		} else {
			path = local + string(os.PathListSeparator) + path
		}
	}

	if path != "" {
		env = append(env, "PATH="+path)
	}
	return env
}

// lookPath searches the PATH entry of env rather than the process PATH.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if v, ok := strings.CutPrefix(e, "PATH="); ok {
			path = v
			break
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

// LookPath reports where name would be resolved from when run in dir.
func LookPath(name, dir string) (string, error) {
	if filepath.IsAbs(name) {
		return name, findExecutable(name)
	}
	return lookPath(name, resolveEnvironment(os.Environ(), dir))
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
