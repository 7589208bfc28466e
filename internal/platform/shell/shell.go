package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"slices"
	"strings"
)

// Runner executes shell command lines.
type Runner interface {
	Run(ctx context.Context, command string, opts ...Option) (*Result, error)
}

// Result holds the captured output of a finished command.
type Result struct {
	Command  string
	Stdout   string
	Stderr   string
	ExitCode int
}

// OK reports whether the command exited with status zero.
func (r *Result) OK() bool {
	return r.ExitCode == 0
}

// ExitError is returned when a command exits non-zero.
type ExitError struct {
	Command string
	Code    int
	Stderr  string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("command exited with status %d: %s", e.Code, e.Command)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

// ExitCode extracts the exit status from err, or -1 if err is not an ExitError.
func ExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return -1
}

// Options control a single Run call.
type Options struct {
	// Warn turns a non-zero exit into a logged warning.
	Warn bool
	// Hide suppresses echoing output to the terminal.
	Hide bool
	// Interactive connects the command directly to the terminal. Output is
	// not captured.
	Interactive bool
	// Env overrides variables in the child environment.
	Env map[string]string
	// Unset removes variables from the child environment.
	Unset []string
	Dir   string
}

// Option configures a Run call.
type Option func(*Options)

func Warn() Option        { return func(o *Options) { o.Warn = true } }
func Hide() Option        { return func(o *Options) { o.Hide = true } }
func Interactive() Option { return func(o *Options) { o.Interactive = true } }

func WithEnv(env map[string]string) Option {
	return func(o *Options) {
		if o.Env == nil {
			o.Env = make(map[string]string, len(env))
		}
		for k, v := range env {
			o.Env[k] = v
		}
	}
}

func WithoutEnv(keys ...string) Option {
	return func(o *Options) { o.Unset = append(o.Unset, keys...) }
}

func InDir(dir string) Option {
	return func(o *Options) { o.Dir = dir }
}

// ExecRunner runs commands with /bin/sh -c.
type ExecRunner struct {
	Shell  string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// BaseEnv is the environment commands start from. Nil means os.Environ().
	BaseEnv []string
}

// NewExecRunner returns a runner attached to the process terminal.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{
		Shell:  "/bin/sh",
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run executes command and waits for it to finish.
func (r *ExecRunner) Run(ctx context.Context, command string, opts ...Option) (*Result, error) {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}

	// #nosec G204 -- command lines are assembled from config values by this tool
	cmd := exec.CommandContext(ctx, r.shell(), "-c", command)
	cmd.Env = r.environ(o)
	cmd.Dir = o.Dir

	var stdout, stderr bytes.Buffer
	switch {
	case o.Interactive:
		cmd.Stdin, cmd.Stdout, cmd.Stderr = r.Stdin, r.Stdout, r.Stderr
	case o.Hide:
		cmd.Stdout, cmd.Stderr = &stdout, &stderr
	default:
		cmd.Stdout = teeTo(&stdout, r.Stdout)
		cmd.Stderr = teeTo(&stderr, r.Stderr)
	}

	res := &Result{Command: command}
	err := cmd.Run()
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return res, fmt.Errorf("failed to run %q: %w", command, err)
		}
		res.ExitCode = exitErr.ExitCode()
		if ctx.Err() != nil {
			return res, fmt.Errorf("command %q interrupted: %w", command, ctx.Err())
		}

		failure := &ExitError{Command: command, Code: res.ExitCode, Stderr: res.Stderr}
		if o.Warn {
			log.Printf("Warning: %v", failure)
			return res, nil
		}
		return res, failure
	}

	return res, nil
}

func (r *ExecRunner) shell() string {
	if r.Shell == "" {
		return "/bin/sh"
	}
	return r.Shell
}

func (r *ExecRunner) environ(o *Options) []string {
	base := r.BaseEnv
	if base == nil {
		base = os.Environ()
	}

	env := make([]string, 0, len(base)+len(o.Env))
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if slices.Contains(o.Unset, key) {
			continue
		}
		if _, overridden := o.Env[key]; overridden {
			continue
		}
		env = append(env, kv)
	}

	keys := make([]string, 0, len(o.Env))
	for k := range o.Env {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		env = append(env, k+"="+o.Env[k])
	}
	return env
}

func teeTo(buf *bytes.Buffer, w io.Writer) io.Writer {
	if w == nil {
		return buf
	}
	return io.MultiWriter(buf, w)
}
