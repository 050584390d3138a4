// Package integration runs the bluegreen binary as real processes: two
// variants serving one shared data directory.
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"
)

var (
	// bluegreenBin is the path to the built bluegreen binary.
	bluegreenBin string
	// buildErr captures any build error.
	buildErr error
)

// BuildError wraps a build error with output.
type BuildError struct {
	Err    error
	Output string
}

func (e *BuildError) Error() string {
	return e.Err.Error() + ": " + e.Output
}

// FindProjectRoot finds the project root by walking up and looking for go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// buildBinary compiles ./cmd/bluegreen into dir.
func buildBinary(dir string) (string, error) {
	root, err := FindProjectRoot()
	if err != nil {
		return "", err
	}
	binPath := filepath.Join(dir, "bluegreen")
	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/bluegreen")
	cmd.Dir = root
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", &BuildError{Err: err, Output: string(output)}
	}
	return binPath, nil
}

// TestEnv is one isolated deployment: a config directory, a shared data
// directory and a sentinel path per variant.
type TestEnv struct {
	t       *testing.T
	TempDir string
	Config  string
	DataDir string
	Backend string
}

// NewTestEnv creates an isolated environment using backend for state.
func NewTestEnv(t *testing.T, backend string) *TestEnv {
	t.Helper()

	if buildErr != nil {
		t.Fatalf("failed to build bluegreen: %v", buildErr)
	}
	if bluegreenBin == "" {
		t.Fatal("bluegreen binary not built (bluegreenBin is empty)")
	}

	tempDir := t.TempDir()
	return &TestEnv{
		t:       t,
		TempDir: tempDir,
		Config:  filepath.Join(tempDir, "config"),
		DataDir: filepath.Join(tempDir, "data"),
		Backend: backend,
	}
}

// sentinel returns the forced-failure marker for preset. Each variant gets
// its own, as each container would.
func (e *TestEnv) sentinel(preset string) string {
	return filepath.Join(e.TempDir, preset+".force_bad")
}

func (e *TestEnv) args(preset string, args ...string) []string {
	return append([]string{
		"--config-dir", e.Config,
		"--data-dir", e.DataDir,
		"--backend", e.Backend,
		"--variant", preset,
		"--sentinel-path", e.sentinel(preset),
		"--log-level", "warn",
	}, args...)
}

// command builds an exec.Cmd with an environment free of the lab's
// unprefixed variables.
func (e *TestEnv) command(preset string, args ...string) *exec.Cmd {
	cmd := exec.Command(bluegreenBin, e.args(preset, args...)...)
	for _, kv := range os.Environ() {
		if hasAnyPrefix(kv, "PORT=", "DATA_DIR=", "FORCE_BAD=", "BLUEGREEN_") {
			continue
		}
		cmd.Env = append(cmd.Env, kv)
	}
	return cmd
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// CmdResult holds the result of a bluegreen command execution.
type CmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Run executes an offline bluegreen command as preset.
func (e *TestEnv) Run(preset string, args ...string) CmdResult {
	e.t.Helper()

	cmd := e.command(preset, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	exitCode := 0
	if err := cmd.Run(); err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			e.t.Fatalf("failed to run bluegreen: %v", err)
		}
		exitCode = exitErr.ExitCode()
	}
	return CmdResult{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: exitCode}
}

// MustRun executes an offline command and fails the test on a non-zero exit.
func (e *TestEnv) MustRun(preset string, args ...string) CmdResult {
	e.t.Helper()
	result := e.Run(preset, args...)
	if result.ExitCode != 0 {
		e.t.Fatalf("bluegreen %v failed with exit code %d:\nstdout: %s\nstderr: %s",
			args, result.ExitCode, result.Stdout, result.Stderr)
	}
	return result
}

// Server is a running `bluegreen serve` process.
type Server struct {
	Preset string
	URL    string
	cmd    *exec.Cmd
	output *bytes.Buffer
}

// Serve starts preset on a free loopback port and waits until it accepts
// connections. The process is interrupted when the test ends.
func (e *TestEnv) Serve(preset string) *Server {
	e.t.Helper()

	addr := freeAddr(e.t)
	cmd := e.command(preset, "serve", "--listen", addr)
	output := &bytes.Buffer{}
	cmd.Stdout = output
	cmd.Stderr = output
	if err := cmd.Start(); err != nil {
		e.t.Fatalf("start %s: %v", preset, err)
	}

	s := &Server{Preset: preset, URL: "http://" + addr, cmd: cmd, output: output}
	e.t.Cleanup(s.stop)

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 100*time.Millisecond)
		if err == nil {
			conn.Close()
			return s
		}
		time.Sleep(50 * time.Millisecond)
	}
	e.t.Fatalf("%s did not start listening on %s:\n%s", preset, addr, output.String())
	return nil
}

func (s *Server) stop() {
	if s.cmd.Process == nil {
		return
	}
	_ = s.cmd.Process.Signal(syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		_ = s.cmd.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		_ = s.cmd.Process.Kill()
		<-done
	}
}

// Get issues a GET against the server and decodes the JSON body.
func (s *Server) Get(t *testing.T, path string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Get(s.URL + path)
	if err != nil {
		t.Fatalf("GET %s%s: %v", s.Preset, path, err)
	}
	defer resp.Body.Close()

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode %s%s: %v", s.Preset, path, err)
	}
	return resp.StatusCode, body
}

// freeAddr reserves an ephemeral loopback port and releases it for the
// server to bind.
func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserve port: %v", err)
	}
	defer ln.Close()
	return ln.Addr().String()
}

// ParseJSON parses JSON output into the target type.
func ParseJSON[T any](t *testing.T, jsonStr string) T {
	t.Helper()
	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		t.Fatalf("failed to parse JSON %q: %v", jsonStr, err)
	}
	return result
}

// StateOutput is the shape printed by `bluegreen state`.
type StateOutput struct {
	Version string `json:"version"`
	State   struct {
		SchemaVersion int    `json:"schema_version"`
		RequestCount  int64  `json:"request_count"`
		LastWriter    string `json:"last_writer"`
	} `json:"state"`
}

func (s StateOutput) String() string {
	return fmt.Sprintf("%s: schema=%d count=%d writer=%s",
		s.Version, s.State.SchemaVersion, s.State.RequestCount, s.State.LastWriter)
}
