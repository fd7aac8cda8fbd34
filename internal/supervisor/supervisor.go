// Package supervisor starts, probes, and stops the out-of-process
// backend binary that the desktop UI shell depends on.
package supervisor

import (
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/smartlab-classroom/peerfabric/internal/coreerr"
	"github.com/smartlab-classroom/peerfabric/internal/logging"
)

var log = logging.L("supervisor")

const (
	probeTimeout = 500 * time.Millisecond
	bindWait     = 1 * time.Second
)

// devLayoutPaths are fixed relative paths checked in development
// checkouts where the backend binary hasn't been packaged yet.
var devLayoutPaths = []string{
	filepath.Join("backend", "smartlab-backend"),
	filepath.Join("..", "backend", "smartlab-backend"),
	filepath.Join("target", "release", "smartlab-backend"),
}

// Supervisor owns the backend child process handle. The handle is
// non-nil iff the child is believed to be running (invariant I5).
type Supervisor struct {
	backendAddr string

	mu      sync.Mutex
	cmd     *exec.Cmd
	running bool
}

// New returns a Supervisor that targets the backend's TCP listen
// address (host:port).
func New(backendAddr string) *Supervisor {
	return &Supervisor{backendAddr: backendAddr}
}

// Start starts the backend binary if it is not already responding on
// its TCP address. Returns the running state on success.
func (s *Supervisor) Start() (bool, error) {
	if s.probe() {
		log.Info("backend already responding, not spawning", "addr", s.backendAddr)
		s.setRunning(true)
		return true, nil
	}

	path, err := s.locateExecutable()
	if err != nil {
		return false, err
	}

	cmd := exec.Command(path)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	configureDetached(cmd)

	if err := cmd.Start(); err != nil {
		return false, coreerr.Wrap(coreerr.ChildProcessFailure, "failed to spawn backend", err)
	}

	s.mu.Lock()
	s.cmd = cmd
	s.mu.Unlock()

	time.Sleep(bindWait)

	running := s.probe()
	s.setRunning(running)
	log.Info("backend spawned", "path", path, "running", running)
	return running, nil
}

// Stop kills the held child process and clears the handle. If no child
// handle is held, it only clears the running flag.
func (s *Supervisor) Stop() error {
	s.mu.Lock()
	cmd := s.cmd
	s.cmd = nil
	s.mu.Unlock()

	if cmd == nil || cmd.Process == nil {
		s.setRunning(false)
		return nil
	}

	if err := cmd.Process.Kill(); err != nil {
		log.Debug("kill failed, child may have already exited", logging.KeyError, err)
	}
	_, _ = cmd.Process.Wait()

	s.setRunning(false)
	return nil
}

// Check probes TCP liveness and updates the authoritative running
// flag from the probe result.
func (s *Supervisor) Check() bool {
	running := s.probe()
	s.setRunning(running)
	return running
}

// Running reports the last-known running flag without re-probing.
func (s *Supervisor) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Supervisor) setRunning(running bool) {
	s.mu.Lock()
	s.running = running
	s.mu.Unlock()
}

func (s *Supervisor) probe() bool {
	conn, err := net.DialTimeout("tcp", s.backendAddr, probeTimeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// locateExecutable searches the fixed order: application resource
// directory, directory of the current executable, fixed relative dev
// layout paths, and the same dev layout paths relative to the current
// working directory. The first existing file wins.
func (s *Supervisor) locateExecutable() (string, error) {
	candidates := make([]string, 0, 1+1+len(devLayoutPaths)*2)

	if resDir, err := resourceDir(); err == nil {
		candidates = append(candidates, filepath.Join(resDir, "smartlab-backend"))
	}

	if exePath, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exePath), "smartlab-backend"))
	}

	candidates = append(candidates, devLayoutPaths...)

	if cwd, err := os.Getwd(); err == nil {
		for _, p := range devLayoutPaths {
			candidates = append(candidates, filepath.Join(cwd, p))
		}
	}

	for _, candidate := range candidates {
		if fileExists(candidate) {
			return candidate, nil
		}
	}

	return "", coreerr.New(coreerr.ChildProcessFailure, "backend executable not found in any known location")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// resourceDir returns the packaged application's bundled-resources
// directory, if the current executable lives inside one: a
// "resources" sibling directory next to the executable, or (on
// Darwin) a macOS app bundle's Contents/Resources directory.
func resourceDir() (string, error) {
	exePath, err := os.Executable()
	if err != nil {
		return "", err
	}
	exeDir := filepath.Dir(exePath)

	if runtime.GOOS == "darwin" {
		if filepath.Base(exeDir) == "MacOS" {
			bundleContents := filepath.Dir(exeDir)
			return filepath.Join(bundleContents, "Resources"), nil
		}
	}

	return filepath.Join(exeDir, "resources"), nil
}
