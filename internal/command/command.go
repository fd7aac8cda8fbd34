// Package command implements the namespaced operation registry the UI
// shell calls into: one method per named operation in the command
// surface, each returning a JSON-serializable Result instead of a raw
// Go error so the shell can render success/failure uniformly.
package command

import (
	"encoding/base64"
	"net"
	"os/exec"
	"runtime"
	"strconv"
	"time"

	"github.com/smartlab-classroom/peerfabric/internal/config"
	"github.com/smartlab-classroom/peerfabric/internal/coreerr"
	"github.com/smartlab-classroom/peerfabric/internal/discovery"
	"github.com/smartlab-classroom/peerfabric/internal/health"
	"github.com/smartlab-classroom/peerfabric/internal/logging"
	"github.com/smartlab-classroom/peerfabric/internal/netscan"
	"github.com/smartlab-classroom/peerfabric/internal/remote/desktop"
	"github.com/smartlab-classroom/peerfabric/internal/remote/server"
	"github.com/smartlab-classroom/peerfabric/internal/supervisor"
	"github.com/smartlab-classroom/peerfabric/internal/wol"
)

var log = logging.L("command")

// Result is the uniform shape every operation returns: a success flag,
// a human-readable message for the UI's status line, and optional
// structured payload data.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func ok(message string, data any) Result {
	return Result{Success: true, Message: message, Data: data}
}

func fail(err error) Result {
	message := err.Error()
	if kind, isErr := coreerr.KindOf(err); isErr {
		log.Debug("operation failed", "kind", kind, "error", message)
	} else {
		log.Debug("operation failed", "error", message)
	}
	return Result{Success: false, Message: message}
}

// Registry holds the long-lived components every operation dispatches
// to. One Registry is created per process; its component handles
// outlive any individual command invocation.
type Registry struct {
	cfg          *config.Config
	supervisor   *supervisor.Supervisor
	remoteServer *server.Server
	advertiser   *discovery.Advertiser
	health       *health.Monitor
}

// New creates a command registry wired to the given configuration. The
// supervisor, remote-control server, and discovery advertiser are
// constructed here but not started; start_backend/start_remote_server/
// start_server_broadcast do that on demand.
func New(cfg *config.Config, monitor *health.Monitor) *Registry {
	streamConfig := desktop.DefaultStreamConfig()
	streamConfig.Quality = cfg.FrameQuality
	if cfg.FrameRateHz > 0 {
		streamConfig.FrameDelay = time.Second / time.Duration(cfg.FrameRateHz)
	}

	return &Registry{
		cfg:          cfg,
		supervisor:   supervisor.New(cfg.BackendAddr),
		remoteServer: server.New(monitor, streamConfig),
		advertiser:   discovery.NewAdvertiser(cfg.RemoteServerPort, time.Duration(cfg.DiscoveryIntervalSec)*time.Second),
		health:       monitor,
	}
}

// Shutdown stops every component the registry owns. Called once at
// process exit.
func (r *Registry) Shutdown() {
	r.advertiser.Stop()
	if err := r.remoteServer.Stop(); err != nil {
		log.Warn("remote-control server stop failed during shutdown", logging.KeyError, err)
	}
	if err := r.supervisor.Stop(); err != nil {
		log.Warn("backend stop failed during shutdown", logging.KeyError, err)
	}
}

// GetLocalIPAddress reports this node's LAN IPv4 address.
func (r *Registry) GetLocalIPAddress() Result {
	return ok("", discovery.LocalIPv4())
}

// ScanNetwork sweeps the local /24 for hosts with any scanPorts open.
func (r *Registry) ScanNetwork() Result {
	localIP := discovery.LocalIPv4()
	hosts := netscan.ScanSubnet(localIP, r.cfg.ScanConcurrency)
	return ok("", hosts)
}

// PingHost probes a single host's liveness.
func (r *Registry) PingHost(ip string) Result {
	timeout := time.Duration(r.cfg.PingTimeoutMs) * time.Millisecond
	result := netscan.PingHost(ip, timeout)
	if !result.Alive {
		return ok("host did not respond", result)
	}
	return ok("", result)
}

// CheckComputerStatus is an alias for ping_host under the classroom
// roster's "is this machine up" naming.
func (r *Registry) CheckComputerStatus(ip string) Result {
	return r.PingHost(ip)
}

// WakeOnLAN sends a magic packet to mac. broadcast, if non-empty,
// overrides the default limited-broadcast target address.
func (r *Registry) WakeOnLAN(mac, broadcast string) Result {
	if err := wol.WakeTo(mac, broadcast); err != nil {
		return fail(err)
	}
	return ok("magic packet sent", nil)
}

// StartBackend starts the supervised backend process if not already
// responding.
func (r *Registry) StartBackend() Result {
	running, err := r.supervisor.Start()
	if err != nil {
		return fail(err)
	}
	return ok("", map[string]bool{"running": running})
}

// StopBackend stops the supervised backend process.
func (r *Registry) StopBackend() Result {
	if err := r.supervisor.Stop(); err != nil {
		return fail(err)
	}
	return ok("", map[string]bool{"running": false})
}

// CheckBackendStatus re-probes the backend's TCP liveness.
func (r *Registry) CheckBackendStatus() Result {
	running := r.supervisor.Check()
	return ok("", map[string]bool{"running": running})
}

// GetAppMode returns the node's mode as read from the persisted mode
// file (the same lookup LoadAppMode performs).
func (r *Registry) GetAppMode() Result {
	return ok("", config.LoadMode())
}

// SetAppMode persists the node's Teacher/Client role.
func (r *Registry) SetAppMode(mode string) Result {
	m := config.Mode(mode)
	if m != config.ModeTeacher && m != config.ModeClient {
		return fail(coreerr.New(coreerr.InvalidInput, "mode must be \"Teacher\" or \"Client\""))
	}
	if err := config.SaveMode(m); err != nil {
		return fail(coreerr.Wrap(coreerr.IoFailure, "failed to save mode", err))
	}
	return ok("", m)
}

// LoadAppMode re-reads the persisted mode from disk.
func (r *Registry) LoadAppMode() Result {
	return ok("", config.LoadMode())
}

// StartServerBroadcast begins periodic UDP beacon advertisement.
func (r *Registry) StartServerBroadcast() Result {
	r.advertiser.Start()
	return ok("broadcasting", nil)
}

// StopServerBroadcast stops UDP beacon advertisement.
func (r *Registry) StopServerBroadcast() Result {
	r.advertiser.Stop()
	return ok("", nil)
}

// StartRemoteBroadcast is an alias of StartServerBroadcast under the
// remote-control naming used alongside start_remote_server.
func (r *Registry) StartRemoteBroadcast() Result {
	return r.StartServerBroadcast()
}

// DiscoverServerUDP solicits and collects beacons for the default 5s
// seek window.
func (r *Registry) DiscoverServerUDP() Result {
	peers, err := discovery.Seek(0)
	if err != nil {
		return fail(coreerr.Wrap(coreerr.IoFailure, "discovery failed", err))
	}
	return ok("", peers)
}

// DiscoverRemotePeers solicits and collects beacons for the shorter
// configured remote-peer seek window (3s by default), distinct from
// DiscoverServerUDP's 5s general-discovery default.
func (r *Registry) DiscoverRemotePeers() Result {
	timeout := time.Duration(r.cfg.SeekTimeoutSec) * time.Second
	peers, err := discovery.Seek(timeout)
	if err != nil {
		return fail(coreerr.Wrap(coreerr.IoFailure, "discovery failed", err))
	}
	return ok("", peers)
}

// CaptureScreen captures the primary display and returns it PNG-encoded
// and base64-wrapped, for lossless one-off snapshots.
func (r *Registry) CaptureScreen() Result {
	capturer, err := desktop.NewScreenCapturer(desktop.DefaultConfig())
	if err != nil {
		return fail(coreerr.Wrap(coreerr.ResourceUnavailable, "screen capture unavailable", err))
	}
	defer capturer.Close()

	img, err := desktop.CapturePrimary(capturer, r.cfg.CaptureRetries)
	if err != nil {
		return fail(coreerr.Wrap(coreerr.ResourceUnavailable, "capture failed", err))
	}
	data, err := desktop.EncodePNG(img)
	if err != nil {
		return fail(coreerr.Wrap(coreerr.IoFailure, "png encode failed", err))
	}
	return ok("", base64.StdEncoding.EncodeToString(data))
}

// CaptureScreenJPEG captures the primary display and returns it
// JPEG-encoded and base64-wrapped at the given quality (1-100; 0 uses
// the configured default).
func (r *Registry) CaptureScreenJPEG(quality int) Result {
	if quality <= 0 {
		quality = r.cfg.FrameQuality
	}

	capturer, err := desktop.NewScreenCapturer(desktop.DefaultConfig())
	if err != nil {
		return fail(coreerr.Wrap(coreerr.ResourceUnavailable, "screen capture unavailable", err))
	}
	defer capturer.Close()

	img, err := desktop.CapturePrimary(capturer, r.cfg.CaptureRetries)
	if err != nil {
		return fail(coreerr.Wrap(coreerr.ResourceUnavailable, "capture failed", err))
	}
	data, err := desktop.EncodeJPEG(img, quality)
	if err != nil {
		return fail(coreerr.Wrap(coreerr.IoFailure, "jpeg encode failed", err))
	}
	return ok("", base64.StdEncoding.EncodeToString(data))
}

// SimulateMouseClick injects a mouse click at the given screen
// coordinates.
func (r *Registry) SimulateMouseClick(x, y int, button string) Result {
	if err := desktop.NewInputHandler().SendMouseClick(x, y, button); err != nil {
		return fail(coreerr.Wrap(coreerr.IoFailure, "mouse click failed", err))
	}
	return ok("", nil)
}

// SimulateMouseMove injects a mouse move to the given screen
// coordinates.
func (r *Registry) SimulateMouseMove(x, y int) Result {
	if err := desktop.NewInputHandler().SendMouseMove(x, y); err != nil {
		return fail(coreerr.Wrap(coreerr.IoFailure, "mouse move failed", err))
	}
	return ok("", nil)
}

// SimulateKeyPress injects a single key press.
func (r *Registry) SimulateKeyPress(key string) Result {
	if err := desktop.NewInputHandler().SendKeyPress(key, nil); err != nil {
		return fail(coreerr.Wrap(coreerr.IoFailure, "key press failed", err))
	}
	return ok("", nil)
}

// SimulateTypeText injects literal text via Unicode key events.
func (r *Registry) SimulateTypeText(text string) Result {
	if err := desktop.NewInputHandler().TypeText(text); err != nil {
		return fail(coreerr.Wrap(coreerr.IoFailure, "type text failed", err))
	}
	return ok("", nil)
}

// StartRemoteServer binds the remote-control WebSocket listener. port
// <= 0 uses the configured RemoteServerPort; a subsequent call with the same port after
// StopRemoteServer must succeed (acceptance criterion 6).
func (r *Registry) StartRemoteServer(port int) Result {
	if port <= 0 {
		port = r.cfg.RemoteServerPort
	}
	bound, err := r.remoteServer.Start(port)
	if err != nil {
		return fail(err)
	}
	return ok("", map[string]int{"port": bound})
}

// StopRemoteServer closes the remote-control listener and every
// active session.
func (r *Registry) StopRemoteServer() Result {
	if err := r.remoteServer.Stop(); err != nil {
		return fail(err)
	}
	return ok("", nil)
}

// GetRemoteServerStatus reports whether the remote-control server is
// running, its bound port, and the number of active sessions.
func (r *Registry) GetRemoteServerStatus() Result {
	return ok("", map[string]any{
		"running":        r.remoteServer.Running(),
		"port":           r.remoteServer.Port(),
		"activeSessions": r.remoteServer.ActiveSessions(),
	})
}

// GetRemoteControlURL builds the ws:// URL a controller dials to open
// a remote-control session against ip.
func (r *Registry) GetRemoteControlURL(ip string, port int) Result {
	if port <= 0 {
		port = r.cfg.RemoteServerPort
	}
	return ok("", "ws://"+ip+":"+strconv.Itoa(port)+"/")
}

// CheckRemoteControlAvailable probes whether a remote-control listener
// is reachable at ip:port (TCP-connect only; no WebSocket handshake).
func (r *Registry) CheckRemoteControlAvailable(ip string, port int) Result {
	if port <= 0 {
		port = r.cfg.RemoteServerPort
	}
	timeout := time.Duration(r.cfg.PingTimeoutMs) * time.Millisecond
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(ip, strconv.Itoa(port)), timeout)
	if err != nil {
		return ok("", map[string]bool{"available": false})
	}
	conn.Close()
	return ok("", map[string]bool{"available": true})
}

// RemoteShutdown and RemoteRestart have no counterpart in this fabric:
// there is no authenticated channel to another node's privileged
// shutdown surface (the design's discovery/remote-control protocols
// are intentionally unauthenticated per spec's Non-goals). They are
// kept in the registry so the UI has a stable entry point, and fail
// explicitly rather than silently no-op or send an unauthenticated
// privileged command onto the LAN.
func (r *Registry) RemoteShutdown(ip, username string) Result {
	return fail(coreerr.New(coreerr.ResourceUnavailable, "remote shutdown requires an authenticated control channel this fabric does not provide"))
}

func (r *Registry) RemoteRestart(ip string) Result {
	return fail(coreerr.New(coreerr.ResourceUnavailable, "remote restart requires an authenticated control channel this fabric does not provide"))
}

// OpenVNCViewer launches the platform's VNC client pointed at ip:port,
// a purely local action (spawning a process on this machine), unlike
// RemoteShutdown/RemoteRestart which would require sending a command
// to the remote machine itself.
func (r *Registry) OpenVNCViewer(ip string, port int) Result {
	if port <= 0 {
		port = 5900
	}
	target := ip + ":" + strconv.Itoa(port)

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", "vnc://"+target)
	case "windows":
		cmd = exec.Command("cmd", "/C", "start", "vncviewer", target)
	default:
		cmd = exec.Command("vncviewer", target)
	}
	if err := cmd.Start(); err != nil {
		return fail(coreerr.Wrap(coreerr.ChildProcessFailure, "failed to launch VNC viewer", err))
	}
	return ok("", nil)
}

// OpenRemoteDesktop launches the platform's RDP client pointed at ip,
// also a local process spawn.
func (r *Registry) OpenRemoteDesktop(ip string) Result {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", "rdp://"+ip)
	case "windows":
		cmd = exec.Command("mstsc", "/v:"+ip)
	default:
		cmd = exec.Command("xfreerdp", "/v:"+ip)
	}
	if err := cmd.Start(); err != nil {
		return fail(coreerr.Wrap(coreerr.ChildProcessFailure, "failed to launch remote desktop client", err))
	}
	return ok("", nil)
}
