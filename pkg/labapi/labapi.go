// Package labapi defines the JSON request/response contract for the
// command surface (spec §6.4): every operation the UI shell can invoke,
// its argument shape, and a Dispatch entry point that decodes a raw
// operation name and argument payload into a call against an
// internal/command.Registry. There is no outbound network client here;
// the UI shell and this process share a machine, so the contract is a
// local JSON envelope rather than an HTTP API.
package labapi

import (
	"encoding/json"

	"github.com/smartlab-classroom/peerfabric/internal/command"
	"github.com/smartlab-classroom/peerfabric/internal/coreerr"
)

// Request is the JSON envelope the UI shell sends: an operation name
// plus its arguments, still encoded so each operation can define its
// own argument shape.
type Request struct {
	Op   string          `json:"op"`
	Args json.RawMessage `json:"args,omitempty"`
}

// PingHostArgs is ping_host's argument shape.
type PingHostArgs struct {
	IP string `json:"ip"`
}

// WakeOnLANArgs is wake_on_lan's argument shape. Broadcast is optional;
// an empty value falls back to the limited broadcast address.
type WakeOnLANArgs struct {
	MAC       string `json:"mac"`
	Broadcast string `json:"broadcast,omitempty"`
}

// RemoteShutdownArgs is remote_shutdown's argument shape.
type RemoteShutdownArgs struct {
	IP       string `json:"ip"`
	Username string `json:"username,omitempty"`
}

// RemoteRestartArgs is remote_restart's argument shape.
type RemoteRestartArgs struct {
	IP string `json:"ip"`
}

// SetAppModeArgs is set_app_mode's argument shape.
type SetAppModeArgs struct {
	Mode string `json:"mode"`
}

// HostPortArgs covers every operation keyed by a host and an optional
// port: open_vnc_viewer, open_remote_desktop, get_remote_control_url,
// check_remote_control_available.
type HostPortArgs struct {
	IP   string `json:"ip"`
	Port int    `json:"port,omitempty"`
}

// CaptureScreenJPEGArgs is capture_screen_jpeg's argument shape.
type CaptureScreenJPEGArgs struct {
	Quality int `json:"quality,omitempty"`
}

// SimulateMouseClickArgs is simulate_mouse_click's argument shape.
type SimulateMouseClickArgs struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Button string `json:"button,omitempty"`
}

// PointArgs covers simulate_mouse_move's argument shape.
type PointArgs struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// KeyArgs covers simulate_key_press's argument shape.
type KeyArgs struct {
	Key string `json:"key"`
}

// TextArgs covers simulate_type_text's argument shape.
type TextArgs struct {
	Text string `json:"text"`
}

// PortArgs covers start_remote_server's argument shape.
type PortArgs struct {
	Port int `json:"port,omitempty"`
}

// Dispatch decodes req.Args against the shape the named operation
// expects and invokes it against reg. Unknown operations and
// malformed argument payloads both come back as a failed Result rather
// than a Go error, matching every other command-surface failure mode.
func Dispatch(reg *command.Registry, req Request) command.Result {
	switch req.Op {
	case "get_local_ip_address":
		return reg.GetLocalIPAddress()
	case "scan_network":
		return reg.ScanNetwork()
	case "ping_host":
		var args PingHostArgs
		if !decode(req.Args, &args) {
			return badArgs()
		}
		return reg.PingHost(args.IP)
	case "check_computer_status":
		var args PingHostArgs
		if !decode(req.Args, &args) {
			return badArgs()
		}
		return reg.CheckComputerStatus(args.IP)
	case "wake_on_lan":
		var args WakeOnLANArgs
		if !decode(req.Args, &args) {
			return badArgs()
		}
		return reg.WakeOnLAN(args.MAC, args.Broadcast)
	case "remote_shutdown":
		var args RemoteShutdownArgs
		if !decode(req.Args, &args) {
			return badArgs()
		}
		return reg.RemoteShutdown(args.IP, args.Username)
	case "remote_restart":
		var args RemoteRestartArgs
		if !decode(req.Args, &args) {
			return badArgs()
		}
		return reg.RemoteRestart(args.IP)
	case "open_vnc_viewer":
		var args HostPortArgs
		if !decode(req.Args, &args) {
			return badArgs()
		}
		return reg.OpenVNCViewer(args.IP, args.Port)
	case "open_remote_desktop":
		var args HostPortArgs
		if !decode(req.Args, &args) {
			return badArgs()
		}
		return reg.OpenRemoteDesktop(args.IP)
	case "start_backend":
		return reg.StartBackend()
	case "stop_backend":
		return reg.StopBackend()
	case "check_backend_status":
		return reg.CheckBackendStatus()
	case "get_app_mode":
		return reg.GetAppMode()
	case "set_app_mode":
		var args SetAppModeArgs
		if !decode(req.Args, &args) {
			return badArgs()
		}
		return reg.SetAppMode(args.Mode)
	case "load_app_mode":
		return reg.LoadAppMode()
	case "start_server_broadcast":
		return reg.StartServerBroadcast()
	case "stop_server_broadcast":
		return reg.StopServerBroadcast()
	case "discover_server_udp":
		return reg.DiscoverServerUDP()
	case "capture_screen":
		return reg.CaptureScreen()
	case "capture_screen_jpeg":
		var args CaptureScreenJPEGArgs
		if req.Args != nil && !decode(req.Args, &args) {
			return badArgs()
		}
		return reg.CaptureScreenJPEG(args.Quality)
	case "simulate_mouse_click":
		var args SimulateMouseClickArgs
		if !decode(req.Args, &args) {
			return badArgs()
		}
		return reg.SimulateMouseClick(args.X, args.Y, args.Button)
	case "simulate_mouse_move":
		var args PointArgs
		if !decode(req.Args, &args) {
			return badArgs()
		}
		return reg.SimulateMouseMove(args.X, args.Y)
	case "simulate_key_press":
		var args KeyArgs
		if !decode(req.Args, &args) {
			return badArgs()
		}
		return reg.SimulateKeyPress(args.Key)
	case "simulate_type_text":
		var args TextArgs
		if !decode(req.Args, &args) {
			return badArgs()
		}
		return reg.SimulateTypeText(args.Text)
	case "start_remote_server":
		var args PortArgs
		if req.Args != nil && !decode(req.Args, &args) {
			return badArgs()
		}
		return reg.StartRemoteServer(args.Port)
	case "stop_remote_server":
		return reg.StopRemoteServer()
	case "get_remote_server_status":
		return reg.GetRemoteServerStatus()
	case "get_remote_control_url":
		var args HostPortArgs
		if !decode(req.Args, &args) {
			return badArgs()
		}
		return reg.GetRemoteControlURL(args.IP, args.Port)
	case "check_remote_control_available":
		var args HostPortArgs
		if !decode(req.Args, &args) {
			return badArgs()
		}
		return reg.CheckRemoteControlAvailable(args.IP, args.Port)
	case "start_remote_broadcast":
		return reg.StartRemoteBroadcast()
	case "discover_remote_peers":
		return reg.DiscoverRemotePeers()
	default:
		return command.Result{Success: false, Message: "unknown operation: " + req.Op}
	}
}

func decode(raw json.RawMessage, v any) bool {
	if raw == nil {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

func badArgs() command.Result {
	return command.Result{Success: false, Message: coreerr.New(coreerr.InvalidInput, "malformed operation arguments").Error()}
}
