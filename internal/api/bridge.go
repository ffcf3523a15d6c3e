package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/piotrC4/mqtt-rflink-bridge/internal/bridges/rflink"
)

// commandTimeout bounds how long a handler waits for the control loop.
const commandTimeout = 5 * time.Second

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	BridgeRunning bool   `json:"bridge_running"`
	MQTTConnected bool   `json:"mqtt_connected"`
	SerialOK      bool   `json:"serial_ok"`
}

// ModeResponse is returned by the mode and reset endpoints.
type ModeResponse struct {
	Mode string `json:"mode"`
	Code string `json:"code"`

	// Announced is false when the mode was changed but its confirmation
	// could not be published.
	Announced *bool `json:"announced,omitempty"`
}

// SetModeRequest is the body of PUT /mode. Mode is a name ("JSON") or a
// code ("2").
type SetModeRequest struct {
	Mode string `json:"mode"`
}

// SendRequest is the body of POST /send.
type SendRequest struct {
	Command string `json:"command"`
}

// handleHealth reports whether the bridge and its links are up.
// It answers 503 when the control loop is not running.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := HealthResponse{
		Status:        "ok",
		Version:       s.version,
		BridgeRunning: s.bridge.Running(),
		MQTTConnected: s.bridge.MQTTConnected(),
		SerialOK:      s.bridge.SerialHealthy(),
	}

	status := http.StatusOK
	switch {
	case !resp.BridgeRunning:
		resp.Status = "stopped"
		status = http.StatusServiceUnavailable
	case !resp.MQTTConnected || !resp.SerialOK:
		resp.Status = "degraded"
	}

	writeJSON(w, status, resp)
}

// handleGetMode returns the active publish mode.
func (s *Server) handleGetMode(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, modeResponse(s.bridge.Mode(), nil))
}

// handleSetMode changes the publish mode through the command queue.
func (s *Server) handleSetMode(w http.ResponseWriter, r *http.Request) {
	var req SetModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	mode, err := parseModeRequest(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	s.runModeCommand(w, r, rflink.SetModeCommand(mode))
}

// handleReset forces the publish mode back to STANDARD.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.runModeCommand(w, r, rflink.ResetCommand())
}

// runModeCommand executes a mode-changing command and replies with the
// resulting mode.
func (s *Server) runModeCommand(w http.ResponseWriter, r *http.Request, cmd rflink.Command) {
	err := s.execute(r.Context(), cmd)

	var announced *bool
	switch {
	case err == nil:
	case errors.Is(err, rflink.ErrPublishFailed):
		// Persisted and applied, only the bus confirmation was lost.
		s.logger.Warn("mode changed but not announced", "error", err)
		f := false
		announced = &f
	default:
		writeCommandError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, modeResponse(s.bridge.Mode(), announced))
}

// handleSend forwards one command line to the receiver.
func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Command == "" {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "command is required")
		return
	}
	// The port terminates the line itself; embedded breaks would inject
	// extra commands.
	if strings.ContainsAny(req.Command, "\r\n") {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "command must be a single line")
		return
	}

	if err := s.execute(r.Context(), rflink.SendCommand(req.Command)); err != nil {
		writeCommandError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

// execute runs cmd on the bridge's control loop with a deadline.
func (s *Server) execute(ctx context.Context, cmd rflink.Command) error {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()
	return s.bridge.Execute(ctx, cmd)
}

// parseModeRequest accepts a mode name or a numeric code. Unlike the bus
// command, unknown values are rejected instead of meaning STANDARD.
func parseModeRequest(value string) (rflink.PublishMode, error) {
	for _, m := range []rflink.PublishMode{rflink.ModeStandard, rflink.ModeJSON, rflink.ModeRaw} {
		if strings.EqualFold(value, m.String()) {
			return m, nil
		}
	}
	return rflink.ParseModeCode(value)
}

func modeResponse(mode rflink.PublishMode, announced *bool) ModeResponse {
	return ModeResponse{Mode: mode.String(), Code: mode.Code(), Announced: announced}
}
