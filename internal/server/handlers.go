package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mj1618/winmatch/internal/config"
	"github.com/mj1618/winmatch/internal/output"
	"github.com/mj1618/winmatch/internal/session"
	"gopkg.in/yaml.v3"
)

// toText serializes v to YAML for an MCP response.
func toText(v interface{}) string {
	b, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(b)
}

type profileEntry struct {
	Cmd         string  `yaml:"cmd"`
	Alias       string  `yaml:"alias,omitempty"`
	WindowName  string  `yaml:"window_name"`
	TemplateDir string  `yaml:"template_dir"`
	Foreground  bool    `yaml:"foreground"`
	Low         float64 `yaml:"low_threshold"`
	High        float64 `yaml:"high_threshold"`
}

func (s *Server) handleListProfiles(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries := make([]profileEntry, 0, len(s.cfg.Profiles))
	for i := range s.cfg.Profiles {
		p := &s.cfg.Profiles[i]
		entries = append(entries, profileEntry{
			Cmd:         p.Cmd,
			Alias:       p.Alias,
			WindowName:  p.WindowName,
			TemplateDir: s.cfg.TemplateDir(p),
			Foreground:  p.Foreground,
			Low:         p.LowThreshold,
			High:        p.HighThreshold,
		})
	}
	return mcp.NewToolResultText(toText(entries)), nil
}

func (s *Server) handleListWindows(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	title := stringParam(params, "title", "")

	s.providerMu.Lock()
	defer s.providerMu.Unlock()

	windows, err := s.cache.ListWindows(s.provider.Windows)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entries := output.NewWindowEntries(windows)
	if title != "" {
		filtered := entries[:0:0]
		for _, e := range entries {
			if strings.Contains(e.Title, title) {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}
	return mcp.NewToolResultText(toText(entries)), nil
}

func (s *Server) profile(params map[string]interface{}) (*config.Profile, error) {
	name := stringParam(params, "profile", "")
	if name == "" {
		return nil, errors.New("profile is required")
	}
	p, ok := s.cfg.Profile(name)
	if !ok {
		return nil, fmt.Errorf("unknown profile: %s", name)
	}
	return p, nil
}

func (s *Server) handleStartSession(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	p, err := s.profile(params)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	opts, err := s.cfg.SessionOptions(p)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// The session outlives this request, so it runs under the server context.
	s.providerMu.Lock()
	h, err := s.manager.Start(s.ctx, opts)
	s.providerMu.Unlock()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.cache.Invalidate()

	if ms := intParam(params, "duration_ms", 0); ms > 0 {
		timer := time.AfterFunc(time.Duration(ms)*time.Millisecond, h.Stop)
		go func() {
			<-h.Done()
			timer.Stop()
		}()
	}
	return mcp.NewToolResultText(toText(map[string]interface{}{
		"started": p.Cmd,
		"window":  p.WindowName,
	})), nil
}

func (s *Server) handleStopSession(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.manager.Stop() {
		return mcp.NewToolResultError("no session is running"), nil
	}
	done := make(chan struct{})
	go func() {
		s.manager.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return mcp.NewToolResultError(ctx.Err().Error()), nil
	}
	return mcp.NewToolResultText(toText(s.manager.Status())), nil
}

func (s *Server) handleSessionStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(toText(s.manager.Status())), nil
}

func (s *Server) handleMatchOnce(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	p, err := s.profile(params)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	opts, err := s.cfg.SessionOptions(p)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	click := boolParam(params, "click", false)

	// start_session takes the same lock, so no session can begin while
	// these clicks are sent.
	s.providerMu.Lock()
	defer s.providerMu.Unlock()

	if click && s.manager.Status().Running {
		return mcp.NewToolResultError(session.ErrAlreadyRunning.Error()), nil
	}

	snap, err := session.MatchOnce(ctx, s.provider, opts, click)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(toText(output.NewMatchReport(p.Cmd, snap))), nil
}

// Parameter extraction helpers for tool arguments.

func stringParam(params map[string]interface{}, key, defaultVal string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprintf("%v", v)
	}
	return defaultVal
}

func intParam(params map[string]interface{}, key string, defaultVal int) int {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		case int64:
			return int(n)
		}
	}
	return defaultVal
}

func boolParam(params map[string]interface{}, key string, defaultVal bool) bool {
	if v, ok := params[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return defaultVal
}
