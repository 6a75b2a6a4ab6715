// Package setup registers the shop MCP server with coding agents (Claude Code,
// Cursor) so they can read and switch the shop context.
package setup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-ports/shopctl/internal/atomicfile"
)

// ServerName is the key of the shop entry in an agent's mcpServers map.
const ServerName = "shop"

// Agent names a supported coding agent.
type Agent string

// Supported agents.
const (
	ClaudeCode Agent = "claude-code"
	Cursor     Agent = "cursor"
)

// Agents lists every supported agent.
var Agents = []Agent{ClaudeCode, Cursor}

// Result is the return value from Install and Uninstall.
type Result struct {
	Status  string // "installed", "updated", "unchanged" or "removed"
	Message string
}

// ServerEntry returns the mcpServers entry launching `shop mcp`. A non-empty
// root is pinned with --root so the agent does not depend on its environment.
func ServerEntry(root string) map[string]any {
	args := []any{"mcp"}
	if root != "" {
		args = []any{"--root", root, "mcp"}
	}
	return map[string]any{
		"command": "shop",
		"args":    args,
		"type":    "stdio",
	}
}

// ConfigPath returns the MCP config file of agent. project selects the
// per-project file under dir instead of the user-level one under home.
//
//revive:disable:flag-parameter
func ConfigPath(agent Agent, home, dir string, project bool) (string, error) {
	switch agent {
	case ClaudeCode:
		if project {
			return filepath.Join(dir, ".mcp.json"), nil
		}
		return filepath.Join(home, ".claude.json"), nil
	case Cursor:
		base := home
		if project {
			base = dir
		}
		return filepath.Join(base, ".cursor", "mcp.json"), nil
	default:
		return "", fmt.Errorf("setup: unknown agent %q (want %s or %s)", agent, ClaudeCode, Cursor)
	}
}

//revive:enable:flag-parameter

// DefaultConfigPath is ConfigPath for the current user and working directory.
//
//revive:disable:flag-parameter
func DefaultConfigPath(agent Agent, project bool) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return ConfigPath(agent, home, cwd, project)
}

//revive:enable:flag-parameter

// ---------------------------------------------------------------------------
// JSON helpers
// ---------------------------------------------------------------------------

// readJSON returns the decoded object at path, or an empty map when the file
// is absent. Unparseable content is an error so that a hand-edited file is
// never clobbered.
func readJSON(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return make(map[string]any), nil
	}
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("setup: %s: %w", path, err)
	}
	if m == nil {
		m = make(map[string]any)
	}
	return m, nil
}

func writeJSON(path string, data map[string]any) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	return atomicfile.Write(path, append(b, '\n'))
}

func sameJSON(a, b any) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	return errA == nil && errB == nil && bytes.Equal(ja, jb)
}

// ---------------------------------------------------------------------------
// Install / Uninstall
// ---------------------------------------------------------------------------

// Install adds or refreshes the shop entry in the mcpServers map at path.
// Other servers and top-level keys are preserved.
func Install(path, root string) (Result, error) {
	data, err := readJSON(path)
	if err != nil {
		return Result{}, err
	}
	servers, _ := data["mcpServers"].(map[string]any)
	if servers == nil {
		servers = make(map[string]any)
		data["mcpServers"] = servers
	}

	entry := ServerEntry(root)
	prev, exists := servers[ServerName]
	if exists && sameJSON(prev, entry) {
		return Result{Status: "unchanged", Message: "Already installed in " + path}, nil
	}
	servers[ServerName] = entry
	if err := writeJSON(path, data); err != nil {
		return Result{}, err
	}
	if exists {
		return Result{Status: "updated", Message: "Updated mcpServers." + ServerName + " in " + path}, nil
	}
	return Result{Status: "installed", Message: "Installed mcpServers." + ServerName + " in " + path}, nil
}

// Uninstall removes the shop entry from path. An emptied file is deleted.
func Uninstall(path string) (Result, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Result{Status: "unchanged", Message: "Nothing to remove"}, nil
	}
	data, err := readJSON(path)
	if err != nil {
		return Result{}, err
	}
	servers, _ := data["mcpServers"].(map[string]any)
	if _, exists := servers[ServerName]; !exists {
		return Result{Status: "unchanged", Message: "Nothing to remove"}, nil
	}
	delete(servers, ServerName)
	if len(servers) == 0 {
		delete(data, "mcpServers")
	}
	if len(data) == 0 {
		if err := os.Remove(path); err != nil {
			return Result{}, err
		}
	} else if err := writeJSON(path, data); err != nil {
		return Result{}, err
	}
	return Result{Status: "removed", Message: "Removed mcpServers." + ServerName + " from " + path}, nil
}
