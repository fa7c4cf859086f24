package claude

import (
	"encoding/json"
	"fmt"

	"github.com/egoavara/plugin-convert/internal/fsutil"
)

// mcpJSONWrapped represents the wrapped format: { "mcpServers": { ... } }
type mcpJSONWrapped struct {
	MCPServers map[string]MCPServer `json:"mcpServers"`
}

// ParseMCPJSON parses a .mcp.json file and returns the server configurations.
// Supports two formats:
// 1. Direct format: { "serverName": { "command": "...", ... } }
// 2. Wrapped format: { "mcpServers": { "serverName": { "command": "...", ... } } }
func ParseMCPJSON(data []byte) (map[string]MCPServer, error) {
	var wrapped mcpJSONWrapped
	if err := json.Unmarshal(data, &wrapped); err == nil && len(wrapped.MCPServers) > 0 {
		return wrapped.MCPServers, nil
	}

	var servers map[string]MCPServer
	if err := json.Unmarshal(data, &servers); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", MCPFile, err)
	}

	// Drop non-server entries such as an empty "mcpServers" wrapper
	result := make(map[string]MCPServer)
	for name, config := range servers {
		if name != "mcpServers" && (config.Command != "" || config.URL != "") {
			result[name] = config
		}
	}

	return result, nil
}

// MarshalMCPJSON renders servers in the wrapped format
func MarshalMCPJSON(servers map[string]MCPServer) ([]byte, error) {
	return fsutil.MarshalJSON(mcpJSONWrapped{MCPServers: servers})
}
