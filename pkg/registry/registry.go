// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

func LoadRegistry(path string) (*AgentRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg AgentRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

func SaveRegistry(reg *AgentRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

// Validate checks the registry for duplicate or incomplete entries.
func (r *AgentRegistry) Validate() error {
	if len(r.Agents) == 0 {
		return fmt.Errorf("registry contains no agents")
	}

	ids := make(map[string]bool)
	for _, agent := range r.Agents {
		if agent.ID == "" {
			return fmt.Errorf("agent missing required field: ID")
		}
		if ids[agent.ID] {
			return fmt.Errorf("duplicate agent ID: %s", agent.ID)
		}
		ids[agent.ID] = true

		if agent.DisplayName == "" {
			return fmt.Errorf("agent %s missing required field: DisplayName", agent.ID)
		}
		if agent.TaskType == "" {
			return fmt.Errorf("agent %s missing required field: TaskType", agent.ID)
		}
		if agent.Category == "" {
			return fmt.Errorf("agent %s missing required field: Category", agent.ID)
		}
	}
	return nil
}

// FindByTaskType returns the agent registered for a Camunda task type.
func (r *AgentRegistry) FindByTaskType(taskType string) (*Agent, bool) {
	for i := range r.Agents {
		if r.Agents[i].TaskType == taskType {
			return &r.Agents[i], true
		}
	}
	return nil, false
}
