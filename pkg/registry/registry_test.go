// pkg/registry/registry_test.go
package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createAgent(id string) Agent {
	return Agent{
		ID:                   id,
		DisplayName:          "Validate Provider Data",
		Description:          "Validates provider contact and credential data",
		Category:             "validation",
		Version:              "1.0.0",
		TaskType:             id,
		ImplementationStatus: "completed",
		ErrorCodes:           []string{"PARSE_ERROR", "VALIDATION_FAILED"},
		Timeout:              "30s",
		Workflows:            []string{"provider-validation-pipeline"},
	}
}

func TestRegistry_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "configs", "agent-registry.json")

	reg := &AgentRegistry{
		Version:     "1.0.0",
		LastUpdated: "2026-08-01T00:00:00Z",
		Agents:      []Agent{createAgent("validate-provider-data")},
	}

	require.NoError(t, SaveRegistry(reg, path))

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	require.Len(t, loaded.Agents, 1)
	assert.Equal(t, "validate-provider-data", loaded.Agents[0].ID)
	assert.Equal(t, []string{"PARSE_ERROR", "VALIDATION_FAILED"}, loaded.Agents[0].ErrorCodes)
}

func TestRegistry_LoadMissingFile(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestRegistry_Validate(t *testing.T) {
	tests := []struct {
		name    string
		reg     AgentRegistry
		wantErr string
	}{
		{
			name:    "empty registry",
			reg:     AgentRegistry{},
			wantErr: "no agents",
		},
		{
			name: "duplicate ids",
			reg: AgentRegistry{Agents: []Agent{
				createAgent("enrich-provider-info"),
				createAgent("enrich-provider-info"),
			}},
			wantErr: "duplicate agent ID",
		},
		{
			name: "missing display name",
			reg: AgentRegistry{Agents: []Agent{
				{ID: "assess-data-quality", TaskType: "assess-data-quality", Category: "validation"},
			}},
			wantErr: "DisplayName",
		},
		{
			name: "missing task type",
			reg: AgentRegistry{Agents: []Agent{
				{ID: "assess-data-quality", DisplayName: "Assess Data Quality", Category: "validation"},
			}},
			wantErr: "TaskType",
		},
		{
			name: "valid",
			reg: AgentRegistry{Agents: []Agent{
				createAgent("validate-provider-data"),
				createAgent("enrich-provider-info"),
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.reg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestRegistry_FindByTaskType(t *testing.T) {
	reg := AgentRegistry{Agents: []Agent{
		createAgent("validate-provider-data"),
		createAgent("detect-duplicates"),
	}}

	agent, ok := reg.FindByTaskType("detect-duplicates")
	require.True(t, ok)
	assert.Equal(t, "detect-duplicates", agent.ID)

	_, ok = reg.FindByTaskType("unknown-task")
	assert.False(t, ok)
}
