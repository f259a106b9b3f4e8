package aclapi

import (
	"testing"

	"github.com/hashicorp/consul/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionFromDefaults(t *testing.T) {
	conn := connectionFrom(map[string]any{})
	assert.Equal(t, "localhost:8500", conn.Address)
	assert.Equal(t, "http", conn.Scheme)
	assert.Empty(t, conn.Token)
	assert.Equal(t, 3, conn.Tries)
}

func TestConnectionFromMergedSettings(t *testing.T) {
	conn := connectionFrom(map[string]any{
		"hostname":      "consul.internal",
		"protocol":      "https",
		"port":          8501,
		"api_tries":     5,
		"acl_api_token": "root-token",
	})
	assert.Equal(t, "consul.internal:8501", conn.Address)
	assert.Equal(t, "https", conn.Scheme)
	assert.Equal(t, "root-token", conn.Token)
	assert.Equal(t, 5, conn.Tries)
}

func TestConnectionFromFloatPort(t *testing.T) {
	// Numbers decoded from JSON manifests arrive as float64.
	conn := connectionFrom(map[string]any{"port": float64(8501), "api_tries": 0})
	assert.Equal(t, "localhost:8501", conn.Address)
	assert.Equal(t, 1, conn.Tries, "tries clamps to at least one attempt")
}

func TestPolicyLinks(t *testing.T) {
	links := policyLinks(map[string]any{
		"policies": []any{"agent-policy", "dns-policy", ""},
	})
	assert.Equal(t, []*api.ACLTokenPolicyLink{
		{Name: "agent-policy"},
		{Name: "dns-policy"},
	}, links)

	assert.Nil(t, policyLinks(map[string]any{}))
}

func TestSplitLegacyACL(t *testing.T) {
	policy, token := splitLegacyACL("agent", map[string]any{
		"rules":         `node "" { policy = "write" }`,
		"id":            "legacy-secret",
		"hostname":      "consul.internal",
		"acl_api_token": "root-token",
	})

	require.NotNil(t, policy)
	assert.Equal(t, `node "" { policy = "write" }`, policy["rules"])
	assert.NotContains(t, policy, "id", "the legacy id never lands in the policy")

	assert.Equal(t, "legacy-secret", token["secret_id"])
	assert.NotContains(t, token, "rules", "rules belong to the policy half")
	assert.Equal(t, []any{"agent"}, token["policies"])
	assert.Equal(t, "agent", token["description"])

	// Endpoint keys ride along on both halves.
	assert.Equal(t, "consul.internal", policy["hostname"])
	assert.Equal(t, "consul.internal", token["hostname"])
	assert.Equal(t, "root-token", token["acl_api_token"])
}

func TestSplitLegacyACLManagement(t *testing.T) {
	policy, token := splitLegacyACL("root", map[string]any{
		"type": "management",
		"id":   "bootstrap-secret",
	})

	assert.Nil(t, policy, "management entries create no policy of their own")
	assert.Equal(t, []any{"global-management"}, token["policies"])
	assert.Equal(t, "bootstrap-secret", token["secret_id"])
}

func TestTokenConverged(t *testing.T) {
	desired := &api.ACLToken{
		Description: "agent token",
		Policies:    []*api.ACLTokenPolicyLink{{Name: "agent-policy"}},
	}

	tests := []struct {
		name     string
		existing *api.ACLToken
		want     bool
	}{
		{
			"identical",
			&api.ACLToken{
				Description: "agent token",
				Policies:    []*api.ACLTokenPolicyLink{{Name: "agent-policy"}},
			},
			true,
		},
		{
			"description drift",
			&api.ACLToken{
				Description: "old description",
				Policies:    []*api.ACLTokenPolicyLink{{Name: "agent-policy"}},
			},
			false,
		},
		{
			"policy drift",
			&api.ACLToken{
				Description: "agent token",
				Policies:    []*api.ACLTokenPolicyLink{{Name: "other-policy"}},
			},
			false,
		},
		{
			"extra policy",
			&api.ACLToken{
				Description: "agent token",
				Policies: []*api.ACLTokenPolicyLink{
					{Name: "agent-policy"}, {Name: "other-policy"},
				},
			},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tokenConverged(tt.existing, desired))
		})
	}
}

func TestSortedKeys(t *testing.T) {
	keys := sortedKeys(map[string]map[string]any{
		"zeta": {}, "alpha": {}, "mid": {},
	})
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, keys)
}
