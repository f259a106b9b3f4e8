// pkg/aclapi/ensure.go
// Idempotent convergence of declared ACL policies and tokens.

package aclapi

import (
	cerr "github.com/cockroachdb/errors"
	"github.com/hashicorp/consul/api"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// EnsurePolicies converges every declared policy. Each map carries the
// merged endpoint settings alongside the policy fields, so items can target
// different agents.
func (m *Manager) EnsurePolicies(policies map[string]map[string]any) error {
	for _, name := range sortedKeys(policies) {
		if err := m.ensurePolicy(name, policies[name]); err != nil {
			return cerr.Wrapf(err, "policy %s", name)
		}
	}
	return nil
}

func (m *Manager) ensurePolicy(name string, settings map[string]any) error {
	logger := otelzap.Ctx(m.rc.Ctx)
	conn := connectionFrom(settings)

	client, err := m.clientFor(conn)
	if err != nil {
		return err
	}

	desired := &api.ACLPolicy{
		Name:        name,
		Description: getString(settings, "description", ""),
		Rules:       getString(settings, "rules", ""),
	}

	return m.withRetries(conn, "ensure policy "+name, func() error {
		existing, _, err := client.ACL().PolicyReadByName(name, nil)
		if err != nil {
			return err
		}

		if existing == nil {
			created, _, err := client.ACL().PolicyCreate(desired, nil)
			if err != nil {
				return err
			}
			logger.Info("ACL policy created",
				zap.String("name", name),
				zap.String("id", created.ID))
			return nil
		}

		if existing.Rules == desired.Rules && existing.Description == desired.Description {
			logger.Debug("ACL policy already converged", zap.String("name", name))
			return nil
		}

		desired.ID = existing.ID
		if _, _, err := client.ACL().PolicyUpdate(desired, nil); err != nil {
			return err
		}
		logger.Info("ACL policy updated", zap.String("name", name))
		return nil
	})
}

// EnsureACLs converges legacy-style acl entries. Consul removed the legacy
// ACL system in 1.11, so each entry maps onto the modern model: a policy
// carrying the entry's rules plus a token linked to it. Entries of type
// "management" skip the policy and link the builtin global-management
// policy instead.
func (m *Manager) EnsureACLs(acls map[string]map[string]any) error {
	for _, name := range sortedKeys(acls) {
		policy, token := splitLegacyACL(name, acls[name])
		if policy != nil {
			if err := m.ensurePolicy(name, policy); err != nil {
				return cerr.Wrapf(err, "acl %s", name)
			}
		}
		if err := m.ensureToken(name, token); err != nil {
			return cerr.Wrapf(err, "acl %s", name)
		}
	}
	return nil
}

// splitLegacyACL produces the policy and token maps for one legacy entry.
// Endpoint keys are carried into both so each half converges against the
// same agent; the legacy "id" becomes the token's secret_id.
func splitLegacyACL(name string, settings map[string]any) (policy, token map[string]any) {
	policy = make(map[string]any, len(settings))
	token = make(map[string]any, len(settings)+2)
	for k, v := range settings {
		switch k {
		case "rules":
			policy[k] = v
		case "id":
			token["secret_id"] = v
		case "type":
			// handled below
		default:
			policy[k] = v
			token[k] = v
		}
	}

	if aclType, _ := settings["type"].(string); aclType == "management" {
		token["policies"] = []any{"global-management"}
		policy = nil
	} else {
		token["policies"] = []any{name}
	}
	if _, ok := token["description"]; !ok {
		token["description"] = name
	}
	return policy, token
}

// EnsureTokens converges every declared token. A token with an accessor_id
// is looked up directly; otherwise the declared name is matched against
// existing token descriptions.
func (m *Manager) EnsureTokens(tokens map[string]map[string]any) error {
	for _, name := range sortedKeys(tokens) {
		if err := m.ensureToken(name, tokens[name]); err != nil {
			return cerr.Wrapf(err, "token %s", name)
		}
	}
	return nil
}

func (m *Manager) ensureToken(name string, settings map[string]any) error {
	logger := otelzap.Ctx(m.rc.Ctx)
	conn := connectionFrom(settings)

	client, err := m.clientFor(conn)
	if err != nil {
		return err
	}

	desired := &api.ACLToken{
		AccessorID:  getString(settings, "accessor_id", ""),
		SecretID:    getString(settings, "secret_id", ""),
		Description: getString(settings, "description", name),
		Local:       getBool(settings, "local"),
		Policies:    policyLinks(settings),
	}

	return m.withRetries(conn, "ensure token "+name, func() error {
		existing, err := findToken(client, desired)
		if err != nil {
			return err
		}

		if existing == nil {
			created, _, err := client.ACL().TokenCreate(desired, nil)
			if err != nil {
				return err
			}
			logger.Info("ACL token created",
				zap.String("name", name),
				zap.String("accessor_id", created.AccessorID))
			return nil
		}

		if tokenConverged(existing, desired) {
			logger.Debug("ACL token already converged", zap.String("name", name))
			return nil
		}

		desired.AccessorID = existing.AccessorID
		if _, _, err := client.ACL().TokenUpdate(desired, nil); err != nil {
			return err
		}
		logger.Info("ACL token updated",
			zap.String("name", name),
			zap.String("accessor_id", existing.AccessorID))
		return nil
	})
}

func findToken(client *api.Client, desired *api.ACLToken) (*api.ACLToken, error) {
	if desired.AccessorID != "" {
		token, _, err := client.ACL().TokenRead(desired.AccessorID, nil)
		if err != nil {
			// TokenRead errors on a missing accessor; treat as absent so
			// the caller creates it with the declared accessor_id.
			return nil, nil
		}
		return token, nil
	}

	entries, _, err := client.ACL().TokenList(nil)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if entry.Description == desired.Description {
			token, _, err := client.ACL().TokenRead(entry.AccessorID, nil)
			if err != nil {
				return nil, err
			}
			return token, nil
		}
	}
	return nil, nil
}

func tokenConverged(existing, desired *api.ACLToken) bool {
	if existing.Description != desired.Description || existing.Local != desired.Local {
		return false
	}
	if len(existing.Policies) != len(desired.Policies) {
		return false
	}
	have := make(map[string]bool, len(existing.Policies))
	for _, p := range existing.Policies {
		have[p.Name] = true
	}
	for _, p := range desired.Policies {
		if !have[p.Name] {
			return false
		}
	}
	return true
}

// policyLinks reads the "policies" list out of a token map. Entries are
// policy names.
func policyLinks(settings map[string]any) []*api.ACLTokenPolicyLink {
	raw, ok := settings["policies"].([]any)
	if !ok {
		return nil
	}
	links := make([]*api.ACLTokenPolicyLink, 0, len(raw))
	for _, item := range raw {
		if name, ok := item.(string); ok && name != "" {
			links = append(links, &api.ACLTokenPolicyLink{Name: name})
		}
	}
	return links
}

func getBool(settings map[string]any, key string) bool {
	v, _ := settings[key].(bool)
	return v
}
