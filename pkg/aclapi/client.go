// pkg/aclapi/client.go
//
// Consul ACL API client construction. Each declared policy or token carries
// its own merged connection settings, so the client is built per item from
// that map rather than once per run.

package aclapi

import (
	"fmt"
	"sort"
	"time"

	"github.com/CodeMonkeyCybersecurity/steward/pkg/steward_io"
	cerr "github.com/cockroachdb/errors"
	"github.com/hashicorp/consul/api"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Manager converges declared ACL policies and tokens against the agent's
// ACL API.
type Manager struct {
	rc *steward_io.RuntimeContext

	// newClient is swappable for tests.
	newClient func(cfg *api.Config) (*api.Client, error)
}

// New creates an ACL manager.
func New(rc *steward_io.RuntimeContext) *Manager {
	return &Manager{rc: rc, newClient: api.NewClient}
}

// connection is the ACL API endpoint extracted from a merged item map.
type connection struct {
	Address string
	Scheme  string
	Token   string
	Tries   int
}

// connectionFrom reads the endpoint settings out of a merged policy or token
// map. Missing keys fall back to the local agent defaults.
func connectionFrom(settings map[string]any) connection {
	host := getString(settings, "hostname", "localhost")
	port := getInt(settings, "port", 8500)
	tries := getInt(settings, "api_tries", 3)
	if tries < 1 {
		tries = 1
	}
	return connection{
		Address: fmt.Sprintf("%s:%d", host, port),
		Scheme:  getString(settings, "protocol", "http"),
		Token:   getString(settings, "acl_api_token", ""),
		Tries:   tries,
	}
}

func (m *Manager) clientFor(conn connection) (*api.Client, error) {
	cfg := api.DefaultConfig()
	cfg.Address = conn.Address
	cfg.Scheme = conn.Scheme
	if conn.Token != "" {
		cfg.Token = conn.Token
	}

	client, err := m.newClient(cfg)
	if err != nil {
		return nil, cerr.Wrap(err, "failed to create Consul client")
	}
	return client, nil
}

// withRetries runs fn up to conn.Tries times. The ACL API is often not
// ready right after a service (re)start, so transient failures get a
// bounded retry with a short pause.
func (m *Manager) withRetries(conn connection, what string, fn func() error) error {
	logger := otelzap.Ctx(m.rc.Ctx)

	var lastErr error
	for attempt := 1; attempt <= conn.Tries; attempt++ {
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		if attempt < conn.Tries {
			logger.Warn("ACL API call failed, retrying",
				zap.String("operation", what),
				zap.Int("attempt", attempt),
				zap.Int("max_tries", conn.Tries),
				zap.Error(lastErr))
			time.Sleep(2 * time.Second)
		}
	}
	return cerr.Wrapf(lastErr, "%s failed after %d tries", what, conn.Tries)
}

// sortedKeys keeps convergence order deterministic across runs.
func sortedKeys(items map[string]map[string]any) []string {
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func getString(settings map[string]any, key, fallback string) string {
	if v, ok := settings[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(settings map[string]any, key string, fallback int) int {
	switch v := settings[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return fallback
}
