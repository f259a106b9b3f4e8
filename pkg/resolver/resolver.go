// pkg/resolver/resolver.go
//
// The configuration resolver turns one validated ParameterSet plus a
// detected platform into an immutable ResolvedState and a realization plan.
// Resolution is pure: no I/O, no clock, no ambient state. Running it twice
// over the same inputs yields identical output.

package resolver

import (
	"fmt"

	"github.com/CodeMonkeyCybersecurity/steward/pkg/configmap"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/params"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/platform"
	cerr "github.com/cockroachdb/errors"
)

// Resolver computes ResolvedState from the intake parameters.
type Resolver struct {
	ps   *params.ParameterSet
	plat platform.Platform
}

// New builds a resolver. The platform is passed explicitly so resolution
// never consults global detection state.
func New(ps *params.ParameterSet, plat platform.Platform) *Resolver {
	return &Resolver{ps: ps, plat: plat}
}

// State is the resolved, internally consistent configuration handed to the
// realizers. Nothing mutates it after Resolve returns.
type State struct {
	DownloadURL string
	Identity    Identity
	Config      *configmap.Map
	Derived     Derived
	Acls        map[string]map[string]any
	Policies    map[string]map[string]any
	Tokens      map[string]map[string]any
	Plan        Plan
}

// Resolve performs the single resolution pass.
func (r *Resolver) Resolve() (*State, error) {
	defaults, err := configmap.MapFromInterface(r.ps.ConfigDefaults)
	if err != nil {
		return nil, cerr.Wrap(err, "invalid config_defaults")
	}
	overrides, err := configmap.MapFromInterface(r.ps.ConfigHash)
	if err != nil {
		return nil, cerr.Wrap(err, "invalid config_hash")
	}

	merged := configmap.DeepMerge(defaults, overrides)

	st := &State{
		Identity: SelectIdentityContext(r.ps.InstallMethod, r.ps.User, r.ps.Group, r.ps.ConfigOwner, platform.InitStyle(r.ps.InitStyle)),
		Config:   merged,
		Derived:  ExtractDerived(merged),
		Acls:     make(map[string]map[string]any, len(r.ps.Acls)),
		Policies: make(map[string]map[string]any, len(r.ps.Policies)),
		Tokens:   make(map[string]map[string]any, len(r.ps.Tokens)),
		Plan:     BuildPlan(r.ps.RestartOnChange),
	}

	if r.ps.InstallMethod == "url" {
		st.DownloadURL = ResolveDownloadSource(
			r.ps.DownloadURL,
			r.ps.DownloadURLBase,
			r.ps.Version,
			r.ps.PackageName,
			r.plat.DownloadOS,
			r.plat.Arch,
			r.ps.DownloadExtension,
		)
	}

	global := r.ps.ACLAPI.AsMap()
	for name, spec := range r.ps.Acls {
		st.Acls[name] = MergeAclDefaults(global, spec)
	}
	for name, spec := range r.ps.Policies {
		st.Policies[name] = MergeAclDefaults(global, spec)
	}
	for name, spec := range r.ps.Tokens {
		st.Tokens[name] = MergeAclDefaults(global, spec)
	}

	return st, nil
}

// ResolveDownloadSource returns url verbatim when provided; otherwise it
// constructs the HashiCorp release archive URL
// "{base}{version}/{pkg}_{version}_{os}_{arch}.{ext}". Components are not
// validated; malformed pieces pass through untouched.
func ResolveDownloadSource(url, urlBase, version, pkgName, osName, arch, extension string) string {
	if url != "" {
		return url
	}
	return fmt.Sprintf("%s%s/%s_%s_%s_%s.%s",
		urlBase, version, pkgName, version, osName, arch, extension)
}

// MergeAclDefaults computes global ∪ perItem where perItem keys override
// global keys of the same name; unrelated keys from both sides are kept.
// Both inputs are left untouched.
func MergeAclDefaults(global, perItem map[string]any) map[string]any {
	out := make(map[string]any, len(global)+len(perItem))
	for k, v := range global {
		out[k] = v
	}
	for k, v := range perItem {
		out[k] = v
	}
	return out
}
