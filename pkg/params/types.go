// pkg/params/types.go
//
// ParameterSet is the full declarative input for one convergence run. It is
// read once at startup, validated at the boundary, and never mutated after
// that; the resolver treats it as immutable.

package params

// GlobalACL holds the Consul ACL API endpoint coordinates shared by every
// policy and token entry unless the entry overrides them.
type GlobalACL struct {
	Hostname string `mapstructure:"hostname" validate:"required"`
	Protocol string `mapstructure:"protocol" validate:"oneof=http https"`
	Port     int    `mapstructure:"port" validate:"min=1,max=65535"`
	Tries    int    `mapstructure:"api_tries" validate:"min=1,max=20"`
	Token    string `mapstructure:"acl_api_token"`
}

// AsMap renders the global ACL coordinates in the generic map form the
// resolver merges under each per-item specification.
func (g GlobalACL) AsMap() map[string]any {
	return map[string]any{
		"hostname":      g.Hostname,
		"protocol":      g.Protocol,
		"port":          g.Port,
		"api_tries":     g.Tries,
		"acl_api_token": g.Token,
	}
}

// ParameterSet is the complete manifest for one managed Consul node.
type ParameterSet struct {
	InstallMethod string `mapstructure:"install_method" validate:"required,oneof=url package docker none"`
	Version       string `mapstructure:"version"`
	PackageName   string `mapstructure:"package_name" validate:"required"`
	PackageEnsure string `mapstructure:"package_ensure" validate:"omitempty,oneof=present installed latest"`
	DockerImage   string `mapstructure:"docker_image"`

	DownloadURL       string `mapstructure:"download_url"`
	DownloadURLBase   string `mapstructure:"download_url_base"`
	DownloadExtension string `mapstructure:"download_extension"`

	BinDir     string `mapstructure:"bin_dir"`
	ConfigDir  string `mapstructure:"config_dir"`
	ConfigName string `mapstructure:"config_name"`
	ConfigMode string `mapstructure:"config_mode"`

	User        string `mapstructure:"user" validate:"required"`
	Group       string `mapstructure:"group" validate:"required"`
	ConfigOwner string `mapstructure:"config_owner"`
	InitStyle   string `mapstructure:"init_style" validate:"omitempty,oneof=systemd sysv launchd unmanaged"`

	ServiceName     string `mapstructure:"service_name"`
	ServiceEnable   bool   `mapstructure:"service_enable"`
	ServiceEnsure   string `mapstructure:"service_ensure" validate:"omitempty,oneof=running stopped"`
	RestartOnChange bool   `mapstructure:"restart_on_change"`

	PrettyConfig       bool `mapstructure:"pretty_config"`
	PrettyConfigIndent int  `mapstructure:"pretty_config_indent" validate:"min=0,max=16"`
	PurgeConfigDir     bool `mapstructure:"purge_config_dir"`

	ACLAPI GlobalACL `mapstructure:"acl_api"`

	// ConfigDefaults and ConfigHash are deep-merged, ConfigHash winning at
	// every nesting level. SensitiveConfig is merged on top of both, but
	// only at the moment the config file is serialized.
	ConfigDefaults  map[string]any `mapstructure:"config_defaults"`
	ConfigHash      map[string]any `mapstructure:"config_hash"`
	SensitiveConfig Secret         `mapstructure:"-"`

	// Named sub-resource collections. Each entry is realized independently;
	// entries of the same collection have no ordering dependency. Acls holds
	// legacy-style entries (rules + optional id/type); Consul removed the
	// legacy ACL system in 1.11, so each entry is realized as a policy plus
	// a token linked to it.
	Services map[string]map[string]any `mapstructure:"services"`
	Watches  map[string]map[string]any `mapstructure:"watches"`
	Checks   map[string]map[string]any `mapstructure:"checks"`
	Acls     map[string]map[string]any `mapstructure:"acls"`
	Policies map[string]map[string]any `mapstructure:"acl_policies"`
	Tokens   map[string]map[string]any `mapstructure:"acl_tokens"`
}
