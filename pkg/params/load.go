// pkg/params/load.go

package params

import (
	"strings"

	"github.com/CodeMonkeyCybersecurity/steward/pkg/platform"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/steward_io"
	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Load reads a manifest file (YAML or JSON, decided by extension), applies
// platform defaults for everything the operator left out, and validates the
// result. Validation failures abort before any resolution happens.
func Load(rc *steward_io.RuntimeContext, path string, plat platform.Platform) (*ParameterSet, error) {
	rc.Log.Info("Loading manifest", zap.String("path", path))

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("STEWARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about, so every
	// scalar manifest key is bound explicitly; otherwise a STEWARD_ override
	// for a key absent from the file would be silently ignored.
	for _, key := range manifestKeys {
		_ = v.BindEnv(key)
	}

	// Boolean defaults must live in viper so an explicit manifest `false`
	// stays distinguishable from an unset field.
	v.SetDefault("restart_on_change", true)
	v.SetDefault("service_enable", true)
	v.SetDefault("purge_config_dir", true)

	if err := v.ReadInConfig(); err != nil {
		return nil, cerr.Wrapf(err, "failed to read manifest %s", path)
	}

	var ps ParameterSet
	if err := v.Unmarshal(&ps); err != nil {
		return nil, cerr.Wrap(err, "failed to decode manifest")
	}

	// The sensitive fragment bypasses the struct so it exists only inside
	// the Secret wrapper from the moment of intake.
	if raw := v.GetStringMap("sensitive_config"); len(raw) > 0 {
		ps.SensitiveConfig = NewSecret(raw)
	}

	applyDefaults(&ps, plat)

	if err := Validate(&ps); err != nil {
		return nil, err
	}

	rc.Log.Info("Manifest loaded",
		zap.String("install_method", ps.InstallMethod),
		zap.String("version", ps.Version),
		zap.Int("services", len(ps.Services)),
		zap.Int("watches", len(ps.Watches)),
		zap.Int("checks", len(ps.Checks)),
		zap.Int("acl_policies", len(ps.Policies)),
		zap.Int("acl_tokens", len(ps.Tokens)),
	)

	return &ps, nil
}

// manifestKeys lists every scalar manifest key that can arrive via a
// STEWARD_ environment variable. The named collections stay file-only.
var manifestKeys = []string{
	"install_method",
	"version",
	"package_name",
	"package_ensure",
	"docker_image",
	"download_url",
	"download_url_base",
	"download_extension",
	"bin_dir",
	"config_dir",
	"config_name",
	"config_mode",
	"user",
	"group",
	"config_owner",
	"init_style",
	"service_name",
	"service_enable",
	"service_ensure",
	"restart_on_change",
	"pretty_config",
	"pretty_config_indent",
	"purge_config_dir",
	"acl_api.hostname",
	"acl_api.protocol",
	"acl_api.port",
	"acl_api.api_tries",
	"acl_api.acl_api_token",
}

// applyDefaults fills unset fields from the platform table and the release
// conventions. User-supplied values always win.
func applyDefaults(ps *ParameterSet, plat platform.Platform) {
	setIfEmpty(&ps.PackageName, "consul")
	setIfEmpty(&ps.PackageEnsure, "installed")
	setIfEmpty(&ps.DownloadURLBase, "https://releases.hashicorp.com/consul/")
	setIfEmpty(&ps.DownloadExtension, plat.DownloadExtension)
	setIfEmpty(&ps.BinDir, plat.BinDir)
	setIfEmpty(&ps.ConfigDir, plat.ConfigDir)
	setIfEmpty(&ps.ConfigName, "config.json")
	setIfEmpty(&ps.ConfigMode, "0640")
	setIfEmpty(&ps.User, plat.DefaultUser)
	setIfEmpty(&ps.Group, plat.DefaultGroup)
	setIfEmpty(&ps.InitStyle, string(plat.Init))
	setIfEmpty(&ps.ServiceName, "consul")
	setIfEmpty(&ps.ServiceEnsure, "running")
	setIfEmpty(&ps.DockerImage, "hashicorp/consul")

	if ps.ACLAPI.Hostname == "" {
		ps.ACLAPI.Hostname = "localhost"
	}
	if ps.ACLAPI.Protocol == "" {
		ps.ACLAPI.Protocol = "http"
	}
	if ps.ACLAPI.Port == 0 {
		ps.ACLAPI.Port = 8500
	}
	if ps.ACLAPI.Tries == 0 {
		ps.ACLAPI.Tries = 3
	}

	if ps.PrettyConfig && ps.PrettyConfigIndent == 0 {
		ps.PrettyConfigIndent = 4
	}
}

func setIfEmpty(field *string, value string) {
	if *field == "" {
		*field = value
	}
}
