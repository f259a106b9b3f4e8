// pkg/params/validate.go

package params

import (
	"strconv"

	"github.com/CodeMonkeyCybersecurity/steward/pkg/steward_err"
	cerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	goversion "github.com/hashicorp/go-version"
)

var validate = validator.New()

// Validate checks the ParameterSet at the intake boundary. All problems are
// collected and reported together; any problem aborts the run before
// resolution.
func Validate(ps *ParameterSet) error {
	var errs *multierror.Error

	if err := validate.Struct(ps); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				errs = multierror.Append(errs, cerr.Newf(
					"field %s failed %q validation (value %v)",
					fe.Namespace(), fe.Tag(), fe.Value()))
			}
		} else {
			errs = multierror.Append(errs, err)
		}
	}

	switch ps.InstallMethod {
	case "url":
		if ps.DownloadURL == "" {
			if ps.Version == "" {
				errs = multierror.Append(errs, cerr.New(
					"version is required for install_method url unless download_url is set"))
			} else if _, err := goversion.NewVersion(ps.Version); err != nil {
				errs = multierror.Append(errs, cerr.Wrapf(err, "invalid version %q", ps.Version))
			}
		}
	case "package":
		// Package installs may float to the repo version; an explicit
		// version still has to parse when given.
		if ps.Version != "" {
			if _, err := goversion.NewVersion(ps.Version); err != nil {
				errs = multierror.Append(errs, cerr.Wrapf(err, "invalid version %q", ps.Version))
			}
		}
	case "docker":
		if ps.DockerImage == "" {
			errs = multierror.Append(errs, cerr.New("docker_image is required for install_method docker"))
		}
	}

	if ps.ConfigMode != "" {
		if _, err := strconv.ParseUint(ps.ConfigMode, 8, 32); err != nil {
			errs = multierror.Append(errs, cerr.Newf("config_mode %q is not an octal file mode", ps.ConfigMode))
		}
	}

	for name, spec := range ps.Policies {
		if name == "" {
			errs = multierror.Append(errs, cerr.New("acl_policies entries must be named"))
		}
		if _, ok := spec["rules"].(string); !ok {
			errs = multierror.Append(errs, cerr.Newf("acl_policies[%s] requires string rules", name))
		}
	}

	for name, spec := range ps.Acls {
		if name == "" {
			errs = multierror.Append(errs, cerr.New("acls entries must be named"))
		}
		// Management entries link the builtin global-management policy and
		// carry no rules of their own.
		if aclType, _ := spec["type"].(string); aclType != "management" {
			if _, ok := spec["rules"].(string); !ok {
				errs = multierror.Append(errs, cerr.Newf("acls[%s] requires string rules", name))
			}
		}
	}

	if err := errs.ErrorOrNil(); err != nil {
		return steward_err.WrapValidationError(err)
	}
	return nil
}

// FileMode returns the parsed config file mode. Validate has already
// guaranteed the string parses.
func (ps *ParameterSet) FileMode() uint32 {
	mode, err := strconv.ParseUint(ps.ConfigMode, 8, 32)
	if err != nil {
		return 0o640
	}
	return uint32(mode)
}
