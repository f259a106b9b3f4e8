// pkg/installer/docker.go
// Image pull for container-based installs. Running the container itself is
// out of scope; with install_method docker the container runtime owns
// supervision and identity.

package installer

import (
	"io"

	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// imageRef returns the image reference, pinned to the requested version
// when one is set.
func (i *Installer) imageRef() string {
	if i.ps.Version != "" {
		return i.ps.DockerImage + ":" + i.ps.Version
	}
	return i.ps.DockerImage + ":latest"
}

func (i *Installer) pullImage() error {
	logger := otelzap.Ctx(i.rc.Ctx)
	ref := i.imageRef()

	logger.Info("Pulling Consul image", zap.String("image", ref))

	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return cerr.Wrap(err, "failed to create docker client")
	}
	defer cli.Close()

	reader, err := cli.ImagePull(i.rc.Ctx, ref, image.PullOptions{})
	if err != nil {
		return cerr.Wrapf(err, "failed to pull image %s", ref)
	}
	defer reader.Close()

	// Drain the progress stream so the pull completes.
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return cerr.Wrap(err, "image pull interrupted")
	}

	logger.Info("Consul image present", zap.String("image", ref))
	return nil
}
