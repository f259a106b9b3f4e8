// pkg/platform/platform.go
//
// Host platform detection and per-OS defaults. Detection runs once and the
// result is passed to the resolver explicitly; nothing here is read as
// ambient global state after startup.

package platform

import (
	"bufio"
	"os"
	"runtime"
	"strings"
)

// InitStyle names the service supervision flavor for a platform.
type InitStyle string

const (
	InitSystemd   InitStyle = "systemd"
	InitSysV      InitStyle = "sysv"
	InitLaunchd   InitStyle = "launchd"
	InitUnmanaged InitStyle = "unmanaged"
)

// Platform is the detected host environment plus the defaults table entry
// for it.
type Platform struct {
	OS     string // "linux", "darwin", ...
	Distro string // "debian", "rhel", "unknown" (linux only)
	Arch   string // release archive architecture, e.g. "amd64"

	BinDir            string
	ConfigDir         string
	DataDir           string
	DefaultUser       string
	DefaultGroup      string
	Init              InitStyle
	DownloadExtension string
	DownloadOS        string // OS segment of the release archive name
}

// Detect inspects the running host and returns its Platform entry.
func Detect() Platform {
	return ForOS(runtime.GOOS, runtime.GOARCH, detectLinuxDistro())
}

// ForOS returns the defaults table entry for an OS/arch pair. Unknown
// operating systems fall back to the linux layout with unmanaged init.
func ForOS(goos, goarch, distro string) Platform {
	p := Platform{
		OS:                goos,
		Distro:            distro,
		Arch:              releaseArch(goarch),
		BinDir:            "/usr/local/bin",
		ConfigDir:         "/etc/consul.d",
		DataDir:           "/var/lib/consul",
		DefaultUser:       "consul",
		DefaultGroup:      "consul",
		DownloadExtension: "zip",
		DownloadOS:        goos,
	}

	switch goos {
	case "linux":
		p.Init = InitSystemd
	case "darwin":
		p.BinDir = "/usr/local/bin"
		p.ConfigDir = "/usr/local/etc/consul.d"
		p.DataDir = "/usr/local/var/consul"
		p.Init = InitLaunchd
	default:
		p.Init = InitUnmanaged
	}

	return p
}

func releaseArch(goarch string) string {
	switch goarch {
	case "amd64", "arm64", "386", "arm":
		return goarch
	default:
		return goarch
	}
}

// detectLinuxDistro returns "debian", "rhel", or "unknown".
func detectLinuxDistro() string {
	if runtime.GOOS != "linux" {
		return "unknown"
	}
	file, err := os.Open("/etc/os-release")
	if err != nil {
		return "unknown"
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.Contains(line, "ID=debian") || strings.Contains(line, "ID=ubuntu") {
			return "debian"
		}
		if strings.Contains(line, "ID=rhel") || strings.Contains(line, "ID=\"centos\"") || strings.Contains(line, "ID=fedora") {
			return "rhel"
		}
	}
	return "unknown"
}
