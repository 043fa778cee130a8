package version

// Version is the release of argo-threshold, set at build time:
// -ldflags "-X github.com/rxtech-lab/argo-threshold/internal/version.Version=v1.2.3"
var Version = "dev"

// GetVersion returns the version reported by the CLI and the health endpoint.
func GetVersion() string {
	return Version
}
