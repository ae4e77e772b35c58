package version

// Set with -ldflags "-X blacklist-api/internal/app/version.buildVersion=v1.2.3".
var (
	buildVersion = "dev"
	builtAt      = "unknown"
)

type Info struct {
	BuildVersion string `json:"buildVersion"`
	BuiltAt      string `json:"builtAt"`
}

// Get reports the build that is serving /version. Unstamped binaries report "dev".
func Get() Info {
	return Info{BuildVersion: buildVersion, BuiltAt: builtAt}
}
