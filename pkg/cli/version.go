package cli

// version is set at build time through SetVersionInfo
var version = "dev"

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v string) {
	version = v
}

// GetVersion returns the current version
func GetVersion() string {
	return version
}
