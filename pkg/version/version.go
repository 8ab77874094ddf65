package version

// Version of amosearch
const Version = "0.4.0"

// BuildVersion returns the version line printed by the CLI.
func BuildVersion() string {
	return "amosearch version " + Version
}

// APIVersion is the version reported by the health endpoint.
func APIVersion() string {
	return Version
}
