package version

import "fmt"

// These variables are set at build time via ldflags
var (
	Commit    = "unknown"
	BuildTime = "unknown"
)

// String returns the version string (commit-hash based, no semver)
func String() string {
	return fmt.Sprintf("odkupload dev (commit: %s, built: %s)", shortCommit(), BuildTime)
}

// UserAgent returns the User-Agent sent with every OpenRosa request.
func UserAgent() string {
	return fmt.Sprintf("odkupload/%s", shortCommit())
}

func shortCommit() string {
	if len(Commit) > 7 {
		return Commit[:7]
	}
	return Commit
}
