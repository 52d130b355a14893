// Package buildinfo carries version metadata stamped in at link time, e.g.
//
//	go build -ldflags "-X ridership.subwaydash.org/internal/buildinfo.Version=v1.2.0"
package buildinfo

var (
	Version    = "dev"
	CommitHash = "unknown"
	Branch     = ""
	BuildTime  = ""
	Dirty      = ""
)

// ShortHash returns the first seven characters of CommitHash, or "unknown".
func ShortHash() string {
	if len(CommitHash) >= 7 {
		return CommitHash[:7]
	}
	return "unknown"
}
