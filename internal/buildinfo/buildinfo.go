// Package buildinfo holds release metadata set at link time:
//
//	go build -ldflags "-X github.com/aidanlsb/vaultreg/internal/buildinfo.Version=v0.4.0"
//
// Unset values fall back to the module's embedded build info.
package buildinfo

var (
	Version = ""
	Commit  = ""
	Date    = ""
)
