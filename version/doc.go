// Package version carries the build metadata reported by /version and
// the version subcommand. Values are stamped at link time:
//
//	go build -ldflags "-X github.com/kbukum/whisper-gateway/version.Version=1.0.0"
package version
