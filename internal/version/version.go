// Package version holds build information injected with -ldflags.
package version

// Version is overridden at build time:
//
//	go build -ldflags "-X github.com/bnema/classcall/internal/version.Version=v1.2.3" ./cmd/classcall
var Version = "dev"
