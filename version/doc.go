// Package version provides build version information for pipelinectl.
//
// Version, git commit and build time are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/pipelinekit/version.Version=1.0.0" ./cmd/pipelinectl
package version
