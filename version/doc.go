// Package version reports the build identity of the harness binary.
//
// Version, commit, branch and build time are set at link time:
//
//	go build -ldflags "-X github.com/surgicalcoder/deploymentharness/version.Version=1.4.0 \
//	  -X github.com/surgicalcoder/deploymentharness/version.BuildTime=2026-10-01T12:00:00Z" ./cmd/harness
//
// Values left empty are filled from the embedded VCS build settings where
// the toolchain recorded them.
package version
