// Package version reports build metadata of the collab binaries.
//
// Set values at build time with ldflags:
//
//	go build -ldflags "\
//	  -X github.com/studyhub/collab/version.Version=1.2.3 \
//	  -X github.com/studyhub/collab/version.Revision=abc1234 \
//	  -X 'github.com/studyhub/collab/version.BuiltAt=$(date -u +%FT%TZ)'" ./cmd/collabctl
//
// Without ldflags the VCS stamp embedded by the go tool is used.
package version
