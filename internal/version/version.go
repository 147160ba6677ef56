// Package version carries build metadata injected with -ldflags, e.g.
//
//	go build -ldflags "-X github.com/MrSnakeDoc/bookhub/internal/version.Version=v1.2.0"
package version

import (
	"fmt"
	"runtime"
	"time"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = time.Now().UTC().Format(time.RFC3339)
	GoVersion = runtime.Version()
)

// String renders the metadata on one line for startup logs.
func String() string {
	return fmt.Sprintf("bookhub %s (commit=%s, built=%s, go=%s)", Version, Commit, BuildDate, GoVersion)
}
