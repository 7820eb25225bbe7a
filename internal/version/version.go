package version

import (
	"fmt"
	"runtime"
)

// Set through -ldflags "-X mempool-whale-alerts/internal/version.Version=..." at release time.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// String renders a single-line build summary.
func String() string {
	return fmt.Sprintf("whalewatch %s (commit %s, built %s, %s)", Version, Commit, BuildDate, runtime.Version())
}
