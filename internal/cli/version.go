package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Set via -ldflags at build time.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// currentBuild fills unset ldflags values from the module build info, which
// is present for `go install` builds.
func currentBuild() BuildInfo {
	b := BuildInfo{Version: Version, Commit: Commit, BuildDate: BuildDate, GoVersion: runtime.Version()}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return b
	}
	if b.Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		b.Version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if b.Commit == "unknown" && len(s.Value) >= 7 {
				b.Commit = s.Value[:7]
			}
		case "vcs.time":
			if b.BuildDate == "unknown" {
				b.BuildDate = s.Value
			}
		}
	}
	return b
}

func writeVersion(w io.Writer, b BuildInfo, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(b)
	}
	_, err := fmt.Fprintf(w, "cadence %s (commit: %s, built: %s, %s)\n", b.Version, b.Commit, b.BuildDate, b.GoVersion)
	return err
}

var versionJSON bool

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "print build info as JSON")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeVersion(cmd.OutOrStdout(), currentBuild(), versionJSON)
	},
}

// VersionString is the version reported by the server health endpoint.
func VersionString() string {
	b := currentBuild()
	return fmt.Sprintf("%s (%s)", b.Version, b.Commit)
}
