package version

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/bulk-reviewer/brv/internal/config"
	"github.com/bulk-reviewer/brv/internal/tools"
	"github.com/bulk-reviewer/brv/pkg/shared"
)

var (
	AppConfig     *config.Config
	CoreVersion   = "unknown"
	GolangVersion = "unknown"
	BuildTime     = "unknown"
	outputJSON    bool
)

// toolProbeTimeout bounds each external tool version probe.
const toolProbeTimeout = 10 * time.Second

// CoreVersions holds version information for the binary and the forensic tools it drives.
type CoreVersions struct {
	Versions shared.Versions     `json:"versions"`
	Tools    map[string]ToolMeta `json:"tools"`
}

// ToolMeta describes one external tool.
type ToolMeta struct {
	Path    string `json:"path"`
	Version string `json:"version"`
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// NewVersionCmd creates a new cobra.Command for the version command.
func NewVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                   "version",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Print the version number of the application and the forensic tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			version := CoreVersions{
				Versions: shared.Versions{
					Version:       CoreVersion,
					GolangVersion: GolangVersion,
					BuildTime:     BuildTime,
				},
				Tools: getToolVersions(cmd.Context(), AppConfig),
			}
			if outputJSON {
				return shared.PrintResultAsJSON(cmd.OutOrStdout(), version)
			}
			printVersionInfo(cmd.OutOrStdout(), &version)
			return nil
		},
	}
	cmd.Flags().BoolVar(&outputJSON, "json", false, "Print the version information as JSON.")
	return cmd
}

// getToolVersions asks each configured tool for its version.
func getToolVersions(ctx context.Context, cfg *config.Config) map[string]ToolMeta {
	if ctx == nil {
		ctx = context.Background()
	}
	var configured config.Tools
	if cfg != nil {
		configured = cfg.Tools
	}

	paths := map[string]string{
		"bulk_extractor": config.GetToolPath(configured.BulkExtractor, "bulk_extractor"),
		"fiwalk":         config.GetToolPath(configured.Fiwalk, "fiwalk"),
		"icat":           config.GetToolPath(configured.Icat, "icat"),
	}
	meta := make(map[string]ToolMeta, len(paths))
	for name, path := range paths {
		c := tools.Command{Path: path, Timeout: toolProbeTimeout}
		meta[name] = ToolMeta{Path: path, Version: c.Version(ctx)}
	}
	return meta
}

// printVersionInfo prints the version information for the binary and the tools.
func printVersionInfo(w io.Writer, versions *CoreVersions) {
	fmt.Fprintf(w, "Core Version: v%s\n", versions.Versions.Version)
	fmt.Fprintln(w, "Tool Versions:")
	for _, name := range []string{"bulk_extractor", "fiwalk", "icat"} {
		if t, ok := versions.Tools[name]; ok {
			fmt.Fprintf(w, "  %s: %s (%s)\n", name, t.Version, t.Path)
		}
	}
	fmt.Fprintf(w, "Go Version: %s\n", versions.Versions.GolangVersion)
	fmt.Fprintf(w, "Build Time: %s\n", versions.Versions.BuildTime)
}
