package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bulk-reviewer/brv/cmd/annotate"
	"github.com/bulk-reviewer/brv/cmd/export"
	"github.com/bulk-reviewer/brv/cmd/process"
	"github.com/bulk-reviewer/brv/cmd/report"
	"github.com/bulk-reviewer/brv/cmd/version"
	"github.com/bulk-reviewer/brv/internal/config"
	brerrors "github.com/bulk-reviewer/brv/pkg/shared/errors"
)

var (
	cfgFile   string
	AppConfig *config.Config
	rootCmd   = &cobra.Command{
		Use:                   "brv [command]",
		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
		Short:                 "Bulk Reviewer finds PII in directories and disk images and exports reviewed files.",
		Long: `Bulk Reviewer finds personally identifiable information in directories and
	disk images with bulk_extractor, attributes every feature to the file that
	contains it and exports the files that are cleared for access.
	`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $BRV_CONFIG or <home>/config.yml)")
	rootCmd.AddCommand(process.ProcessCmd)
	rootCmd.AddCommand(export.ExportCmd)
	rootCmd.AddCommand(annotate.AnnotateCmd)
	rootCmd.AddCommand(report.ReportCmd)
	rootCmd.AddCommand(version.NewVersionCmd())
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if AppConfig != nil && config.GetBoolValue(AppConfig, "Logger.ToFile", true) {
			fmt.Fprintf(os.Stderr, "See the log file %s for details.\n", config.GetLogFile(AppConfig))
		}
		return exitCode(err)
	}
	return 0
}

func exitCode(err error) int {
	var cmdErr *brerrors.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode
	}
	return 1
}

func initConfig() {
	var err error

	AppConfig, err = config.LoadConfig(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "initializing config file function is crashed - %v \n", err)
		os.Exit(1)
	}
	if err := config.ValidateConfig(AppConfig); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	process.Init(AppConfig)
	export.Init(AppConfig)
	annotate.Init(AppConfig)
	report.Init(AppConfig)
	version.Init(AppConfig)
}
