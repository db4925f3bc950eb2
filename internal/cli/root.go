// Package cli implements the cobra-based command surface for unpack.
//
// The tool does one thing, so there are no subcommands: the root
// command takes one or more file/directory arguments, wires the run
// session from configuration, and translates the final failure count
// into the process exit status.
package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/unpack/internal/atomicfile"
	"github.com/mmr-tortoise/unpack/internal/config"
	"github.com/mmr-tortoise/unpack/internal/detect"
	"github.com/mmr-tortoise/unpack/internal/handler"
	"github.com/mmr-tortoise/unpack/internal/model"
	"github.com/mmr-tortoise/unpack/internal/registry"
	"github.com/mmr-tortoise/unpack/internal/runner"
)

// Flag variables bound to the root command.
var (
	// recursive selects full-depth directory traversal.
	recursive bool

	// verbose enables the per-item progress lines.
	verbose bool

	// configPath names an explicit settings file (otherwise the working
	// directory is probed for unpack.yaml / unpack.jsonc).
	configPath string
)

// Version, Commit, and Date are injected from the main package at
// build time via ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "unpack [flags] PATH...",
		Short: "Decompress archives in place, detected by content",
		Long: `unpack identifies compressed archives by inspecting file content (never
by filename extension), decompresses each recognized item in place, and
exits with a status equal to the number of items it could not
decompress.

Supported out of the box: zip containers and gzip, bzip2, and legacy
compress streams. Additional detected types (xz, zstd, lz4) can be
bound to operations via a local .unpack.handlers mapping file. Actual
decoding is delegated to the usual external programs (unzip, gzip,
bzip2, ...).

Stream output naming strips a recognized compression suffix to recover
the stem (log.txt.gz -> log.txt); with no recognized suffix, ".out" is
appended. Existing outputs are always overwritten.`,

		Args: cobra.MinimumNArgs(1),

		// Cobra's own usage/error printing is disabled; errors are
		// formatted here and exit codes are ours to choose.
		SilenceUsage:  true,
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runUnpack(args)
		},
	}

	rootCmd.Flags().BoolVarP(&recursive, "recursive", "r", false,
		"Descend into directories at any depth")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false,
		"Print a progress line per item")
	rootCmd.Flags().StringVar(&configPath, "config", "",
		"Settings file (default: unpack.yaml or unpack.jsonc in the working directory)")

	return rootCmd
}

// runUnpack wires a Session from configuration and processes the
// requested paths.
func runUnpack(paths []string) error {
	settings, err := config.Load(configPath)
	if err != nil {
		return model.WrapError(model.KindInternal, "", "loading configuration", err)
	}

	catalog := handler.NewCatalog(settings.Decoders)
	reg := registry.NewWithBuiltins(catalog)
	if err := registry.LoadMappingFile(reg, settings.HandlersFile, catalog); err != nil {
		return model.WrapError(model.KindInternal, settings.HandlersFile,
			"loading handler mapping file", err)
	}

	temps := atomicfile.NewTempRegistry()
	installCleanupOnSignal(temps)

	session := &runner.Session{
		Registry:  reg,
		Detector:  detect.New(),
		Limits:    settings.Limits,
		Temps:     temps,
		Recursive: recursive,
		Verbose:   verbose,
		Out:       os.Stdout,
		Errs:      os.Stderr,
	}

	counters, err := session.Run(paths)
	if err != nil {
		// Unexpected orchestration fault: Run has already cleaned up the
		// tracked temporaries; surface the diagnostic and terminate.
		return err
	}

	failures := counters.Report(os.Stdout)
	if failures > 0 {
		os.Exit(model.SaturateExit(failures))
	}
	return nil
}

// installCleanupOnSignal removes all tracked temporaries when the
// process is interrupted or terminated, then exits with the
// conventional 128+signal status. The registry serializes access, so
// cleanup is safe against in-flight registrations in the main flow.
func installCleanupOnSignal(temps *atomicfile.TempRegistry) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		temps.CleanupAll()
		if s, ok := sig.(syscall.Signal); ok {
			os.Exit(128 + int(s))
		}
		os.Exit(1)
	}()
}

// Execute runs the root command and maps errors to exit codes. All
// per-item failures are absorbed into the exit status inside runUnpack;
// an error reaching this point is a usage problem or an internal fault.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
