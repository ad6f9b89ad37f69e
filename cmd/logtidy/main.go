package main

import (
	"fmt"
	"os"
	"time"

	"logtidy/internal/app"
	"logtidy/internal/config"
	"logtidy/internal/logtidy"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file, falling back to defaults when none exists.
func loadConfig() (*config.Config, string, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, "", fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.Load(defaults["config_path"], defaults["base_dir"])
	if err != nil {
		return nil, "", fmt.Errorf("reading config: %w", err)
	}
	return cfg, defaults["config_path"], nil
}

// newApp creates an App from cfg. The caller must defer app.Close().
func newApp(cfg *config.Config) (*app.App, error) {
	a, err := app.NewApp(cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

var rootCmd = &cobra.Command{
	Use:          "logtidy",
	Short:        "Archive, reclaim and expire log files",
	SilenceUsage: true,
}

// run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Reclaim space, archive old logs and expire old archives",
	Long: `Runs the three retention phases against one log directory:

  1. if free space is below --low-disk-mb, delete the oldest archives
  2. move logs older than --archive-age-days into per-day zip archives
  3. if --expire-after-days is set, delete archives older than that

Flags override the [retention] section of the config file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		if err := applyRunFlags(cmd, cfg); err != nil {
			return err
		}
		if cfg.Retention.Location == "" {
			return logtidy.ErrLocationRequired
		}

		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.Run(cfg.Options())
		printReport(report)
		if err != nil {
			return fmt.Errorf("run failed: %w", err)
		}
		return nil
	},
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().String("log-location", "", "Directory containing the log files")
	cmd.Flags().Int64("low-disk-mb", 0, "Delete oldest archives until this many MiB are free (0 disables)")
	cmd.Flags().Int("archive-age-days", config.DefaultArchiveAgeDays, "Archive files at least this many days old (0 archives all)")
	cmd.Flags().Int("expire-after-days", 0, "Delete archives older than this many days (0 disables)")
	cmd.Flags().String("metrics-file", "", "Write Prometheus metrics to this textfile")
}

// applyRunFlags overwrites cfg with the run flags given on the command line.
// Flags left unset keep the config file's values.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error
	if flags.Changed("log-location") {
		if cfg.Retention.Location, err = flags.GetString("log-location"); err != nil {
			return err
		}
	}
	if flags.Changed("low-disk-mb") {
		if cfg.Retention.LowDiskMB, err = flags.GetInt64("low-disk-mb"); err != nil {
			return err
		}
	}
	if flags.Changed("archive-age-days") {
		if cfg.Retention.ArchiveAgeDays, err = flags.GetInt("archive-age-days"); err != nil {
			return err
		}
	}
	if flags.Changed("expire-after-days") {
		if cfg.Retention.ExpireAfterDays, err = flags.GetInt("expire-after-days"); err != nil {
			return err
		}
	}
	if flags.Changed("metrics-file") {
		if cfg.Metrics.Textfile, err = flags.GetString("metrics-file"); err != nil {
			return err
		}
	}
	return nil
}

func printReport(r *logtidy.RunReport) {
	if r == nil {
		return
	}
	if rc := r.Reclaim; rc != nil && len(rc.Deleted) > 0 {
		fmt.Printf("Reclaimed %d MiB by deleting %d archive(s)\n", rc.Freed>>20, len(rc.Deleted))
		if !rc.Satisfied {
			fmt.Printf("Warning: free space still %d MiB below floor\n", (rc.Deficit-rc.Freed)>>20)
		}
	}
	if ar := r.Archive; ar != nil {
		fmt.Printf("Archived %d file(s): %d archive(s) created, %d merged\n",
			ar.FilesFolded, len(ar.Created), len(ar.Merged))
		if len(ar.SkippedBusy) > 0 {
			fmt.Printf("Skipped %d file(s) in use\n", len(ar.SkippedBusy))
		}
		for _, path := range ar.SkippedUnwritable {
			fmt.Printf("Warning: cannot archive %s: not writable\n", path)
		}
		for _, path := range ar.SkippedBlocked {
			fmt.Printf("Warning: cannot archive %s: its day bucket path is taken by a file\n", path)
		}
		if len(ar.RemovedTemps) > 0 {
			fmt.Printf("Removed %d stale temp archive(s)\n", len(ar.RemovedTemps))
		}
	}
	if ex := r.Expire; ex != nil && len(ex.Expired) > 0 {
		fmt.Printf("Expired %d archive(s)\n", len(ex.Expired))
	}
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		if location, _ := cmd.Flags().GetString("log-location"); location != "" {
			cfg.Retention.Location = location
		}

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}

		fmt.Printf("Configuration from %s:\n\n", path)
		fmt.Printf("Base Dir:          %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:           %s\n", cfg.LogDir)
		fmt.Printf("Log Level:         %s\n", cfg.LogLevel)
		fmt.Printf("Log Location:      %s\n", cfg.Retention.Location)
		fmt.Printf("Low Disk (MiB):    %d\n", cfg.Retention.LowDiskMB)
		fmt.Printf("Archive Age Days:  %d\n", cfg.Retention.ArchiveAgeDays)
		fmt.Printf("Expire After Days: %d\n", cfg.Retention.ExpireAfterDays)
		fmt.Printf("Ignore:            %v\n", cfg.Retention.Ignore)
		fmt.Printf("Archive:           %s (%s)\n", cfg.Archive.Type, cfg.Archive.Compression)
		fmt.Printf("Journal:           %s %s\n", cfg.Journal.Type, cfg.Journal.DataDir)
		fmt.Printf("Metrics Textfile:  %s\n", cfg.Metrics.Textfile)
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View recorded runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		showDeletions, _ := cmd.Flags().GetBool("deletions")

		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		runs, err := a.History(limit)
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		for _, r := range runs {
			d := r.FinishedAt.Sub(r.StartedAt).Truncate(time.Millisecond)
			fmt.Printf("%s  %s  %-7s  archived:%d skipped:%d created:%d merged:%d reclaimed:%d expired:%d  %s\n",
				r.ID,
				r.StartedAt.Local().Format("2006-01-02 15:04:05"),
				r.Status,
				r.FilesArchived,
				r.FilesSkipped,
				r.ArchivesCreated,
				r.ArchivesMerged,
				r.ArchivesReclaimed,
				r.ArchivesExpired,
				d,
			)
			if r.Error != "" {
				fmt.Printf("    error: %s\n", r.Error)
			}
			if !showDeletions {
				continue
			}
			deletions, err := a.Deletions(r.ID)
			if err != nil {
				return err
			}
			for _, del := range deletions {
				fmt.Printf("    %-7s %s\n", del.Reason, del.Path)
			}
		}
		return nil
	},
}

// ls command
var lsCmd = &cobra.Command{
	Use:   "ls ARCHIVE",
	Short: "List the entries of a daily archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		names, err := a.ListArchive(args[0])
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

func init() {
	addRunFlags(runCmd)

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configInitCmd.Flags().String("log-location", "", "Log directory to store in the new config")

	// root commands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of runs to show")
	historyCmd.Flags().Bool("deletions", false, "Also list the archives each run deleted")
	rootCmd.AddCommand(lsCmd)
}
