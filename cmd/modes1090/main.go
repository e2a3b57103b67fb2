package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"modes1090/internal/app"
	"modes1090/internal/logging"
)

func main() {
	config := app.DefaultConfig()
	if err := config.LoadEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := newRootCommand(&config, run).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(config app.Config) error {
	logger, closer, err := logging.New(config.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer closer.Close()

	application, err := app.NewApplication(config, logger)
	if err != nil {
		return err
	}
	return application.Start()
}

// newRootCommand binds flags onto config. Values already in config, from
// defaults and the environment, become the flag defaults.
func newRootCommand(config *app.Config, run func(app.Config) error) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "modes1090",
		Short: "Mode S / ADS-B decoder",
		Long: `Mode S / ADS-B decoder for Beast and AVR frame feeds.

Reads demodulated 1090 MHz frames, validates parity, resolves CPR positions,
decodes Comm-B registers and keeps per-aircraft state. State changes are
written in BaseStation (SBS) format and can be published to NATS and
snapshotted to Redis.

Every flag can also be set through a MODES1090_* environment variable or a
.env file in the working directory.

Example usage:
  nc localhost 30005 | modes1090 --receiver 52.3,4.76
  modes1090 --input tcp://localhost:30002 --format avr --sbs-dir ./logs`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if config.ShowVersion {
				app.ShowVersion(cmd.OutOrStdout())
				return nil
			}
			if err := config.Validate(); err != nil {
				return err
			}
			return run(*config)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&config.Input, "input", "i", config.Input, "Frame source: - for stdin, tcp://host:port or a file")
	flags.StringVarP(&config.Format, "format", "f", config.Format, "Input format: beast or avr")
	flags.StringVarP(&config.Receiver, "receiver", "r", config.Receiver, "Receiver location as lat,lon")
	flags.Float64Var(&config.MaxRate, "max-rate", config.MaxRate, "Drop frames above this rate per second (0 for no limit)")
	flags.IntVar(&config.QueueSize, "queue-size", config.QueueSize, "Frames buffered between input and decoder")

	flags.StringVarP(&config.SBSDir, "sbs-dir", "l", config.SBSDir, "Directory for daily BaseStation files")
	flags.BoolVar(&config.SBSStdout, "sbs-stdout", config.SBSStdout, "Write BaseStation lines to stdout")
	flags.BoolVarP(&config.SBSUTC, "utc", "u", config.SBSUTC, "Use UTC for daily file rotation")
	flags.IntVar(&config.SBSRetentionDays, "sbs-retention", config.SBSRetentionDays, "Days of BaseStation files to keep (0 keeps all)")

	flags.StringVar(&config.NATSURL, "nats-url", config.NATSURL, "NATS server for event publishing")
	flags.StringVar(&config.NATSSubject, "nats-subject", config.NATSSubject, "NATS subject prefix")
	flags.StringVar(&config.RedisAddr, "redis-addr", config.RedisAddr, "Redis server for aircraft snapshots")
	flags.StringVar(&config.RedisPassword, "redis-password", config.RedisPassword, "Redis password")
	flags.IntVar(&config.RedisDB, "redis-db", config.RedisDB, "Redis database")
	flags.DurationVar(&config.SnapshotTTL, "snapshot-ttl", config.SnapshotTTL, "Expiry of Redis snapshots")

	flags.DurationVar(&config.EvictAfter, "evict-after", config.EvictAfter, "Forget aircraft silent for this long (0 keeps all)")
	flags.DurationVar(&config.StatsInterval, "stats-interval", config.StatsInterval, "Statistics log interval")
	flags.DurationVar(&config.FlushInterval, "flush-interval", config.FlushInterval, "Eviction and snapshot interval")

	flags.BoolVar(&config.Policy.Dispatch.RequireSeenAddress, "require-seen", config.Policy.Dispatch.RequireSeenAddress, "Accept parity-recovered addresses only if recently seen")
	flags.Float64Var(&config.Policy.Dispatch.MaxClimbRate, "max-climb-rate", config.Policy.Dispatch.MaxClimbRate, "Reject altitude changes implying more ft/min")
	flags.Float64Var(&config.Policy.CPR.MaxGlobalRange, "max-range", config.Policy.CPR.MaxGlobalRange, "Reject global positions farther from the receiver (meters)")

	flags.BoolVarP(&config.Log.Verbose, "verbose", "v", config.Log.Verbose, "Verbose logging")
	flags.BoolVar(&config.Log.JSON, "log-json", config.Log.JSON, "Log in JSON")
	flags.StringVar(&config.Log.Dir, "log-dir", config.Log.Dir, "Directory for the rotated process log")
	flags.BoolVar(&config.ShowVersion, "version", config.ShowVersion, "Show version information")

	return rootCmd
}
