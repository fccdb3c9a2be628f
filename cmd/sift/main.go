package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Veraticus/sift/internal/cli"
	"github.com/Veraticus/sift/internal/common"
	"github.com/Veraticus/sift/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

func main() {
	// Set up signal handling
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Warn("Received interrupt signal, stopping after the current line...")
		cancel()
	}()

	err := newRootCmd().ExecuteContext(ctx)
	cancel() // Always cleanup

	if err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(err.Error()))
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Each call gets its own viper instance
// so separate invocations never share configuration.
func newRootCmd() *cobra.Command {
	v := viper.New()
	config.SetDefaults(v)

	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "sift [flags] <file>...",
		Short: "Sort lines into integers, floats and strings",
		Long: `sift reads text files line by line and sorts every non-blank line into
integers.txt, floats.txt or strings.txt, then prints statistics for each kind.

Lines are tried as an integer first, then as a decimal float; anything else is
a string. Files are processed in the order given.`,
		Example: `  # Sort two files into ./out with a prefix and full statistics
  sift -o out -p run1_ -f data1.txt data2.txt

  # Append to existing output files
  sift -a more.txt`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(cmd, v, cfgFile)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/sift/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().String("history-db", "", "record runs in this SQLite database")

	// Bind flags to viper
	_ = v.BindPFlag(config.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag(config.KeyLogFormat, rootCmd.PersistentFlags().Lookup("log-format"))
	_ = v.BindPFlag(config.KeyHistoryPath, rootCmd.PersistentFlags().Lookup("history-db"))

	// Positional arguments are input files; keep the command namespace small.
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return common.NewUserError("invalid arguments (see sift --help)", err)
	})

	addFilterFlags(rootCmd, v)

	rootCmd.AddCommand(historyCmd(v))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func initConfig(cmd *cobra.Command, v *viper.Viper, cfgFile string) error {
	// Set up config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(fmt.Sprintf("%s/.config/sift", home))
		}
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Environment variables, e.g. SIFT_OUTPUT_DIR
	v.SetEnvPrefix("SIFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	if err := setupLogging(cmd, v); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	return nil
}

func setupLogging(cmd *cobra.Command, v *viper.Viper) error {
	level, err := common.ParseLevel(v.GetString(config.KeyLogLevel))
	if err != nil {
		return err
	}
	return common.SetupLogger(cmd.ErrOrStderr(), level, v.GetString(config.KeyLogFormat))
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s sift version %s\n", cli.SiftIcon, version)
			return err
		},
	}
}
