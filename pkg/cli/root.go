package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	Version = "0.1.0"
	rootCmd *cobra.Command
)

func init() {
	// Environment variable support (DVAPI_LOGS_DIR, DVAPI_BASE_URL, etc.)
	viper.SetEnvPrefix("DVAPI")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("base_url", "http://localhost:3000")
	viper.SetDefault("reports_dir", "./reports")

	rootCmd = newRootCmd()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "dvapi",
		Short:             "DVAPI exploit helpers and report generator",
		Long:              "dvapi sends single-shot exploit requests against a Damn Vulnerable API instance, keeps per-challenge logs and flags, and turns those logs into an HTML report.",
		PersistentPreRunE: initConfig,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	// Global flags
	cmd.PersistentFlags().String("config", "", "YAML config file")
	cmd.PersistentFlags().StringP("logs", "l", "./logs", "Directory holding exploit-<id>.log files")
	cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	_ = viper.BindPFlag("config", cmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("logs_dir", cmd.PersistentFlags().Lookup("logs"))
	_ = viper.BindPFlag("debug", cmd.PersistentFlags().Lookup("debug"))

	// Subcommands
	cmd.AddCommand(newReportCmd())
	cmd.AddCommand(newExploitCmd())
	cmd.AddCommand(newExtractCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func initConfig(_ *cobra.Command, _ []string) error {
	setupLogging(viper.GetBool("debug"))

	path := viper.GetString("config")
	if path == "" {
		return nil
	}
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	logrus.WithField("config", viper.ConfigFileUsed()).Debug("Loaded config file")
	return nil
}

func setupLogging(debug bool) {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if debug {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
