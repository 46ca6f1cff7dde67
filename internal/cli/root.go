// Package cli implements the valcal commands.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"valcal/internal/config"
	appLog "valcal/internal/log"
	"valcal/internal/unlock"
)

var (
	configPath string
	logLevel   string
	formatFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "valcal",
	Short: "Valentine advent calendars carried in a link",
	Long: "Build a 14-day Valentine calendar, share it as a single link, and open\n" +
		"one day at a time from February 1st to Valentine's Day.",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A missing .env is normal.
		_ = godotenv.Load()
		if logLevel != "" {
			setLogLevel(logLevel)
		}
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config path (default: $VALCAL_CONFIG or ~/.config/valcal/config.yaml)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "text", "Output format: json or text")
}

func getConfigPath() string {
	if configPath != "" {
		return configPath
	}
	if env := os.Getenv("VALCAL_CONFIG"); env != "" {
		return env
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "valcal", "config.yaml")
}

// loadConfig reads the config file, writing defaults on first run, then
// applies VALCAL_* overrides.
func loadConfig() *config.Config {
	path := getConfigPath()
	cfg, err := config.Load(path)
	if err != nil {
		if cfg == nil {
			exitErr("load config", err)
		}
		appLog.Warn("could not write default config; continuing with defaults", "path", path, "error", err.Error())
	}
	cfg.ApplyEnv()
	cfg.Normalize()

	if logLevel == "" {
		setLogLevel(cfg.LogLevel)
	}
	appLog.Debug("config loaded", "path", path)
	return cfg
}

// viewerLocation is the zone used for calendars that carry none.
func viewerLocation(cfg *config.Config) *time.Location {
	if cfg.ViewerTimezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(cfg.ViewerTimezone)
	if err != nil {
		appLog.Warn("invalid viewer_timezone; using local time", "viewer_timezone", cfg.ViewerTimezone)
		return time.Local
	}
	return loc
}

func setLogLevel(s string) {
	lvl, err := appLog.ParseLevel(s)
	if err != nil {
		appLog.Warn("ignoring log level", "value", s, "error", err.Error())
	}
	appLog.SetLevel(lvl)
}

func newEngine(cfg *config.Config) *unlock.Engine {
	return unlock.NewEngine(unlock.NewZoneResolver(viewerLocation(cfg)))
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		exitErr("encode output", err)
	}
	fmt.Println(string(b))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
