package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/magpie/internal/config"
	"github.com/aidanlsb/magpie/internal/ui"
)

var (
	// Global flags
	serverName string // Named server from config
	configPath string
	quietMode  bool

	// Resolved values
	cfg                *config.Config
	resolvedConfigPath string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "mag",
	Short: "Magpie - query and safely mutate management-server records",
	Long: `Magpie queries collections of nested records on a management server with
terse path expressions and comparison predicates, then applies create,
update, and delete actions with confirmation and rate-limiting safeguards.

Named for the bird that hoards whatever catches its eye.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Commands that never touch a server don't need config to be valid.
		switch cmd.Name() {
		case "completion", "help", "version", "docs":
			return nil
		}
		if cmd.Parent() != nil && (cmd.Parent().Name() == "completion" || cmd.Parent().Name() == "config") {
			return nil
		}

		var err error
		cfg, resolvedConfigPath, err = loadGlobalConfigWithPath()
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}
		ui.ConfigureTheme(cfg.UI.Accent)
		return nil
	},
}

// Execute runs the CLI. Errors are printed here (the root silences Cobra's
// own reporting so JSON-mode envelopes aren't duplicated on stderr).
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errReported) {
		fmt.Fprintln(os.Stderr, ui.Error(err.Error()))
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&serverName, "server", "s", "", "Named server from config")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for script use)")
	rootCmd.PersistentFlags().BoolVarP(&quietMode, "quiet", "q", false, "Never prompt; mutations then require --force")
}

// getConfig returns the loaded config.
func getConfig() *config.Config {
	if cfg == nil {
		cfg = &config.Config{}
	}
	return cfg
}

// getConfigPath returns the resolved global config path.
func getConfigPath() string {
	if resolvedConfigPath == "" {
		return config.ResolvePath(configPath)
	}
	return resolvedConfigPath
}

func loadGlobalConfigWithPath() (*config.Config, string, error) {
	resolvedPath := config.ResolvePath(configPath)

	var loadedCfg *config.Config
	var err error
	if strings.TrimSpace(configPath) != "" {
		loadedCfg, err = config.LoadFrom(configPath)
	} else {
		loadedCfg, err = config.Load()
	}
	if err != nil {
		return nil, "", err
	}
	if loadedCfg == nil {
		loadedCfg = &config.Config{}
	}
	return loadedCfg, resolvedPath, nil
}
