package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/magpie/internal/config"
	"github.com/aidanlsb/magpie/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage magpie configuration",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.ResolvePath(configPath)
		if isJSONOutput() {
			outputSuccess(map[string]any{"path": path}, nil)
			return nil
		}
		fmt.Println(path)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured servers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfigForEdit()
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}

		if isJSONOutput() {
			outputSuccess(map[string]any{
				"default_server": cfg.DefaultServer,
				"servers":        cfg.Servers,
			}, &Meta{Count: len(cfg.Servers)})
			return nil
		}
		names := make([]string, 0, len(cfg.Servers))
		for name := range cfg.Servers {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			marker := " "
			if name == cfg.DefaultServer {
				marker = "*"
			}
			fmt.Printf("%s %s  %s\n", marker, ui.Name(name), cfg.Servers[name].URL)
		}
		if len(names) == 0 {
			fmt.Println(ui.Hint("no servers configured; run 'mag config set-server'"))
		}
		return nil
	},
}

var (
	setServerURL   string
	setServerToken string
)

var configSetServerCmd = &cobra.Command{
	Use:   "set-server <name>",
	Short: "Add or update a named server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if setServerURL == "" {
			return handleErrorMsg(ErrMissingArgument, "--url is required", "")
		}

		cfg, err := loadConfigForEdit()
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}
		if cfg.Servers == nil {
			cfg.Servers = make(map[string]config.Server)
		}
		srv := cfg.Servers[name]
		srv.URL = setServerURL
		if cmd.Flags().Changed("token") {
			srv.Token = setServerToken
		}
		cfg.Servers[name] = srv
		if cfg.DefaultServer == "" {
			cfg.DefaultServer = name
		}
		if err := config.SaveTo(getConfigPath(), cfg); err != nil {
			return handleError(ErrFileWriteError, err, "")
		}

		if isJSONOutput() {
			outputSuccess(map[string]any{"server": name, "url": srv.URL}, nil)
			return nil
		}
		fmt.Println(ui.Successf("server %s -> %s", ui.Name(name), srv.URL))
		return nil
	},
}

var configUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the default server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		cfg, err := loadConfigForEdit()
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}
		if _, ok := cfg.Servers[name]; !ok {
			return handleErrorMsg(ErrServerNotFound,
				fmt.Sprintf("server '%s' not found in config", name),
				"Run 'mag config list' to see configured servers")
		}
		cfg.DefaultServer = name
		if err := config.SaveTo(getConfigPath(), cfg); err != nil {
			return handleError(ErrFileWriteError, err, "")
		}

		if isJSONOutput() {
			outputSuccess(map[string]any{"default_server": name}, nil)
			return nil
		}
		fmt.Println(ui.Successf("default server is now %s", ui.Name(name)))
		return nil
	},
}

// loadConfigForEdit reloads from disk; config subcommands skip the root's
// PersistentPreRunE, so cfg may not be populated.
func loadConfigForEdit() (*config.Config, error) {
	loaded, _, err := loadGlobalConfigWithPath()
	return loaded, err
}

func init() {
	configSetServerCmd.Flags().StringVar(&setServerURL, "url", "", "Server base URL, e.g. https://mdm.example.com")
	configSetServerCmd.Flags().StringVar(&setServerToken, "token", "", "Bearer token for API auth")
	configCmd.AddCommand(configPathCmd, configListCmd, configSetServerCmd, configUseCmd)
	rootCmd.AddCommand(configCmd)
}
