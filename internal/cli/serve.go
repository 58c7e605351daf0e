package cli

import (
	"jobassist/internal/server"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP server that exposes the assistant as a REST API.

Available endpoints:
- POST /analyze-posting: Break a job posting into titled sections
- POST /suggest-questions: Suggest questions per contact
- POST /learning-plan: Build a learning plan from a resume and a job posting
- POST /extract/sections: Run the section pipeline over raw model output
- POST /extract/questions: Run the question pipeline over raw model output
- POST /profile/map: Map an external profile document
- POST /profile/import: Fetch a public profile page and map it
- GET /health: Health check endpoint
- GET /stats: Server statistics and rate limiting info

When Vault key watching is enabled, API keys are rotated without a restart.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")
	serveCmd.Flags().Bool("watch-prompts", false, "Reload prompt files when they change (overrides config)")

	// Bind flags to viper config keys
	bindFlag := func(key, flagName string) {
		if err := viper.BindPFlag(key, serveCmd.Flags().Lookup(flagName)); err != nil {
			panic(err)
		}
	}

	bindFlag("server.port", "port")
	bindFlag("server.host", "host")
	bindFlag("server.watchPrompts", "watch-prompts")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	// Flags are parsed after the config was loaded
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = viper.GetString("server.port")
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = viper.GetString("server.host")
	}
	if cmd.Flags().Changed("watch-prompts") {
		cfg.Server.WatchPrompts = viper.GetBool("server.watchPrompts")
	}

	serverCfg := server.ServerConfig{
		Host:               cfg.Server.Host,
		Port:               cfg.Server.Port,
		Version:            Version,
		APIKeys:            cfg.Server.APIKeys,
		ReadTimeout:        cfg.Server.ReadTimeout,
		WriteTimeout:       cfg.Server.WriteTimeout,
		IdleTimeout:        cfg.Server.IdleTimeout,
		HealthCheckTimeout: cfg.Server.HealthCheckTimeout,
		MaxRequestSize:     cfg.Server.MaxRequestSize,
		RateLimit:          &cfg.Server.RateLimit,
	}

	srv := server.NewServer(cfg, serverCfg, logger)
	if vault := getVaultFromContext(cmd.Context()); vault != nil {
		srv = srv.WithVault(vault)
	}
	return srv.Start(cmd.Context())
}
