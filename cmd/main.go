package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/orangerpc/orange/acl"
	"github.com/orangerpc/orange/config"
	"github.com/orangerpc/orange/rpc"
	"github.com/orangerpc/orange/server"
	"github.com/orangerpc/orange/user"
)

var rootCmd = &cobra.Command{
	Use:   "orange",
	Short: "Orange - embedded device RPC backend",
	Long: `Orange is an embedded-device management backend that exposes named
objects as callable RPC methods over a session-authenticated JSON-RPC
channel, with challenge-response login and ACL-based authorization.`,
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the orange server",
	Long:  "Start the RPC backend with the configured credential and ACL sources",
	RunE:  runServer,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long:  "Validate the orange configuration and display the loaded settings",
	RunE:  validateConfig,
}

var configFilePath string

func main() {
	serverCmd.Flags().StringVarP(&configFilePath, "config", "c", "", "Path to configuration file")

	configCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(serverCmd, configCmd)

	// If no command specified, default to server
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "server")
	}

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// runServer starts the orange server
func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigFromFile(configFilePath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := initializeLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to sync logger: %v\n", err)
		}
	}()

	logger.Info("Starting orange server",
		zap.String("version", rpc.Version),
		zap.String("listen_addr", cfg.Server.ListenAddr))

	// User store: configured accounts carry their group memberships,
	// the password file supplies (and later rotates) the hashes.
	users := user.NewStore(logger)
	for username, groups := range cfg.Auth.Users {
		u := &user.User{Username: username}
		for _, group := range groups {
			u.AddGroup(group)
		}
		if err := users.Add(u); err != nil {
			logger.Warn("duplicate user in configuration", zap.String("username", username))
		}
	}

	credentials := user.FileSource{Path: cfg.Auth.PasswordFile, Logger: logger}
	if loaded := users.LoadCredentials(credentials); loaded == 0 {
		logger.Warn("no credentials loaded; logins will fail until the password file is readable",
			zap.String("password_file", cfg.Auth.PasswordFile))
	}

	acls := acl.NewEngine(acl.DirSource{Dir: cfg.Auth.ACLDir}, logger)

	logger.Info("Initializing RPC engine")
	engine := rpc.NewEngine(users, credentials, acls, logger)

	if err := engine.Register(rpc.NewInfoObject(engine)); err != nil {
		return fmt.Errorf("failed to register builtin object: %w", err)
	}

	discoverPlugins(cfg.Plugins.Dir, logger)

	logger.Info("Initializing HTTP router")
	router := server.NewRouter(engine, &cfg.Server, &cfg.Auth, logger)

	srv := &http.Server{
		Addr:         cfg.Server.ListenAddr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", cfg.Server.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	logger.Info("Server exited gracefully")
	return nil
}

// discoverPlugins walks the plugin directory and reports the script
// objects a plugin execution engine would load. Running them is the
// engine's job, not the core's; the walk exists so misconfigured paths
// show up in the log at startup.
func discoverPlugins(dir string, logger *zap.Logger) {
	if dir == "" {
		return
	}
	count := 0
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".lua") {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(rel, ".lua")
		logger.Info("discovered plugin", zap.String("object", name), zap.String("path", path))
		count++
		return nil
	})
	if err != nil {
		logger.Warn("could not scan plugin directory", zap.String("dir", dir), zap.Error(err))
		return
	}
	logger.Info("plugin scan complete", zap.Int("plugins", count))
}

// validateConfig validates the orange configuration and displays settings
func validateConfig(cmd *cobra.Command, args []string) error {
	fmt.Println("Validating configuration...")

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Configuration validation failed: %v\n", err)
		return err
	}

	fmt.Println("Configuration is valid")
	fmt.Printf("Listen Address: %s\n", cfg.Server.ListenAddr)
	fmt.Printf("Password File: %s\n", cfg.Auth.PasswordFile)
	fmt.Printf("ACL Directory: %s\n", cfg.Auth.ACLDir)
	fmt.Printf("Plugin Directory: %s\n", cfg.Plugins.Dir)
	fmt.Printf("Configured Users: %d\n", len(cfg.Auth.Users))

	return nil
}

// initializeLogger creates a zap logger based on configuration
func initializeLogger(logCfg config.LogConfig) (*zap.Logger, error) {
	var cfg zap.Config

	if logCfg.Format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	switch logCfg.Level {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	return cfg.Build()
}
