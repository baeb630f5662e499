package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"whatsapp-autoreply/internal/apiclient"
	"whatsapp-autoreply/internal/builder"
	"whatsapp-autoreply/internal/database"
	"whatsapp-autoreply/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	envPrefix = "AUTOFLOW"

	driverMemory = "memory"
)

func Execute() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "autoflow",
		Short:        "Build and test WhatsApp auto-reply flows",
		SilenceUsage: true,
	}

	cobra.OnInitialize(initConfig)

	cmd.PersistentFlags().String("server", "http://localhost:8080", "Base URL of the auto-reply server.")
	cmd.PersistentFlags().String("store", database.DriverSQLite, "Local flow store: sqlite|postgres|memory.")
	cmd.PersistentFlags().String("dsn", "./autoflow.db", "Store DSN (sqlite file path or postgres connection string).")

	_ = viper.BindPFlag("server.url", cmd.PersistentFlags().Lookup("server"))
	_ = viper.BindPFlag("store.driver", cmd.PersistentFlags().Lookup("store"))
	_ = viper.BindPFlag("store.dsn", cmd.PersistentFlags().Lookup("dsn"))

	cmd.AddCommand(newCreateCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newRegenerateCmd())
	cmd.AddCommand(newEditCmd())
	cmd.AddCommand(newSendCmd())
	cmd.AddCommand(newDeleteCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newActivityCmd())
	cmd.AddCommand(newWebhookListCmd())

	return cmd
}

func initConfig() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
}

func serverClient() *apiclient.Client {
	return apiclient.New(strings.TrimRight(strings.TrimSpace(viper.GetString("server.url")), "/"))
}

func openStorage() (store.Storage, error) {
	driver := strings.ToLower(strings.TrimSpace(viper.GetString("store.driver")))
	if driver == driverMemory {
		return store.NewMemoryStorage(), nil
	}
	db, err := database.Open(driver, viper.GetString("store.dsn"))
	if err != nil {
		return nil, err
	}
	return database.NewKVStorage(db), nil
}

func newBuilder(ctx context.Context) (*builder.Builder, error) {
	storage, err := openStorage()
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	s, err := store.Open(ctx, storage)
	if err != nil {
		return nil, fmt.Errorf("load flows: %w", err)
	}
	return builder.New(s, serverClient()), nil
}
