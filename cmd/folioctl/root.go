// cmd/folioctl/root.go
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dalemusser/folio/internal/app/system/seeding"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	mongoURI string
	database string
	seedFile string
	verbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "folioctl",
	Short: "Maintain folio site content",
	Long: `folioctl works directly against the folio MongoDB database.

It seeds or resets the default content, exports the current content as a
seed file, and manages the admin account.

Connection settings default to FOLIO_MONGO_URI and FOLIO_MONGO_DATABASE.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&mongoURI, "mongo-uri", envOr("FOLIO_MONGO_URI", "mongodb://localhost:27017"), "MongoDB connection URI")
	rootCmd.PersistentFlags().StringVar(&database, "database", envOr("FOLIO_MONGO_DATABASE", "folio"), "MongoDB database name")
	rootCmd.PersistentFlags().StringVar(&seedFile, "seed-file", os.Getenv("FOLIO_SEED_FILE"), "YAML file overriding the built-in default content")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// connect opens the database named by the persistent flags. The returned
// func disconnects.
func connect(ctx context.Context) (*mongo.Database, func(), error) {
	client, err := wafflemongo.ConnectWithPool(ctx, mongoURI, database, wafflemongo.DefaultPoolConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	return client.Database(database), func() { _ = client.Disconnect(context.Background()) }, nil
}

// defaults returns the seed file content when --seed-file is set and the
// built-in content otherwise.
func defaults() (seeding.Content, error) {
	if seedFile == "" {
		return seeding.Builtin(), nil
	}
	return seeding.LoadFile(seedFile)
}
