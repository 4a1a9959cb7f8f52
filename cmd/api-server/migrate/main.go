package main

import (
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"

	"github.com/chainsafe/wallet-settlement/pkg/config"
	"github.com/chainsafe/wallet-settlement/pkg/migrations/apidb"
	"github.com/chainsafe/wallet-settlement/pkg/pgutil"
	mghelper "github.com/chainsafe/wallet-settlement/pkg/pgutil/migrations"
)

func defaultConfigPath() string {
	if p := os.Getenv("SETTLEMENT_CONFIG"); p != "" {
		return p
	}
	return "config.example.yaml"
}

func main() {
	_ = godotenv.Load()

	cfgPath := flag.String("config", defaultConfigPath(), "Path to configuration file (env SETTLEMENT_CONFIG)")
	flag.Usage = mghelper.Usage
	flag.Parse()

	cfg, err := config.LoadAPIServer(*cfgPath)
	if err != nil {
		mghelper.Exitf("error reading configuration file: %v", err)
	}

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		mghelper.Exitf("error creating logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := pgutil.ConnectDB(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to settlement database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Running settlement migrations",
		zap.String("database", cfg.Database.Database),
		zap.Strings("args", flag.Args()),
		zap.Int("registered", len(apidb.Migrations.Sorted())))

	if err := mghelper.RunMigrations(migrate.NewMigrator(db, apidb.Migrations), flag.Args()...); err != nil {
		mghelper.Exitf("%v", err)
	}
}
