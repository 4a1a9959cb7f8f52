package apidb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	"github.com/chainsafe/wallet-settlement/pkg/audit"
	mghelper "github.com/chainsafe/wallet-settlement/pkg/pgutil/migrations"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating risk_decisions table...")
		if err := mghelper.CreateSchema(ctx, db, &audit.DecisionDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &audit.DecisionDao{}, "user_id", "created_at")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping risk_decisions table...")
		return mghelper.DropTables(ctx, db, &audit.DecisionDao{})
	})
}
