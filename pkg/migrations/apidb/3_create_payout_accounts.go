package apidb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	mghelper "github.com/chainsafe/wallet-settlement/pkg/pgutil/migrations"
	"github.com/chainsafe/wallet-settlement/pkg/userstore"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating payout_accounts table...")
		if err := mghelper.CreateSchema(ctx, db, &userstore.PayoutAccountDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &userstore.PayoutAccountDao{}, "user_id")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping payout_accounts table...")
		return mghelper.DropTables(ctx, db, &userstore.PayoutAccountDao{})
	})
}
