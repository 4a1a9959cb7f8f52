package apidb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	mghelper "github.com/chainsafe/wallet-settlement/pkg/pgutil/migrations"
	"github.com/chainsafe/wallet-settlement/pkg/unlockstore"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating wallet_unlock_tokens table...")
		if err := mghelper.CreateSchema(ctx, db, &unlockstore.SessionDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &unlockstore.SessionDao{}, "expires_at")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping wallet_unlock_tokens table...")
		return mghelper.DropTables(ctx, db, &unlockstore.SessionDao{})
	})
}
