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
		log.Println("creating user_profiles table...")
		if err := mghelper.CreateSchema(ctx, db, &userstore.ProfileDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &userstore.ProfileDao{}, "tenant_id")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping user_profiles table...")
		return mghelper.DropTables(ctx, db, &userstore.ProfileDao{})
	})
}
