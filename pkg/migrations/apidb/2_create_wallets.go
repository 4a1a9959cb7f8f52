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
		log.Println("creating wallets table...")
		if err := mghelper.CreateSchema(ctx, db, &userstore.WalletDao{}); err != nil {
			return err
		}
		if err := mghelper.CreateModelIndexes(ctx, db, &userstore.WalletDao{}, "user_id"); err != nil {
			return err
		}
		// addresses are stored as submitted; EVM lookups compare lower-cased
		return mghelper.CreateCompositeIndex(ctx, db, &userstore.WalletDao{},
			"wallets_user_chain_address_uidx", true, "", "user_id", "chain", "address")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping wallets table...")
		return mghelper.DropTables(ctx, db, &userstore.WalletDao{})
	})
}
