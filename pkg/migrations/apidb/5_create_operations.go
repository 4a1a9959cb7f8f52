package apidb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	"github.com/chainsafe/wallet-settlement/pkg/orderstore"
	mghelper "github.com/chainsafe/wallet-settlement/pkg/pgutil/migrations"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating operations table...")
		if err := mghelper.CreateSchema(ctx, db, &orderstore.OperationDao{}); err != nil {
			return err
		}
		err := mghelper.CreateModelIndexes(ctx, db, &orderstore.OperationDao{}, "user_id", "status", "created_at")
		if err != nil {
			return err
		}
		return mghelper.CreateCompositeIndex(ctx, db, &orderstore.OperationDao{},
			orderstore.IdempotencyIndex, true, "idempotency_key IS NOT NULL", "user_id", "idempotency_key")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping operations table...")
		return mghelper.DropTables(ctx, db, &orderstore.OperationDao{})
	})
}
