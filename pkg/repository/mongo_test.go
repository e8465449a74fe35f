package repository

import (
	"context"
	"testing"
	"time"

	"github.com/example/shopfront/pkg/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

var auditConfig = &config.MongoDBConfig{Database: "shop", Collection: "audit_logs"}

func TestCreateAuditLog(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	defer mt.Close()

	mt.Run("insert", func(mt *mtest.T) {
		repo := NewMongoRepositoryWithClient(mt.Client, auditConfig)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		log := &AuditLog{Service: "shop", Action: "order.created", EntityID: "7", Data: bson.M{"total": "10.00"}}
		if err := repo.CreateAuditLog(context.Background(), log); err != nil {
			t.Fatalf("CreateAuditLog: %v", err)
		}
		if log.CreatedAt.IsZero() {
			t.Error("created_at not stamped")
		}
		if log.ID.IsZero() {
			t.Error("id not populated")
		}
	})
}

func TestGetAuditLogs(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	defer mt.Close()

	mt.Run("find", func(mt *mtest.T) {
		repo := NewMongoRepositoryWithClient(mt.Client, auditConfig)
		now := time.Now().UTC().Truncate(time.Millisecond)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, "shop.audit_logs", mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "service", Value: "shop"},
				{Key: "action", Value: "order.coupon_applied"},
				{Key: "entity_id", Value: "7"},
				{Key: "created_at", Value: now},
			},
			bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "service", Value: "shop"},
				{Key: "action", Value: "order.created"},
				{Key: "entity_id", Value: "7"},
				{Key: "created_at", Value: now.Add(-time.Minute)},
			},
		))

		logs, err := repo.GetAuditLogs(context.Background(), "7", 10)
		if err != nil {
			t.Fatalf("GetAuditLogs: %v", err)
		}
		if len(logs) != 2 {
			t.Fatalf("len = %d, want 2", len(logs))
		}
		if logs[0].Action != "order.coupon_applied" {
			t.Errorf("first action = %q", logs[0].Action)
		}
	})
}
