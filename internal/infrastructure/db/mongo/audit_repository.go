package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/clinicore/clinic-system/internal/core/domain"
)

const collectionAudit = "audit_events"

// AuditRepository persists lifecycle audit entries.
type AuditRepository struct {
	col *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection(collectionAudit)}
}

func (r *AuditRepository) Insert(ctx context.Context, entry *domain.AuditEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"user_id":      entry.UserID,
		"action":       string(entry.Action),
		"timestamp":    entry.Timestamp.UTC(),
		"processed_at": time.Now().UTC(),
	}
	if entry.Role != "" {
		doc["role"] = string(entry.Role)
	}
	if entry.Actor != "" {
		doc["actor"] = entry.Actor
	}
	if entry.Details != "" {
		doc["details"] = entry.Details
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}
