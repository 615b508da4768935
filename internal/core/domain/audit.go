package domain

import "time"

// AuditAction labels a lifecycle operation in the audit trail.
type AuditAction string

const (
	AuditUserCreated AuditAction = "user_created"
	AuditUserUpdated AuditAction = "user_updated"
	AuditUserDeleted AuditAction = "user_deleted"
)

// AuditEntry records one completed cascade operation. Entries are written
// best-effort after commit; losing one never fails the operation itself.
type AuditEntry struct {
	UserID    string      `json:"user_id" bson:"user_id"`
	Action    AuditAction `json:"action" bson:"action"`
	Role      Role        `json:"role,omitempty" bson:"role,omitempty"`
	Actor     string      `json:"actor,omitempty" bson:"actor,omitempty"`
	Details   string      `json:"details,omitempty" bson:"details,omitempty"`
	Timestamp time.Time   `json:"timestamp" bson:"timestamp"`
}
