package utils

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// Audit actions
const (
	ActionUserRegister  = "user.register"
	ActionLoginSuccess  = "auth.login_success"
	ActionLoginFailed   = "auth.login_failed"
	ActionLoginThrottle = "auth.login_throttled"
	ActionLogout        = "auth.logout"
	ActionProductCreate = "product.create"
	ActionProductDelete = "product.delete"
	ActionOrderCreate   = "order.create"
)

// Audit resources
const (
	ResourceUser    = "user"
	ResourceAuth    = "auth"
	ResourceProduct = "product"
	ResourceOrder   = "order"
)

type AuditEntry struct {
	UserID     string
	UserEmail  string
	Action     string
	Resource   string
	ResourceID string
	Detail     string
	IPAddress  string
	UserAgent  string
	Success    bool
	ErrorMsg   string
	Timestamp  time.Time
	SessionID  string
}

// Auditor records security-relevant actions.
type Auditor interface {
	Record(ctx context.Context, e AuditEntry) error
}

// NewAuditEntry fills the request-derived fields of an entry.
func NewAuditEntry(c *gin.Context, action, resource, resourceID string) AuditEntry {
	return AuditEntry{
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		IPAddress:  c.ClientIP(),
		UserAgent:  c.GetHeader("User-Agent"),
		Success:    true,
		Timestamp:  time.Now().UTC(),
	}
}

// ScyllaAuditor writes entries to the audit_logs table.
type ScyllaAuditor struct {
	session *gocql.Session
}

func NewScyllaAuditor(session *gocql.Session) *ScyllaAuditor {
	return &ScyllaAuditor{session: session}
}

const insertAudit = `INSERT INTO audit_logs (
	id, user_id, user_email, action, resource, resource_id, detail,
	ip_address, user_agent, success, error_msg, timestamp, session_id
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (a *ScyllaAuditor) Record(ctx context.Context, e AuditEntry) error {
	if err := a.session.Query(insertAudit, auditRow(e)...).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("insert audit %s: %w", e.Action, err)
	}
	return nil
}

// auditRow gives every entry its own row id; entries stamped in the same
// tick must not overwrite each other.
func auditRow(e AuditEntry) []any {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	return []any{
		gocql.TimeUUID(), e.UserID, e.UserEmail, e.Action, e.Resource,
		e.ResourceID, e.Detail, e.IPAddress, e.UserAgent, e.Success, e.ErrorMsg,
		e.Timestamp, e.SessionID,
	}
}

// LogAuditor emits entries as structured log lines.
type LogAuditor struct {
	logger *slog.Logger
}

func NewLogAuditor(logger *slog.Logger) *LogAuditor {
	return &LogAuditor{logger: logger}
}

func (a *LogAuditor) Record(ctx context.Context, e AuditEntry) error {
	level := slog.LevelInfo
	if !e.Success {
		level = slog.LevelWarn
	}
	a.logger.Log(ctx, level, "audit",
		"action", e.Action,
		"resource", e.Resource,
		"resource_id", e.ResourceID,
		"user_id", e.UserID,
		"user_email", e.UserEmail,
		"ip", e.IPAddress,
		"success", e.Success,
		"error", e.ErrorMsg,
		"detail", e.Detail,
		"session_id", e.SessionID,
	)
	return nil
}
