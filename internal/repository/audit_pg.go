package repository

import (
	"context"
	"encoding/json"

	"github.com/GoPolymarket/hudgate/internal/model"
	"gorm.io/gorm"
)

// auditRow is the table shape for one audit record; the in-memory Context
// map is serialized to a JSON column.
type auditRow struct {
	ID           string `gorm:"primaryKey"`
	Method       string
	Path         string
	IP           string
	UserAgent    string
	RequestBody  string
	StatusCode   int
	ResponseBody string
	LatencyMs    int64
	Context      string `gorm:"type:jsonb"`
	CreatedAt    int64  `gorm:"index"`
}

func (auditRow) TableName() string {
	return "audit_logs"
}

type PostgresAuditSink struct {
	db *gorm.DB
}

func NewPostgresAuditSink(db *gorm.DB) *PostgresAuditSink {
	_ = db.AutoMigrate(&auditRow{})
	return &PostgresAuditSink{db: db}
}

func (s *PostgresAuditSink) Insert(ctx context.Context, entry *model.AuditLog) error {
	if entry == nil {
		return nil
	}
	contextJSON, _ := json.Marshal(entry.Context)
	row := auditRow{
		ID:           entry.ID,
		Method:       entry.Method,
		Path:         entry.Path,
		IP:           entry.IP,
		UserAgent:    entry.UserAgent,
		RequestBody:  entry.RequestBody,
		StatusCode:   entry.StatusCode,
		ResponseBody: entry.ResponseBody,
		LatencyMs:    entry.LatencyMs,
		Context:      string(contextJSON),
		CreatedAt:    entry.CreatedAt.UnixMilli(),
	}
	return s.db.WithContext(ctx).Create(&row).Error
}
