package service

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/GoPolymarket/hudgate/internal/model"
)

// AuditSink persists one audit record; implementations fan out to Postgres
// or Redis.
type AuditSink interface {
	Insert(ctx context.Context, entry *model.AuditLog) error
}

// AuditService writes webhook audit records asynchronously: always to a
// daily JSONL file, plus any configured sinks. Logging never blocks the
// trade path; a full buffer drops entries.
type AuditService struct {
	logChan chan *model.AuditLog
	logFile *os.File
	sinks   []AuditSink
}

func NewAuditService(logDir string, sinks ...AuditSink) (*AuditService, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, err
	}

	filename := filepath.Join(logDir, "audit-"+time.Now().Format("2006-01-02")+".jsonl")
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	svc := &AuditService{
		logChan: make(chan *model.AuditLog, 1000),
		logFile: f,
		sinks:   sinks,
	}

	go svc.processLogs()

	return svc, nil
}

func (s *AuditService) Log(entry *model.AuditLog) {
	select {
	case s.logChan <- entry:
	default:
		log.Println("audit log buffer full, dropping entry")
	}
}

func (s *AuditService) processLogs() {
	encoder := json.NewEncoder(s.logFile)
	for entry := range s.logChan {
		for _, sink := range s.sinks {
			if err := sink.Insert(context.Background(), entry); err != nil {
				log.Printf("failed to write audit log to sink: %v", err)
			}
		}
		if err := encoder.Encode(entry); err != nil {
			log.Printf("failed to write audit log: %v", err)
		}
	}
}

func (s *AuditService) Close() {
	close(s.logChan)
	s.logFile.Close()
}
