package utils

import (
	"context"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prefeitura-rio/app-subscribe/internal/config"
	"github.com/prefeitura-rio/app-subscribe/internal/logging"
	"github.com/prefeitura-rio/app-subscribe/internal/observability"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// AuditLog represents one subscription event entry
type AuditLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email     string             `bson:"email" json:"email"`
	VID       int                `bson:"vid,omitempty" json:"vid,omitempty"`
	Action    string             `bson:"action" json:"action"`
	Status    string             `bson:"status" json:"status"`
	IPAddress string             `bson:"ip_address,omitempty" json:"ip_address,omitempty"`
	UserAgent string             `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	RequestID string             `bson:"request_id,omitempty" json:"request_id,omitempty"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}

// Audit actions
const (
	AuditActionSignup = "SIGNUP"
	AuditActionCreate = "CREATE"
	AuditActionUpdate = "UPDATE"
	AuditActionOptOut = "OPT_OUT"
	AuditActionLookup = "LOOKUP"
)

// AuditContext carries request metadata into audit entries
type AuditContext struct {
	IPAddress string
	UserAgent string
	RequestID string
}

// AuditWorker manages asynchronous audit logging
type AuditWorker struct {
	auditChan chan AuditLog
	workers   int
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

var (
	auditWorker *AuditWorker
	auditOnce   sync.Once
)

// InitAuditWorker initializes the audit worker
func InitAuditWorker(workers int, bufferSize int) {
	auditOnce.Do(func() {
		ctx, cancel := context.WithCancel(context.Background())
		auditWorker = &AuditWorker{
			auditChan: make(chan AuditLog, bufferSize),
			workers:   workers,
			ctx:       ctx,
			cancel:    cancel,
		}
		auditWorker.start()
	})
}

func (aw *AuditWorker) start() {
	aw.wg.Add(aw.workers)

	for i := 0; i < aw.workers; i++ {
		go func() {
			defer aw.wg.Done()
			aw.processAuditLogs()
		}()
	}

	logging.Logger.Info("audit worker started",
		zap.Int("workers", aw.workers),
		zap.Int("buffer_size", cap(aw.auditChan)))
}

func (aw *AuditWorker) processAuditLogs() {
	for {
		select {
		case <-aw.ctx.Done():
			return
		case entry := <-aw.auditChan:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_, err := config.MongoDB.Collection(config.AppConfig.AuditCollection).InsertOne(ctx, entry)
			cancel()
			if err != nil {
				// Audit is best effort; the primary result is already decided
				logging.Logger.Warn("failed to persist audit entry",
					zap.String("action", entry.Action),
					zap.Error(err))
			}
		}
	}
}

// Shutdown stops the audit worker after draining in-flight entries
func Shutdown() {
	if auditWorker == nil {
		return
	}
	auditWorker.cancel()
	auditWorker.wg.Wait()
}

// GetAuditContextFromGin extracts audit metadata from the request
func GetAuditContextFromGin(c *gin.Context) AuditContext {
	requestID, _ := c.Get("RequestID")
	id, _ := requestID.(string)
	return AuditContext{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		RequestID: id,
	}
}

// LogSubscriptionEvent queues one audit entry; drops it when the
// buffer is full rather than blocking the request path.
func LogSubscriptionEvent(auditCtx AuditContext, action, status, email string, vid int) {
	if auditWorker == nil {
		return
	}
	entry := AuditLog{
		Email:     observability.MaskEmail(email),
		VID:       vid,
		Action:    action,
		Status:    status,
		IPAddress: auditCtx.IPAddress,
		UserAgent: auditCtx.UserAgent,
		RequestID: auditCtx.RequestID,
		Timestamp: time.Now(),
	}
	select {
	case auditWorker.auditChan <- entry:
	default:
		logging.Logger.Warn("audit buffer full, dropping entry",
			zap.String("action", action))
	}
}
