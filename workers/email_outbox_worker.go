// workers/email_outbox_worker.go
package workers

import (
	"context"
	"log"
	"time"

	"auracoins-server/models"
	"auracoins-server/services"

	"gorm.io/gorm"
)

// EmailOutboxWorker drains the email_notifications outbox. Rows are
// written by the redemption flow; this worker owns delivery and retries.
// A terminally failed row never reaches back into the redemption that
// produced it.
type EmailOutboxWorker struct {
	db          *gorm.DB
	emails      *services.EmailService
	interval    time.Duration
	maxAttempts int
	batchSize   int
}

func NewEmailOutboxWorker(db *gorm.DB, emails *services.EmailService) *EmailOutboxWorker {
	return &EmailOutboxWorker{
		db:          db,
		emails:      emails,
		interval:    15 * time.Second,
		maxAttempts: 5,
		batchSize:   20,
	}
}

func (w *EmailOutboxWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Email Outbox Worker…")
	go w.run(ctx)
}

func (w *EmailOutboxWorker) run(ctx context.Context) {
	// Drain anything left over from a previous run before ticking.
	w.ProcessPending(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.ProcessPending(ctx)
		case <-ctx.Done():
			log.Println("⏹️ Email Outbox Worker stopped")
			return
		}
	}
}

// ProcessPending sends one batch of pending notifications, oldest first.
func (w *EmailOutboxWorker) ProcessPending(ctx context.Context) {
	var pending []models.EmailNotification
	err := w.db.Where("status = ?", models.NotificationPending).
		Order("created_at ASC").
		Limit(w.batchSize).
		Find(&pending).Error
	if err != nil {
		log.Printf("[OUTBOX] ❌ Failed to fetch pending notifications: %v", err)
		return
	}
	if len(pending) == 0 {
		return
	}

	log.Printf("[OUTBOX] 📧 Processing %d pending notification(s)…", len(pending))

	for i := range pending {
		if ctx.Err() != nil {
			return
		}
		w.deliver(&pending[i])
	}
}

func (w *EmailOutboxWorker) deliver(n *models.EmailNotification) {
	n.Attempts++

	messageID, err := w.emails.Send(n.ToAddress, n.Subject, n.HTMLBody)
	if err != nil {
		msg := err.Error()
		n.LastError = &msg
		if n.Attempts >= w.maxAttempts {
			n.Status = models.NotificationFailed
			log.Printf("[OUTBOX] ❌ Notification %s permanently failed after %d attempts: %v",
				n.ID, n.Attempts, err)
		} else {
			log.Printf("[OUTBOX] ⚠️ Notification %s attempt %d failed, will retry: %v",
				n.ID, n.Attempts, err)
		}
	} else {
		now := time.Now()
		n.Status = models.NotificationSent
		n.ProviderMessageID = &messageID
		n.SentAt = &now
		n.LastError = nil
		log.Printf("[OUTBOX] ✅ Notification %s sent (provider id %s)", n.ID, messageID)
	}

	if err := w.db.Save(n).Error; err != nil {
		log.Printf("[OUTBOX] ❌ Failed to persist notification %s state: %v", n.ID, err)
	}
}
