package fanout

import (
	"errors"
	"fmt"
	"time"

	"github.com/sentinela-io/sentinela/server/logger"
	"github.com/sentinela-io/sentinela/server/models"
	"github.com/sentinela-io/sentinela/server/work"
)

// DELIVER_PANIC_SMS_HANDLER is the job handler name for async SMS
// delivery of a panic alert notification.
const DELIVER_PANIC_SMS_HANDLER = "deliver_panic_sms"

// ErrFanOutFailed is returned when the contact lookup or the
// notification batch insert fails; the caller may retry the whole
// trigger, at the cost of duplicate notifications for recipients
// of an earlier successful call.
var ErrFanOutFailed = errors.New("panic alert fan-out failed")

var logg = logger.NewLogger()

// RealtimePublisher pushes an event to a recipient's live sessions,
// if any. Implementations must treat "no session" as a no-op.
type RealtimePublisher interface {
	Publish(recipientID uint, event interface{})
}

// DeliveryQueue enqueues async delivery jobs e.g. SMS sends.
type DeliveryQueue interface {
	Perform(job work.JobParams) error
}

// PanicAlertEvent is the realtime payload pushed to each connected
// emergency contact of the triggering user.
type PanicAlertEvent struct {
	Type       string    `json:"type"`
	SenderID   uint      `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Message    string    `json:"message"`
	SentAt     time.Time `json:"sent_at"`
}

// Engine materializes one notification per emergency contact of a
// triggering user & pushes best-effort realtime/SMS deliveries.
type Engine struct {
	publisher RealtimePublisher
	queue     DeliveryQueue
}

func NewEngine(publisher RealtimePublisher, queue DeliveryQueue) *Engine {
	return &Engine{publisher: publisher, queue: queue}
}

// TriggerPanic resolves the sender's emergency-contact set & persists
// one PANIC_ALERT notification per contact in a single atomic batch.
// Only the lookup & the batch insert can fail the operation; realtime
// and SMS delivery are best-effort and never surface to the caller.
// Calls are not idempotent - triggering twice notifies everyone twice.
func (engine *Engine) TriggerPanic(senderID uint) error {
	sender, err := models.FindUserBy("id", senderID)
	if err != nil {
		return fmt.Errorf("%w: resolving sender: %v", ErrFanOutFailed, err)
	}

	contacts, err := models.EmergencyContactsFor(senderID)
	if err != nil {
		return fmt.Errorf("%w: resolving contacts: %v", ErrFanOutFailed, err)
	}

	if len(contacts) == 0 {
		logg.Infof("panic alert from user=%v with no emergency contacts", senderID)
		return nil
	}

	message := panicAlertMessage(sender)

	notifications := make([]models.Notification, 0, len(contacts))
	for _, contact := range contacts {
		notifications = append(notifications, models.Notification{
			RecipientID: contact.ID,
			SenderID:    senderID,
			Type:        models.PANIC_ALERT_NOTIFICATION,
			Message:     message,
			IsRead:      false,
		})
	}

	if err := models.CreateNotificationBatch(notifications); err != nil {
		return fmt.Errorf("%w: persisting notifications: %v", ErrFanOutFailed, err)
	}

	event := PanicAlertEvent{
		Type:       models.PANIC_ALERT_NOTIFICATION,
		SenderID:   senderID,
		SenderName: sender.Name,
		Message:    message,
		SentAt:     time.Now(),
	}

	for _, contact := range contacts {
		engine.publisher.Publish(contact.ID, event)
	}

	engine.enqueueSmsDeliveries(notifications, contacts, message)

	logg.Infof("panic alert from user=%v fanned out to %v contact(s)", senderID, len(contacts))
	return nil
}

// enqueueSmsDeliveries schedules an SMS per contact that opted in via
// the notify flag. Enqueue failures are logged, never surfaced - the
// persisted notification row remains the source of truth.
func (engine *Engine) enqueueSmsDeliveries(notifications []models.Notification, contacts []models.ContactInfo, message string) {
	if engine.queue == nil {
		return
	}

	phoneByContactID := make(map[uint]string, len(contacts))
	for _, contact := range contacts {
		if contact.Notify && contact.Phone != "" {
			phoneByContactID[contact.ID] = contact.Phone
		}
	}

	for _, notification := range notifications {
		phone, ok := phoneByContactID[notification.RecipientID]
		if !ok {
			continue
		}

		err := engine.queue.Perform(work.JobParams{
			Name:    fmt.Sprintf("panic_sms_%v", notification.ID),
			Handler: DELIVER_PANIC_SMS_HANDLER,
			Unique:  true,
			Args: map[string]interface{}{
				"phone":   phone,
				"message": message,
			},
		})
		if err != nil {
			logg.Errorf("failed to enqueue sms delivery for notification=%v: %v", notification.ID, err)
		}
	}
}

func panicAlertMessage(sender *models.User) string {
	senderName := sender.Name
	if senderName == "" {
		senderName = sender.Email
	}

	return fmt.Sprintf(
		"%v has triggered a panic alert. Please reach out to make sure they're okay.",
		senderName,
	)
}
