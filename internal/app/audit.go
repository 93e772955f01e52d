package app

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/spendario/spendario/internal/event_bus"
	"github.com/spendario/spendario/pkg/user"
)

// RegisterAuditSubscribers attaches log-only subscribers for every domain
// event, so each ledger and calendar mutation leaves an audit trail.
func RegisterAuditSubscribers(bus *event_bus.EventBus) {
	event_bus.SubscribeTyped(bus, event_bus.ExpenseRecordedEvent, func(e event_bus.EventT[event_bus.ExpenseRecorded]) error {
		log.WithFields(log.Fields{
			"user":     auditUserId(e.Context()),
			"amount":   e.Data.Amount.StringFixed(2),
			"category": e.Data.Category,
		}).Info("Expense recorded")
		return nil
	})

	event_bus.SubscribeTyped(bus, event_bus.CalendarEventCreatedEvent, func(e event_bus.EventT[event_bus.CalendarEventChanged]) error {
		logCalendarChange(e, "Calendar event created")
		return nil
	})

	event_bus.SubscribeTyped(bus, event_bus.CalendarEventUpdatedEvent, func(e event_bus.EventT[event_bus.CalendarEventChanged]) error {
		logCalendarChange(e, "Calendar event updated")
		return nil
	})

	event_bus.SubscribeTyped(bus, event_bus.CalendarEventDeletedEvent, func(e event_bus.EventT[event_bus.CalendarEventChanged]) error {
		logCalendarChange(e, "Calendar event deleted")
		return nil
	})
}

func logCalendarChange(e event_bus.EventT[event_bus.CalendarEventChanged], message string) {
	log.WithFields(log.Fields{
		"user":    auditUserId(e.Context()),
		"eventId": e.Data.ID,
		"summary": e.Data.Summary,
		"start":   e.Data.Start,
	}).Info(message)
}

func auditUserId(ctx context.Context) int64 {
	id, err := user.CurrentId(ctx)
	if err != nil {
		return 0
	}
	return id
}
