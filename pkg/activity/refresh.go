package activity

import (
	"context"

	dashboard "github.com/goliatone/go-cnapp-dashboard/components/dashboard"
)

const widgetObjectType = "dashboard.widget"

// RefreshHook turns committed widget changes into activity events.
type RefreshHook struct {
	Emitter *Emitter
}

var _ dashboard.RefreshHook = RefreshHook{}

// WidgetUpdated satisfies dashboard.RefreshHook.
func (h RefreshHook) WidgetUpdated(ctx context.Context, event dashboard.WidgetEvent) error {
	if !h.Emitter.Enabled() {
		return nil
	}
	return h.Emitter.Emit(ctx, EventFromWidget(event))
}

// EventFromWidget maps a widget event to an activity event. Category
// creation events use the category as the object.
func EventFromWidget(event dashboard.WidgetEvent) Event {
	evt := Event{
		Verb:       "dashboard.widget." + event.Reason,
		ActorID:    event.Actor.ActorID,
		UserID:     event.Actor.UserID,
		TenantID:   event.Actor.TenantID,
		ObjectType: widgetObjectType,
		ObjectID:   event.WidgetID,
		Metadata: map[string]any{
			"category_id": event.CategoryID,
			"version":     event.Version,
		},
	}
	if event.Reason == dashboard.ReasonCreate {
		evt.Verb = "dashboard.category.create"
		evt.ObjectType = "dashboard.category"
		evt.ObjectID = event.CategoryID
	}
	return evt
}
