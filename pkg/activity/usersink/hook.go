package usersink

import (
	"context"
	"errors"
	"maps"
	"strings"

	"github.com/goliatone/go-cnapp-dashboard/pkg/activity"
	"github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Sink is the go-users activity sink contract.
type Sink interface {
	Log(ctx context.Context, record types.ActivityRecord) error
}

// Hook forwards dashboard activity events into a go-users sink.
type Hook struct {
	Sink Sink
}

var _ activity.Hook = Hook{}

// Notify maps the event into an ActivityRecord. Events without a verb are skipped.
func (h Hook) Notify(ctx context.Context, evt activity.Event) error {
	if h.Sink == nil {
		return errors.New("usersink: sink is required")
	}
	evt = activity.NormalizeEvent(evt)
	if !evt.Valid() {
		return nil
	}
	return h.Sink.Log(ctx, recordFromEvent(evt))
}

func recordFromEvent(evt activity.Event) types.ActivityRecord {
	data := map[string]any{}
	if evt.Metadata != nil {
		data = maps.Clone(evt.Metadata)
	}
	if evt.DefinitionCode != "" {
		data["definition_code"] = evt.DefinitionCode
	}
	if len(evt.Recipients) > 0 {
		data["recipients"] = append([]string(nil), evt.Recipients...)
	}
	actorID := parseID(evt.ActorID)
	if actorID == uuid.Nil && evt.ActorID != "" {
		data["actor_ref"] = evt.ActorID
	}
	return types.ActivityRecord{
		ActorID:    actorID,
		UserID:     parseID(evt.UserID),
		TenantID:   parseID(evt.TenantID),
		Verb:       evt.Verb,
		ObjectType: evt.ObjectType,
		ObjectID:   evt.ObjectID,
		Channel:    evt.Channel,
		Data:       data,
		OccurredAt: evt.OccurredAt,
	}
}

// parseID returns uuid.Nil for identifiers that are not UUIDs.
func parseID(value string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil
	}
	return id
}
