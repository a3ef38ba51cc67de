// Package dispatch is the single write path into the ledger: it validates an
// event, appends it, and projects it inside one transaction.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/event"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/projection"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/storage"
)

var tracer = otel.Tracer("github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/dispatch")

// ValidationError reports an event rejected before it reached the ledger.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a pre-append rejection.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Dispatcher appends events and applies their projections atomically. An
// event is never visible in the ledger without its projection, and vice
// versa.
type Dispatcher struct {
	store  storage.GameStore
	logger *slog.Logger
}

// New creates a dispatcher writing through the given store.
func New(store storage.GameStore, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{store: store, logger: logger}
}

// Dispatch validates evt, then appends and projects it in one transaction.
// It returns the stored event with its assigned identity. Rejected events
// never open a transaction.
func (d *Dispatcher) Dispatch(ctx context.Context, evt event.Event) (event.Event, error) {
	if d == nil || d.store == nil {
		return event.Event{}, fmt.Errorf("dispatcher is not configured")
	}
	if err := validate(evt); err != nil {
		return event.Event{}, err
	}

	var stored event.Event
	err := d.store.InTx(ctx, func(tx storage.GameStore) error {
		var txErr error
		stored, txErr = d.DispatchTx(ctx, tx, evt)
		return txErr
	})
	if err != nil {
		return event.Event{}, err
	}
	return stored, nil
}

// DispatchTx is Dispatch for callers already inside a transaction, so a
// service can atomically combine its own writes with the append+project
// pair.
func (d *Dispatcher) DispatchTx(ctx context.Context, tx storage.GameStore, evt event.Event) (event.Event, error) {
	if d == nil {
		return event.Event{}, fmt.Errorf("dispatcher is not configured")
	}
	if tx == nil {
		return event.Event{}, fmt.Errorf("transaction store is required")
	}

	ctx, span := tracer.Start(ctx, "dispatch.event", trace.WithAttributes(
		attribute.String("event.type", string(evt.Type)),
		attribute.String("world.id", evt.WorldID),
	))
	defer span.End()

	if err := validate(evt); err != nil {
		return event.Event{}, err
	}

	if evt.Type == event.TypeWorldCreated {
		// The ledger's world foreign key needs a row before the first
		// append; projection fills in the real fields right after.
		if err := tx.EnsureWorld(ctx, evt.WorldID, evt.Timestamp); err != nil {
			return event.Event{}, err
		}
	} else if _, err := tx.GetWorld(ctx, evt.WorldID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return event.Event{}, validationErrorf("world %s does not exist", evt.WorldID)
		}
		return event.Event{}, err
	}

	stored, err := tx.AppendEvent(ctx, evt)
	if err != nil {
		return event.Event{}, err
	}
	span.SetAttributes(attribute.String("event.id", stored.ID))

	if err := projection.New(tx).Apply(ctx, stored); err != nil {
		return event.Event{}, fmt.Errorf("project %s: %w", stored.Type, err)
	}

	d.logger.DebugContext(ctx, "event dispatched",
		"event_id", stored.ID,
		"event_type", string(stored.Type),
		"world_id", stored.WorldID,
	)
	return stored, nil
}

func validate(evt event.Event) error {
	if strings.TrimSpace(evt.WorldID) == "" {
		return validationErrorf("world id is required")
	}
	if strings.TrimSpace(string(evt.Type)) == "" {
		return validationErrorf("event type is required")
	}
	if strings.TrimSpace(evt.ID) != "" {
		return validationErrorf("event id is assigned by the ledger")
	}
	if evt.Type.IsCreation() {
		payload := strings.TrimSpace(string(evt.PayloadJSON))
		if payload == "" || payload == "{}" {
			return validationErrorf("%s requires a payload", evt.Type)
		}
	}
	return nil
}
