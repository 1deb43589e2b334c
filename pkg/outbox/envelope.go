package outbox

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// EnvelopeVersion is the newest envelope layout this build writes and reads.
const EnvelopeVersion = 1

var (
	ErrUnknownEventType   = errors.New("unknown outbox event type")
	ErrAggregateMismatch  = errors.New("event type does not belong to aggregate type")
	ErrMissingAggregateID = errors.New("aggregate id required")
	ErrEmptyEnvelopeData  = errors.New("envelope data is empty")
)

// ActorRef identifies who triggered the event. Guest checkouts carry no user.
type ActorRef struct {
	UserID *uuid.UUID `json:"userId,omitempty"`
	Role   string     `json:"role,omitempty"`
}

// PayloadEnvelope wraps every outbox payload. Consumers dedupe on EventID.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// DomainEvent is what services hand to Emit inside their transaction.
type DomainEvent struct {
	EventType     enums.OutboxEventType
	AggregateType enums.OutboxAggregateType
	AggregateID   uuid.UUID
	Actor         *ActorRef
	Data          any
	Version       int
	OccurredAt    time.Time
}

func (e DomainEvent) validate() error {
	if !e.EventType.IsValid() {
		return ErrUnknownEventType
	}
	if e.EventType.Aggregate() != e.AggregateType {
		return ErrAggregateMismatch
	}
	if e.AggregateID == uuid.Nil {
		return ErrMissingAggregateID
	}
	return nil
}

// Seal encodes the event data into a fresh envelope. A zero OccurredAt takes
// now; a zero Version takes EnvelopeVersion.
func (e DomainEvent) Seal(now time.Time) (PayloadEnvelope, error) {
	if err := e.validate(); err != nil {
		return PayloadEnvelope{}, err
	}
	data, err := json.Marshal(e.Data)
	if err != nil {
		return PayloadEnvelope{}, fmt.Errorf("encode %s data: %w", e.EventType, err)
	}
	occurred := e.OccurredAt
	if occurred.IsZero() {
		occurred = now
	}
	version := e.Version
	if version == 0 {
		version = EnvelopeVersion
	}
	return PayloadEnvelope{
		Version:    version,
		EventID:    uuid.NewString(),
		OccurredAt: occurred.UTC(),
		Actor:      e.Actor,
		Data:       data,
	}, nil
}

// DecodeEnvelope parses a stored payload and rejects layouts this build
// cannot read.
func DecodeEnvelope(raw []byte) (PayloadEnvelope, error) {
	var env PayloadEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return PayloadEnvelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Version < 1 || env.Version > EnvelopeVersion {
		return PayloadEnvelope{}, fmt.Errorf("unsupported envelope version %d", env.Version)
	}
	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return PayloadEnvelope{}, ErrEmptyEnvelopeData
	}
	return env, nil
}
