package outbox

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

func TestSealDefaultsVersionAndTime(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("x", 3600))
	env, err := DomainEvent{
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Data:          map[string]string{"orderNumber": "ORD-1"},
	}.Seal(now)
	require.NoError(t, err)

	assert.Equal(t, EnvelopeVersion, env.Version)
	assert.True(t, env.OccurredAt.Equal(now))
	assert.Equal(t, time.UTC, env.OccurredAt.Location())
	assert.NotEmpty(t, env.EventID)
	assert.JSONEq(t, `{"orderNumber":"ORD-1"}`, string(env.Data))
}

func TestSealRejectsInvalidEvents(t *testing.T) {
	_, err := DomainEvent{EventType: "nope", AggregateID: uuid.New()}.Seal(time.Now())
	assert.ErrorIs(t, err, ErrUnknownEventType)

	_, err = DomainEvent{EventType: enums.EventOrderCreated, AggregateType: enums.AggregateOrder}.Seal(time.Now())
	assert.ErrorIs(t, err, ErrMissingAggregateID)

	_, err = DomainEvent{
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateWholesaleInquiry,
		AggregateID:   uuid.New(),
	}.Seal(time.Now())
	assert.ErrorIs(t, err, ErrAggregateMismatch)
}

func TestDecodeEnvelope(t *testing.T) {
	good, err := json.Marshal(PayloadEnvelope{Version: 1, EventID: "e1", Data: json.RawMessage(`{"a":1}`)})
	require.NoError(t, err)

	env, err := DecodeEnvelope(good)
	require.NoError(t, err)
	assert.Equal(t, "e1", env.EventID)

	cases := map[string]string{
		"broken json":    `{"data":`,
		"future version": `{"version":2,"data":{}}`,
		"zero version":   `{"version":0,"data":{}}`,
		"null data":      `{"version":1,"data":null}`,
		"missing data":   `{"version":1}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeEnvelope([]byte(raw))
			assert.Error(t, err)
		})
	}
}
