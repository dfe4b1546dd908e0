package kafka

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	BookingID string `json:"booking_id"`
	Approved  bool   `json:"approved"`
}

func TestCloudEvent_RoundTripThroughWire(t *testing.T) {
	ce, err := NewCloudEvent("service-shareit", "booking.approved", samplePayload{BookingID: "b-1", Approved: true})
	require.NoError(t, err)
	ce = ce.WithSubject("b-1")

	assert.Equal(t, "1.0", ce.SpecVersion)
	assert.NotEmpty(t, ce.ID)
	assert.False(t, ce.Time.IsZero())

	raw, err := json.Marshal(ce)
	require.NoError(t, err)

	parsed, err := ParseCloudEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, "booking.approved", parsed.Type)
	assert.Equal(t, "b-1", parsed.Subject)

	var payload samplePayload
	require.NoError(t, parsed.ParseData(&payload))
	assert.Equal(t, samplePayload{BookingID: "b-1", Approved: true}, payload)
}

func TestParseCloudEvent_Rejects(t *testing.T) {
	_, err := ParseCloudEvent([]byte("not json"))
	assert.Error(t, err)

	_, err = ParseCloudEvent([]byte(`{"id":"x"}`))
	assert.Error(t, err)
}

func TestCloudEvent_ParseDataWithoutPayload(t *testing.T) {
	var v samplePayload
	assert.Error(t, CloudEvent{ID: "x", Type: "t"}.ParseData(&v))
}
