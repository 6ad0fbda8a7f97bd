package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeNotification(t *testing.T) {
	payload := []byte(`{"type":"booking_created","email":"jdoe@example.com","name":"John Doe","booking_reference":"FLYAB12CD34","flight_number":"FA101"}`)

	event, err := decodeNotification(payload)

	assert.NoError(t, err)
	assert.Equal(t, EventBookingCreated, event.Type)
	assert.Equal(t, "jdoe@example.com", event.Email)
	assert.Equal(t, "FLYAB12CD34", event.BookingReference)
}

func TestDecodeNotification_MalformedPayload(t *testing.T) {
	_, err := decodeNotification([]byte("not json"))

	assert.Error(t, err)
}
