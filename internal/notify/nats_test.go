package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return nil
}

func TestNATSPublisher_Publish(t *testing.T) {
	conn := &fakeConn{}
	pub := NewNATSPublisher(conn, "prod.")

	change := Change{
		Subject:    SubjectSubscriptionChanged,
		EventID:    "evt_1",
		EventType:  "customer.subscription.deleted",
		ObjectID:   "sub_1",
		Status:     "cancelled",
		OccurredAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, pub.Publish(context.Background(), change))

	require.Len(t, conn.subjects, 1)
	assert.Equal(t, "prod.billing.subscription.changed", conn.subjects[0])

	var got map[string]any
	require.NoError(t, json.Unmarshal(conn.payloads[0], &got))
	assert.Equal(t, "sub_1", got["object_id"])
	assert.Equal(t, "cancelled", got["status"])
	assert.NotContains(t, got, "Subject")
}

func TestNATSPublisher_Errors(t *testing.T) {
	pub := NewNATSPublisher(&fakeConn{err: errors.New("nats: connection closed")}, "")
	err := pub.Publish(context.Background(), Change{Subject: SubjectPaymentRecorded})
	assert.ErrorContains(t, err, "connection closed")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = NewNATSPublisher(&fakeConn{}, "").Publish(ctx, Change{Subject: SubjectPaymentRecorded})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), Change{}))
}
