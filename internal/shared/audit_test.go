package shared

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOccurredAtMapsZeroTimeToNull(t *testing.T) {
	require.Nil(t, occurredAt(time.Time{}))

	at := time.Date(2024, 7, 15, 9, 0, 0, 0, time.UTC)
	require.Equal(t, at, occurredAt(at))
}

func TestRecordRequiresActionEntityAndID(t *testing.T) {
	logger := NewAuditLogger(nil)

	err := logger.Record(context.Background(), AuditLog{Action: "GRN_APPROVE"})
	require.Error(t, err)

	err = logger.Record(context.Background(), AuditLog{Entity: "grn", EntityID: "GRN-1"})
	require.Error(t, err)
}
