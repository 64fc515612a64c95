package leave

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaveRequest_TransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    LeaveRequestStatus
		to      LeaveRequestStatus
		wantErr bool
	}{
		{"approve pending", LeaveRequestStatusPending, LeaveRequestStatusApproved, false},
		{"reject pending", LeaveRequestStatusPending, LeaveRequestStatusRejected, false},
		{"cancel pending", LeaveRequestStatusPending, LeaveRequestStatusCancelled, false},
		{"back to pending", LeaveRequestStatusPending, LeaveRequestStatusPending, true},
		{"unknown target", LeaveRequestStatusPending, LeaveRequestStatus("ARCHIVED"), true},
		{"reject approved", LeaveRequestStatusApproved, LeaveRequestStatusRejected, true},
		{"cancel approved", LeaveRequestStatusApproved, LeaveRequestStatusCancelled, true},
		{"approve rejected", LeaveRequestStatusRejected, LeaveRequestStatusApproved, true},
		{"approve cancelled", LeaveRequestStatusCancelled, LeaveRequestStatusApproved, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := LeaveRequest{Status: tt.from}

			err := r.TransitionTo(tt.to)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidStateTransition)
				assert.Equal(t, tt.from, r.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, r.Status)
			assert.False(t, r.IsPending())
		})
	}
}
