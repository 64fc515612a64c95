package email

import (
	"errors"
	"net/smtp"
	"testing"

	"github.com/cmlabs-hris/hris-leave-go/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, cfg config.SMTPConfig, send sendFunc) *emailServiceImpl {
	t.Helper()
	svc, err := NewEmailService(cfg)
	require.NoError(t, err)
	impl := svc.(*emailServiceImpl)
	impl.send = send
	impl.backoff = 0
	return impl
}

func TestEmailService_SkipsWithoutHost(t *testing.T) {
	calls := 0
	svc := newTestService(t, config.SMTPConfig{}, func(string, smtp.Auth, string, []string, []byte) error {
		calls++
		return nil
	})

	require.NoError(t, svc.SendLeaveUpdate("ana@example.com", "Leave submitted", LeaveUpdateData{}))
	assert.Zero(t, calls)
}

func TestEmailService_SendLeaveUpdate(t *testing.T) {
	var gotAddr string
	var gotTo []string
	var gotMsg string
	svc := newTestService(t, config.SMTPConfig{Host: "smtp.local", Port: 2525, From: "hr@example.com", FromName: "HR"},
		func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			gotAddr, gotTo, gotMsg = addr, to, string(msg)
			assert.Nil(t, a)
			return nil
		})

	err := svc.SendLeaveUpdate("ana@example.com", "Leave approved", LeaveUpdateData{
		RecipientName: "Ana",
		Headline:      "Your leave was approved",
		EmployeeName:  "Ana",
		LeaveType:     "Annual",
		StartDate:     "2025-04-07",
		EndDate:       "2025-04-09",
		TotalDays:     "3.0",
		Status:        "APPROVED",
		Comment:       "Enjoy <3",
	})
	require.NoError(t, err)

	assert.Equal(t, "smtp.local:2525", gotAddr)
	assert.Equal(t, []string{"ana@example.com"}, gotTo)
	assert.Contains(t, gotMsg, "Subject: Leave approved\r\n")
	assert.Contains(t, gotMsg, "From: HR <hr@example.com>\r\n")
	assert.Contains(t, gotMsg, "2025-04-07 to 2025-04-09")
	assert.Contains(t, gotMsg, "Enjoy &lt;3")
	assert.NotContains(t, gotMsg, "Reason")
}

func TestEmailService_RetriesThenFails(t *testing.T) {
	calls := 0
	svc := newTestService(t, config.SMTPConfig{Host: "smtp.local", Port: 25}, func(string, smtp.Auth, string, []string, []byte) error {
		calls++
		return errors.New("connection refused")
	})

	err := svc.SendLeaveUpdate("ana@example.com", "x", LeaveUpdateData{})
	require.Error(t, err)
	assert.Equal(t, maxRetries, calls)
	assert.Contains(t, err.Error(), "connection refused")
}
