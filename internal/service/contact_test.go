package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daffodils/florist-api/internal/dto"
	"github.com/daffodils/florist-api/internal/mailer"
	"github.com/daffodils/florist-api/internal/model"
	"github.com/daffodils/florist-api/internal/repository"
)

type recordingMailer struct {
	sent []mailer.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg mailer.Message) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.sent = append(m.sent, msg)
	return "msg-123", nil
}

func newContactTestEnv(t *testing.T, mail *recordingMailer) (*ContactService, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	return NewContactService(store.Contacts(), mail, testLogger()), store
}

func submitRequest(inquiry string) dto.SubmitContactRequest {
	return dto.SubmitContactRequest{
		Name:        "Morag Stewart",
		Email:       "morag@example.com",
		Subject:     "Wedding flowers",
		Message:     "Looking for table arrangements for 80 guests.",
		InquiryType: inquiry,
	}
}

func TestContactService_Submit(t *testing.T) {
	mail := &recordingMailer{}
	svc, store := newContactTestEnv(t, mail)

	contact, err := svc.Submit(context.Background(), submitRequest("wedding"), "203.0.113.7", "test-agent")
	require.NoError(t, err)

	assert.Equal(t, model.ContactNew, contact.Status)
	assert.Equal(t, model.InquiryWedding, contact.InquiryType)
	assert.Equal(t, "medium", contact.Priority)
	assert.Regexp(t, `^sub_\d+_\d{4}$`, contact.SubmissionID)
	assert.Equal(t, "203.0.113.7", contact.IPAddress)

	require.Len(t, mail.sent, 1)
	assert.Equal(t, "morag@example.com", mail.sent[0].ReplyTo)

	stored, err := store.GetContactByID(context.Background(), contact.ID)
	require.NoError(t, err)
	assert.True(t, stored.EmailSent)
	assert.Equal(t, "msg-123", stored.EmailMsgID)
	assert.NotNil(t, stored.EmailSentAt)
}

func TestContactService_Submit_DefaultInquiry(t *testing.T) {
	svc, _ := newContactTestEnv(t, &recordingMailer{})

	contact, err := svc.Submit(context.Background(), submitRequest(""), "", "")
	require.NoError(t, err)
	assert.Equal(t, model.InquiryGeneral, contact.InquiryType)
	assert.Equal(t, "normal", contact.Priority)
}

func TestContactService_Submit_ComplaintIsHighPriority(t *testing.T) {
	svc, _ := newContactTestEnv(t, &recordingMailer{})

	contact, err := svc.Submit(context.Background(), submitRequest("complaint"), "", "")
	require.NoError(t, err)
	assert.Equal(t, "high", contact.Priority)
}

func TestContactService_Submit_MailFailureStillAccepts(t *testing.T) {
	mail := &recordingMailer{err: errors.New("smtp down")}
	svc, store := newContactTestEnv(t, mail)

	contact, err := svc.Submit(context.Background(), submitRequest("general"), "", "")
	require.NoError(t, err)

	stored, err := store.GetContactByID(context.Background(), contact.ID)
	require.NoError(t, err)
	assert.False(t, stored.EmailSent)
	assert.Empty(t, stored.EmailMsgID)
}

func TestContactService_UpdateStatus(t *testing.T) {
	svc, _ := newContactTestEnv(t, &recordingMailer{})
	contact, err := svc.Submit(context.Background(), submitRequest("general"), "", "")
	require.NoError(t, err)

	adminID := uuid.New()
	updated, err := svc.UpdateStatus(context.Background(), contact.ID, dto.UpdateContactStatusRequest{
		Status:     "resolved",
		AdminNotes: "called the customer",
	}, adminID)
	require.NoError(t, err)

	assert.Equal(t, model.ContactResolved, updated.Status)
	assert.Equal(t, "called the customer", updated.AdminNotes)
	require.NotNil(t, updated.RespondedBy)
	assert.Equal(t, adminID, *updated.RespondedBy)
}

func TestContactService_UpdateStatus_NotFound(t *testing.T) {
	svc, _ := newContactTestEnv(t, &recordingMailer{})
	_, err := svc.UpdateStatus(context.Background(), uuid.New(), dto.UpdateContactStatusRequest{Status: "read"}, uuid.New())
	assert.ErrorIs(t, err, ErrContactNotFound)
}

func TestContactService_ListAndDelete(t *testing.T) {
	svc, _ := newContactTestEnv(t, &recordingMailer{})
	first, err := svc.Submit(context.Background(), submitRequest("wedding"), "", "")
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), submitRequest("general"), "", "")
	require.NoError(t, err)

	contacts, pagination, err := svc.List(context.Background(), dto.ListContactsRequest{
		Page: 1, Limit: 20, InquiryType: "wedding",
	})
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, 1, pagination.TotalOrders)

	require.NoError(t, svc.Delete(context.Background(), first.ID))
	assert.ErrorIs(t, svc.Delete(context.Background(), first.ID), ErrContactNotFound)
}
