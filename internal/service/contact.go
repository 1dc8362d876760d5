package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/daffodils/florist-api/internal/dto"
	"github.com/daffodils/florist-api/internal/mailer"
	"github.com/daffodils/florist-api/internal/model"
	"github.com/daffodils/florist-api/internal/repository"
)

var ErrContactNotFound = errors.New("contact submission not found")

type ContactService struct {
	contacts repository.ContactRepository
	mail     mailer.Mailer
	log      *slog.Logger
}

func NewContactService(contacts repository.ContactRepository, mail mailer.Mailer, log *slog.Logger) *ContactService {
	return &ContactService{contacts: contacts, mail: mail, log: log}
}

// Submit stores the submission first and sends the notification email after.
// A failed send is recorded on the submission, never surfaced to the caller;
// the form must accept the message even when mail is down.
func (s *ContactService) Submit(ctx context.Context, req dto.SubmitContactRequest, ip, userAgent string) (*model.Contact, error) {
	inquiry := model.InquiryGeneral
	if req.InquiryType != "" {
		inquiry = model.InquiryType(req.InquiryType)
	}
	contact := &model.Contact{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Subject:      req.Subject,
		Message:      req.Message,
		InquiryType:  inquiry,
		Status:       model.ContactNew,
		Priority:     contactPriority(inquiry),
		IPAddress:    ip,
		UserAgent:    userAgent,
		SubmissionID: generateSubmissionID(),
	}
	if err := s.contacts.Create(ctx, contact); err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}

	msg := mailer.Message{
		Subject: fmt.Sprintf("New %s inquiry from %s", inquiry, contact.Name),
		Body: fmt.Sprintf("Name: %s\nEmail: %s\nPhone: %s\nSubject: %s\n\n%s\n\nSubmission: %s",
			contact.Name, contact.Email, contact.Phone, contact.Subject, contact.Message, contact.SubmissionID),
		ReplyTo: contact.Email,
	}
	msgID, err := s.mail.Send(ctx, msg)
	if err != nil {
		s.log.Error("contact notification email failed", "submission_id", contact.SubmissionID, "error", err)
		return contact, nil
	}

	now := time.Now().UTC()
	contact.EmailSent = true
	contact.EmailSentAt = &now
	contact.EmailMsgID = msgID
	if err := s.contacts.Update(ctx, contact); err != nil {
		s.log.Warn("record email delivery failed", "submission_id", contact.SubmissionID, "error", err)
	}
	return contact, nil
}

func (s *ContactService) List(ctx context.Context, req dto.ListContactsRequest) ([]model.Contact, dto.OrderPagination, error) {
	filter := repository.ContactFilter{
		Status:      req.Status,
		InquiryType: req.InquiryType,
		Limit:       req.Limit,
		Offset:      (req.Page - 1) * req.Limit,
	}
	contacts, total, err := s.contacts.List(ctx, filter)
	if err != nil {
		return nil, dto.OrderPagination{}, fmt.Errorf("list contacts: %w", err)
	}
	return contacts, dto.NewPagination(req.Page, req.Limit, total), nil
}

func (s *ContactService) UpdateStatus(ctx context.Context, id uuid.UUID, req dto.UpdateContactStatusRequest, adminID uuid.UUID) (*model.Contact, error) {
	contact, err := s.contacts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get contact: %w", err)
	}
	if contact == nil {
		return nil, ErrContactNotFound
	}

	contact.Status = model.ContactStatus(req.Status)
	if req.AdminNotes != "" {
		contact.AdminNotes = req.AdminNotes
	}
	contact.RespondedBy = &adminID
	if err := s.contacts.Update(ctx, contact); err != nil {
		return nil, fmt.Errorf("update contact: %w", err)
	}
	return contact, nil
}

func (s *ContactService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.contacts.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrContactNotFound
	}
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	return nil
}

// Complaints and wedding inquiries are worked first.
func contactPriority(inquiry model.InquiryType) string {
	switch inquiry {
	case model.InquiryComplaint:
		return "high"
	case model.InquiryWedding, model.InquiryCorporate:
		return "medium"
	default:
		return "normal"
	}
}

func generateSubmissionID() string {
	return fmt.Sprintf("sub_%d_%04d", time.Now().UnixMilli(), rand.IntN(10000))
}
