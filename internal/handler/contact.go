package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/daffodils/florist-api/internal/dto"
	"github.com/daffodils/florist-api/internal/middleware"
	"github.com/daffodils/florist-api/internal/service"
)

type ContactHandler struct {
	contacts *service.ContactService
}

func NewContactHandler(contacts *service.ContactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

func (h *ContactHandler) Submit(c *gin.Context) {
	var req dto.SubmitContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	contact, err := h.contacts.Submit(c.Request.Context(), req, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to submit your message.")
		return
	}
	respondMessage(c, http.StatusCreated,
		"Thank you for your message. We'll get back to you soon.",
		gin.H{"submissionId": contact.SubmissionID})
}

func (h *ContactHandler) List(c *gin.Context) {
	var req dto.ListContactsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	contacts, pagination, err := h.contacts.List(c.Request.Context(), req)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to fetch submissions.")
		return
	}

	resp := dto.ContactListResponse{
		Contacts:   make([]dto.ContactResponse, 0, len(contacts)),
		Pagination: pagination,
	}
	for i := range contacts {
		resp.Contacts = append(resp.Contacts, dto.ToContactResponse(&contacts[i]))
	}
	respondOK(c, http.StatusOK, resp)
}

func (h *ContactHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.UpdateContactStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	admin := middleware.GetAdmin(c)
	contact, err := h.contacts.UpdateStatus(c.Request.Context(), id, req, admin.ID)
	if err != nil {
		if errors.Is(err, service.ErrContactNotFound) {
			respondError(c, http.StatusNotFound, "Submission not found.")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to update submission.")
		return
	}
	respondMessage(c, http.StatusOK, "Submission updated successfully.", dto.ToContactResponse(contact))
}

func (h *ContactHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.contacts.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrContactNotFound) {
			respondError(c, http.StatusNotFound, "Submission not found.")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to delete submission.")
		return
	}
	respondMessage(c, http.StatusOK, "Submission deleted successfully.", nil)
}
