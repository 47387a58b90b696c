package server

import (
	"quartermaster/internal/models"
	"quartermaster/internal/service"

	"github.com/gofiber/fiber/v2"
)

// StatusUpdateRequest is the body of PUT /api/requests/:id/status.
type StatusUpdateRequest struct {
	Status          models.RequestStatus `json:"status"`
	RejectionReason string               `json:"rejection_reason"`
}

// ListRequests handles GET /api/requests
// @Summary List all requests
// @Description Admin queue with resource, requester and reviewer joined
// @Tags requests
// @Produce json
// @Param status query string false "pending, approved or rejected"
// @Success 200 {array} models.Request
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /requests [get]
func (s *Server) ListRequests(c *fiber.Ctx) error {
	requests, err := s.ledgerService.ListAll(c.UserContext(), principalFrom(c), c.Query("status"))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(requests)
}

// GetMyRequests handles GET /api/requests/my-requests
// @Summary List my requests
// @Tags requests
// @Produce json
// @Success 200 {array} models.Request
// @Security BearerAuth
// @Router /requests/my-requests [get]
func (s *Server) GetMyRequests(c *fiber.Ctx) error {
	requests, err := s.ledgerService.ListMine(c.UserContext(), principalFrom(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(requests)
}

// GetRequestStats handles GET /api/requests/stats
// @Summary Dashboard counters
// @Tags requests
// @Produce json
// @Success 200 {object} models.RequestStats
// @Security BearerAuth
// @Router /requests/stats [get]
func (s *Server) GetRequestStats(c *fiber.Ctx) error {
	stats, err := s.ledgerService.Stats(c.UserContext(), principalFrom(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(stats)
}

// CreateRequest handles POST /api/requests
// @Summary Request a resource
// @Description Creates a pending request; stock is only debited on approval
// @Tags requests
// @Accept json
// @Produce json
// @Param request body service.CreateRequestInput true "Request"
// @Success 201 {object} models.Request
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /requests [post]
func (s *Server) CreateRequest(c *fiber.Ctx) error {
	var req service.CreateRequestInput
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}
	created, err := s.ledgerService.Create(c.UserContext(), principalFrom(c), req)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// SetRequestStatus handles PUT /api/requests/:id/status
// @Summary Approve or reject a request
// @Description Approval debits stock atomically; a request can only be reviewed once
// @Tags requests
// @Accept json
// @Produce json
// @Param id path int true "Request ID"
// @Param request body StatusUpdateRequest true "Review"
// @Success 200 {object} models.Request
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /requests/{id}/status [put]
func (s *Server) SetRequestStatus(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req StatusUpdateRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}
	updated, err := s.approvalService.SetStatus(c.UserContext(), principalFrom(c), service.SetStatusInput{
		RequestID:       id,
		Status:          req.Status,
		RejectionReason: req.RejectionReason,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(updated)
}
