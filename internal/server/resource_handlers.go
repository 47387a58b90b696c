package server

import (
	"quartermaster/internal/models"
	"quartermaster/internal/repository"
	"quartermaster/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListResources handles GET /api/resources
// @Summary List resources
// @Description Newest first, optionally filtered by a search term or category
// @Tags resources
// @Produce json
// @Param search query string false "Case-insensitive match on name or description"
// @Param category query string false "Exact category"
// @Success 200 {array} models.Resource
// @Router /resources [get]
func (s *Server) ListResources(c *fiber.Ctx) error {
	resources, err := s.catalogService.List(c.UserContext(), repository.ResourceFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(resources)
}

// GetResourceCategories handles GET /api/resources/categories
// @Summary List categories
// @Tags resources
// @Produce json
// @Success 200 {array} string
// @Router /resources/categories [get]
func (s *Server) GetResourceCategories(c *fiber.Ctx) error {
	categories, err := s.catalogService.Categories(c.UserContext())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(categories)
}

// GetResource handles GET /api/resources/:id
// @Summary Get a resource
// @Tags resources
// @Produce json
// @Param id path int true "Resource ID"
// @Success 200 {object} models.Resource
// @Failure 404 {object} models.ErrorResponse
// @Router /resources/{id} [get]
func (s *Server) GetResource(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	resource, err := s.catalogService.Get(c.UserContext(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(resource)
}

// CreateResource handles POST /api/resources
// @Summary Create a resource
// @Tags resources
// @Accept json
// @Produce json
// @Param request body service.ResourceInput true "Resource"
// @Success 201 {object} models.Resource
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /resources [post]
func (s *Server) CreateResource(c *fiber.Ctx) error {
	var req service.ResourceInput
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}
	resource, err := s.catalogService.Create(c.UserContext(), principalFrom(c), req)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resource)
}

// UpdateResource handles PUT /api/resources/:id
// @Summary Replace a resource
// @Tags resources
// @Accept json
// @Produce json
// @Param id path int true "Resource ID"
// @Param request body service.ResourceInput true "Resource"
// @Success 200 {object} models.Resource
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /resources/{id} [put]
func (s *Server) UpdateResource(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.ResourceInput
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}
	resource, err := s.catalogService.Update(c.UserContext(), principalFrom(c), id, req)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(resource)
}

// DeleteResource handles DELETE /api/resources/:id
// @Summary Delete a resource
// @Tags resources
// @Produce json
// @Param id path int true "Resource ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /resources/{id} [delete]
func (s *Server) DeleteResource(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.catalogService.Delete(c.UserContext(), principalFrom(c), id); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Resource deleted successfully"})
}
