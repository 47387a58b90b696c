package server

import (
	"quartermaster/internal/models"
	"quartermaster/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SessionResponse is returned by both sign-in endpoints.
type SessionResponse struct {
	Token    string      `json:"token"`
	ID       uint        `json:"id"`
	Email    string      `json:"email"`
	Role     models.Role `json:"role"`
	FullName string      `json:"full_name"`
}

func sessionResponse(res *service.AuthResult) SessionResponse {
	return SessionResponse{
		Token:    res.Token,
		ID:       res.User.ID,
		Email:    res.User.Email,
		Role:     res.User.Role,
		FullName: res.User.FullName,
	}
}

// SignIn handles POST /api/auth/signin
// @Summary Sign in
// @Description Authenticate with email and password and return a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.SignInInput true "Credentials"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/signin [post]
func (s *Server) SignIn(c *fiber.Ctx) error {
	var req service.SignInInput
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	res, err := s.authService.SignIn(c.UserContext(), req)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(sessionResponse(res))
}

// GoogleSignIn handles POST /api/auth/google-signin
// @Summary Identity-provider sign in
// @Description Sign in with a Google profile, creating the account on first use. Existing accounts must have been created through Google with the same google_id.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.GoogleSignInInput true "Profile"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /auth/google-signin [post]
func (s *Server) GoogleSignIn(c *fiber.Ctx) error {
	var req service.GoogleSignInInput
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	res, err := s.authService.GoogleSignIn(c.UserContext(), req)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(sessionResponse(res))
}

// SignOut handles POST /api/auth/signout
// @Summary Sign out
// @Description Revoke the current session token
// @Tags auth
// @Produce json
// @Success 200 {object} object{message=string}
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /auth/signout [post]
func (s *Server) SignOut(c *fiber.Ctx) error {
	if err := s.authService.SignOut(c.UserContext(), claimsFrom(c)); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Signed out"})
}

// GetMe handles GET /api/auth/me
// @Summary Current user
// @Tags auth
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /auth/me [get]
func (s *Server) GetMe(c *fiber.Ctx) error {
	user, err := s.authService.Me(c.UserContext(), principalFrom(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(user)
}
