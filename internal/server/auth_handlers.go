package server

import (
	"croctop/internal/middleware"
	"croctop/internal/service"

	"github.com/gofiber/fiber/v2"
)

type signupRequest struct {
	Firstname     string `json:"firstname"`
	Lastname      string `json:"lastname"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Birthday      string `json:"birthday"`
	Bio           string `json:"bio"`
	PictureAvatar string `json:"picture_avatar"`
}

// Signup handles POST /api/auth/signup
// @Summary User signup
// @Description Register a new user account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body signupRequest true "Signup request"
// @Success 201 {object} object{message=string,user=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/signup [post]
func (s *Server) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return bodyError(c)
	}

	user, err := s.authService.Signup(c.UserContext(), service.SignupInput{
		Firstname:     req.Firstname,
		Lastname:      req.Lastname,
		Username:      req.Username,
		Email:         req.Email,
		Password:      req.Password,
		Birthday:      req.Birthday,
		Bio:           req.Bio,
		PictureAvatar: req.PictureAvatar,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created",
		"user":    user,
	})
}

// Signin handles POST /api/auth/signin
// @Summary User signin
// @Description Authenticate by email or username and return an access/refresh token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,username=string,password=string} true "Signin credentials"
// @Success 200 {object} object{accessToken=string,refreshToken=string,user=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/signin [post]
func (s *Server) Signin(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return bodyError(c)
	}

	res, err := s.authService.Signin(c.UserContext(), service.SigninInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"accessToken":  res.AccessToken,
		"refreshToken": res.RefreshToken,
		"user":         res.User,
	})
}

// Token handles POST /api/auth/token
// @Summary Refresh access token
// @Description Exchange a refresh token for a new access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{token=string} true "Refresh token"
// @Success 200 {object} object{accessToken=string}
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /auth/token [post]
func (s *Server) Token(c *fiber.Ctx) error {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.BodyParser(&req); err != nil {
		return bodyError(c)
	}

	access, err := s.authService.Refresh(c.UserContext(), req.Token)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"accessToken": access})
}

// Protected handles GET /api/protected
// @Summary Echo the authenticated identity
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{message=string,user=models.Identity}
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /protected [get]
func (s *Server) Protected(c *fiber.Ctx) error {
	identity, _ := middleware.CurrentIdentity(c)
	return c.JSON(fiber.Map{
		"message": "This is a protected route",
		"user":    identity,
	})
}
