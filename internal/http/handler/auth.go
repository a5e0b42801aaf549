package handler

import (
	"github.com/gofiber/fiber/v2"

	"crmapi/internal/service"
)

// Register creates a workspace and its first user, then mails a sign-in code.
//
//	@Summary	Register a workspace
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		service.RegisterInput	true	"Registration"
//	@Success	201		{object}	model.User
//	@Failure	400		{object}	errorPayload
//	@Failure	409		{object}	errorPayload
//	@Router		/api/auth/register [post]
func Register(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.RegisterInput
		if err := bind(c, &in); err != nil {
			return fail(c, err)
		}
		user, err := svc.Register(c.UserContext(), in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(user)
	}
}

// SendCode always answers 202 so callers cannot probe which emails exist.
//
//	@Summary	Send a sign-in code
//	@Tags		auth
//	@Accept		json
//	@Param		body	body	service.SendCodeInput	true	"Email"
//	@Success	202
//	@Failure	400	{object}	errorPayload
//	@Router		/api/auth/email-code/send [post]
func SendCode(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.SendCodeInput
		if err := bind(c, &in); err != nil {
			return fail(c, err)
		}
		if err := svc.SendCode(c.UserContext(), in.Email); err != nil {
			return fail(c, err)
		}
		return c.SendStatus(fiber.StatusAccepted)
	}
}

// VerifyCode exchanges a code for a bearer token.
//
//	@Summary	Verify a sign-in code
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		service.VerifyCodeInput	true	"Email and code"
//	@Success	200		{object}	service.Session
//	@Failure	400		{object}	errorPayload
//	@Failure	401		{object}	errorPayload
//	@Router		/api/auth/email-code/verify [post]
func VerifyCode(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.VerifyCodeInput
		if err := bind(c, &in); err != nil {
			return fail(c, err)
		}
		session, err := svc.Verify(c.UserContext(), in)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(session)
	}
}

// Me returns the authenticated user.
//
//	@Summary	Current user
//	@Tags		auth
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	model.User
//	@Failure	401	{object}	errorPayload
//	@Router		/api/auth/me [get]
func Me(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := svc.Me(c.UserContext(), principal(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(user)
	}
}
