package handler

import (
	"github.com/gofiber/fiber/v2"

	"crmapi/internal/service"
)

func ListEmailTemplates(svc service.EmailTemplateService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := readPage(c)
		if err != nil {
			return fail(c, err)
		}
		res, err := svc.List(c.UserContext(), principal(c), page)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(res)
	}
}

func GetEmailTemplate(svc service.EmailTemplateService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		t, err := svc.Get(c.UserContext(), principal(c), id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(t)
	}
}

func CreateEmailTemplate(svc service.EmailTemplateService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.EmailTemplateInput
		if err := bind(c, &in); err != nil {
			return fail(c, err)
		}
		t, err := svc.Create(c.UserContext(), principal(c), in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(t)
	}
}

func UpdateEmailTemplate(svc service.EmailTemplateService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		var in service.UpdateEmailTemplateInput
		if err := bind(c, &in); err != nil {
			return fail(c, err)
		}
		t, err := svc.Update(c.UserContext(), principal(c), id, in)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(t)
	}
}

func DeleteEmailTemplate(svc service.EmailTemplateService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		if err := svc.Delete(c.UserContext(), principal(c), id); err != nil {
			return fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// PreviewEmailTemplate renders a template against sample data.
//
//	@Summary	Preview a template
//	@Tags		email-templates
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string					true	"Template ID"
//	@Param		body	body		service.PreviewInput	false	"Placeholder values"
//	@Success	200		{object}	service.RenderedEmail
//	@Router		/api/email-templates/{id}/preview [post]
func PreviewEmailTemplate(svc service.EmailTemplateService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		var in service.PreviewInput
		if len(c.Body()) > 0 {
			if err := bind(c, &in); err != nil {
				return fail(c, err)
			}
		}
		out, err := svc.Preview(c.UserContext(), principal(c), id, in.Data)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(out)
	}
}

func SendEmailTemplate(svc service.EmailTemplateService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		var in service.SendTemplateInput
		if err := bind(c, &in); err != nil {
			return fail(c, err)
		}
		out, err := svc.Send(c.UserContext(), principal(c), id, in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusAccepted).JSON(out)
	}
}
