package handler

import (
	"github.com/gofiber/fiber/v2"

	"crmapi/internal/service"
)

// ListComments requires entityType and entityId query parameters.
func ListComments(svc service.CommentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := readPage(c)
		if err != nil {
			return fail(c, err)
		}
		entityID, err := queryID(c, "entityId")
		if err != nil {
			return fail(c, err)
		}
		res, err := svc.List(c.UserContext(), principal(c), c.Query("entityType"), entityID, page)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(res)
	}
}

func CreateComment(svc service.CommentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.CommentInput
		if err := bind(c, &in); err != nil {
			return fail(c, err)
		}
		cm, err := svc.Create(c.UserContext(), principal(c), in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(cm)
	}
}

func UpdateComment(svc service.CommentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		var in service.UpdateCommentInput
		if err := bind(c, &in); err != nil {
			return fail(c, err)
		}
		cm, err := svc.Update(c.UserContext(), principal(c), id, in)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(cm)
	}
}

func DeleteComment(svc service.CommentService) fiber.Handler {
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
