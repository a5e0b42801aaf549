package handler

import (
	"github.com/gofiber/fiber/v2"

	"crmapi/internal/service"
)

// ListNotifications returns the caller's notifications; unread=true filters.
func ListNotifications(svc service.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := readPage(c)
		if err != nil {
			return fail(c, err)
		}
		unread, err := queryBool(c, "unread")
		if err != nil {
			return fail(c, err)
		}
		res, err := svc.List(c.UserContext(), principal(c), unread != nil && *unread, page)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(res)
	}
}

func UnreadNotificationCount(svc service.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		n, err := svc.UnreadCount(c.UserContext(), principal(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"count": n})
	}
}

func MarkNotificationRead(svc service.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		if err := svc.MarkRead(c.UserContext(), principal(c), id); err != nil {
			return fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func MarkAllNotificationsRead(svc service.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		n, err := svc.MarkAllRead(c.UserContext(), principal(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"updated": n})
	}
}

func DeleteNotification(svc service.NotificationService) fiber.Handler {
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
