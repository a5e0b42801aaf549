package handler

import (
	"github.com/gofiber/fiber/v2"

	"crmapi/internal/service"
)

// ListCalendarEvents returns events overlapping the from/to range.
func ListCalendarEvents(svc service.CalendarService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, err := queryTime(c, "from")
		if err != nil {
			return fail(c, err)
		}
		to, err := queryTime(c, "to")
		if err != nil {
			return fail(c, err)
		}
		events, err := svc.List(c.UserContext(), principal(c), from, to)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(events)
	}
}

func GetCalendarEvent(svc service.CalendarService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		ev, err := svc.Get(c.UserContext(), principal(c), id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(ev)
	}
}

func CreateCalendarEvent(svc service.CalendarService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.CalendarEventInput
		if err := bind(c, &in); err != nil {
			return fail(c, err)
		}
		ev, err := svc.Create(c.UserContext(), principal(c), in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(ev)
	}
}

func UpdateCalendarEvent(svc service.CalendarService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		var in service.UpdateCalendarEventInput
		if err := bind(c, &in); err != nil {
			return fail(c, err)
		}
		ev, err := svc.Update(c.UserContext(), principal(c), id, in)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(ev)
	}
}

func DeleteCalendarEvent(svc service.CalendarService) fiber.Handler {
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
