package handler

import (
	"github.com/gofiber/fiber/v2"

	"crmapi/internal/service"
)

// ListTimeEntries filters by a from/to range, projectId and userId.
func ListTimeEntries(svc service.TimeEntryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := readPage(c)
		if err != nil {
			return fail(c, err)
		}
		q := service.TimeEntryQuery{Page: page}
		if q.From, err = queryTime(c, "from"); err != nil {
			return fail(c, err)
		}
		if q.To, err = queryTime(c, "to"); err != nil {
			return fail(c, err)
		}
		if q.ProjectID, err = queryID(c, "projectId"); err != nil {
			return fail(c, err)
		}
		if q.UserID, err = queryID(c, "userId"); err != nil {
			return fail(c, err)
		}
		res, err := svc.List(c.UserContext(), principal(c), q)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(res)
	}
}

func GetTimeEntry(svc service.TimeEntryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		e, err := svc.Get(c.UserContext(), principal(c), id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(e)
	}
}

func CreateTimeEntry(svc service.TimeEntryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.TimeEntryInput
		if err := bind(c, &in); err != nil {
			return fail(c, err)
		}
		e, err := svc.Create(c.UserContext(), principal(c), in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(e)
	}
}

func UpdateTimeEntry(svc service.TimeEntryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		var in service.UpdateTimeEntryInput
		if err := bind(c, &in); err != nil {
			return fail(c, err)
		}
		e, err := svc.Update(c.UserContext(), principal(c), id, in)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(e)
	}
}

func DeleteTimeEntry(svc service.TimeEntryService) fiber.Handler {
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

// StartTimer opens a timer for the caller; 409 when one is already running.
func StartTimer(svc service.TimeEntryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.StartTimerInput
		if len(c.Body()) > 0 {
			if err := bind(c, &in); err != nil {
				return fail(c, err)
			}
		}
		e, err := svc.Start(c.UserContext(), principal(c), in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(e)
	}
}

func StopTimer(svc service.TimeEntryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		e, err := svc.Stop(c.UserContext(), principal(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(e)
	}
}

func RunningTimer(svc service.TimeEntryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		e, err := svc.Running(c.UserContext(), principal(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(e)
	}
}

// TimeSummary totals the caller's tracked time per project.
func TimeSummary(svc service.TimeEntryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, err := queryTime(c, "from")
		if err != nil {
			return fail(c, err)
		}
		to, err := queryTime(c, "to")
		if err != nil {
			return fail(c, err)
		}
		sums, err := svc.Summary(c.UserContext(), principal(c), from, to)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(sums)
	}
}
