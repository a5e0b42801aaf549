package handler

import (
	"github.com/gofiber/fiber/v2"

	"crmapi/internal/service"
)

func ListProjects(svc service.ProjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := readPage(c)
		if err != nil {
			return fail(c, err)
		}
		res, err := svc.List(c.UserContext(), principal(c), c.Query("status"), page)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(res)
	}
}

func GetProject(svc service.ProjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		pr, err := svc.Get(c.UserContext(), principal(c), id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(pr)
	}
}

func CreateProject(svc service.ProjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.ProjectInput
		if err := bind(c, &in); err != nil {
			return fail(c, err)
		}
		pr, err := svc.Create(c.UserContext(), principal(c), in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(pr)
	}
}

func UpdateProject(svc service.ProjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		var in service.UpdateProjectInput
		if err := bind(c, &in); err != nil {
			return fail(c, err)
		}
		pr, err := svc.Update(c.UserContext(), principal(c), id, in)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(pr)
	}
}

func DeleteProject(svc service.ProjectService) fiber.Handler {
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

// ListTasks filters by projectId, status, assigneeId and recordId.
func ListTasks(svc service.TaskService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := readPage(c)
		if err != nil {
			return fail(c, err)
		}
		q := service.TaskQuery{Page: page, Status: c.Query("status")}
		for _, f := range []struct {
			key string
			dst *string
		}{{"projectId", &q.ProjectID}, {"assigneeId", &q.AssigneeID}, {"recordId", &q.RecordID}} {
			if *f.dst, err = queryID(c, f.key); err != nil {
				return fail(c, err)
			}
		}
		res, err := svc.List(c.UserContext(), principal(c), q)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(res)
	}
}

func GetTask(svc service.TaskService) fiber.Handler {
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

func CreateTask(svc service.TaskService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.TaskInput
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

func UpdateTask(svc service.TaskService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		var in service.UpdateTaskInput
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

// MoveTask places a task on a kanban column.
//
//	@Summary	Move a task on the board
//	@Tags		tasks
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string					true	"Task ID"
//	@Param		body	body		service.MoveTaskInput	true	"Column and position"
//	@Success	200		{object}	model.Task
//	@Router		/api/tasks/{id}/move [patch]
func MoveTask(svc service.TaskService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		var in service.MoveTaskInput
		if err := bind(c, &in); err != nil {
			return fail(c, err)
		}
		t, err := svc.Move(c.UserContext(), principal(c), id, in)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(t)
	}
}

func DeleteTask(svc service.TaskService) fiber.Handler {
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
