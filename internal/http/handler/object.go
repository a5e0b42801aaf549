package handler

import (
	"github.com/gofiber/fiber/v2"

	"crmapi/internal/service"
)

// ListObjects returns the tenant's objects, archived ones only on request.
//
//	@Summary	List objects
//	@Tags		objects
//	@Produce	json
//	@Security	BearerAuth
//	@Param		includeArchived	query		bool	false	"Include archived objects"
//	@Success	200				{array}		model.CrmObject
//	@Router		/api/objects [get]
func ListObjects(svc service.ObjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		archived, err := queryBool(c, "includeArchived")
		if err != nil {
			return fail(c, err)
		}
		objs, err := svc.List(c.UserContext(), principal(c), archived != nil && *archived)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(objs)
	}
}

//	@Summary	Get an object
//	@Tags		objects
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Object ID"
//	@Success	200	{object}	model.CrmObject
//	@Failure	404	{object}	errorPayload
//	@Router		/api/objects/{id} [get]
func GetObject(svc service.ObjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		obj, err := svc.Get(c.UserContext(), principal(c), id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(obj)
	}
}

//	@Summary	Create an object
//	@Tags		objects
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		body	body		service.CreateObjectInput	true	"Object"
//	@Success	201		{object}	model.CrmObject
//	@Failure	400		{object}	errorPayload
//	@Failure	409		{object}	errorPayload
//	@Router		/api/objects [post]
func CreateObject(svc service.ObjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.CreateObjectInput
		if err := bind(c, &in); err != nil {
			return fail(c, err)
		}
		obj, err := svc.Create(c.UserContext(), principal(c), in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(obj)
	}
}

// UpdateObject also archives and restores objects through the archived flag.
func UpdateObject(svc service.ObjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		var in service.UpdateObjectInput
		if err := bind(c, &in); err != nil {
			return fail(c, err)
		}
		obj, err := svc.Update(c.UserContext(), principal(c), id, in)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(obj)
	}
}

func DeleteObject(svc service.ObjectService) fiber.Handler {
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

// ListFields returns an object's fields ordered by position.
func ListFields(svc service.FieldService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		objectID, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		fields, err := svc.List(c.UserContext(), principal(c), objectID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fields)
	}
}

func GetField(svc service.FieldService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		f, err := svc.Get(c.UserContext(), principal(c), id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(f)
	}
}

func CreateField(svc service.FieldService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.CreateFieldInput
		if err := bind(c, &in); err != nil {
			return fail(c, err)
		}
		f, err := svc.Create(c.UserContext(), principal(c), in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(f)
	}
}

func UpdateField(svc service.FieldService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		var in service.UpdateFieldInput
		if err := bind(c, &in); err != nil {
			return fail(c, err)
		}
		f, err := svc.Update(c.UserContext(), principal(c), id, in)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(f)
	}
}

func DeleteField(svc service.FieldService) fiber.Handler {
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
