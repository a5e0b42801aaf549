package handler

import (
	"github.com/gofiber/fiber/v2"

	"crmapi/internal/service"
)

// ListRecords pages through an object's records.
//
//	@Summary	List records of an object
//	@Tags		records
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id			path		string	true	"Object ID"
//	@Param		page		query		int		false	"Page (1-based)"
//	@Param		limit		query		int		false	"Page size, max 100"
//	@Param		stage		query		string	false	"Pipeline stage"
//	@Param		ownerId		query		string	false	"Owner user ID"
//	@Param		archived	query		bool	false	"Archived records only"
//	@Param		q			query		string	false	"Text search over data"
//	@Param		sort		query		string	false	"created_at or updated_at, prefix - for descending"
//	@Success	200			{object}	service.ListResult[model.Record]
//	@Failure	400			{object}	errorPayload
//	@Router		/api/objects/{id}/records [get]
func ListRecords(svc service.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		objectID, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		page, err := readPage(c)
		if err != nil {
			return fail(c, err)
		}
		ownerID, err := queryID(c, "ownerId")
		if err != nil {
			return fail(c, err)
		}
		archived, err := queryBool(c, "archived")
		if err != nil {
			return fail(c, err)
		}
		res, err := svc.List(c.UserContext(), principal(c), objectID, service.RecordQuery{
			Page:     page,
			Stage:    c.Query("stage"),
			OwnerID:  ownerID,
			Archived: archived,
			Search:   c.Query("q"),
			Sort:     c.Query("sort"),
		})
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(res)
	}
}

//	@Summary	Get a record
//	@Tags		records
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Record ID"
//	@Success	200	{object}	model.Record
//	@Failure	404	{object}	errorPayload
//	@Router		/api/records/{id} [get]
func GetRecord(svc service.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		rec, err := svc.Get(c.UserContext(), principal(c), id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(rec)
	}
}

// CreateRecord validates data against the object's fields before storing it.
//
//	@Summary	Create a record
//	@Tags		records
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		body	body		service.CreateRecordInput	true	"Record"
//	@Success	201		{object}	model.Record
//	@Failure	400		{object}	errorPayload
//	@Failure	404		{object}	errorPayload
//	@Router		/api/records [post]
func CreateRecord(svc service.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.CreateRecordInput
		if err := bind(c, &in); err != nil {
			return fail(c, err)
		}
		rec, err := svc.Create(c.UserContext(), principal(c), in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(rec)
	}
}

// UpdateRecord merges data into the stored values.
func UpdateRecord(svc service.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		var in service.UpdateRecordInput
		if err := bind(c, &in); err != nil {
			return fail(c, err)
		}
		rec, err := svc.Update(c.UserContext(), principal(c), id, in)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(rec)
	}
}

func DeleteRecord(svc service.RecordService) fiber.Handler {
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

// ListRelations returns links from and to a record.
func ListRelations(svc service.RelationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		recordID, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		rels, err := svc.ListByRecord(c.UserContext(), principal(c), recordID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(rels)
	}
}

func CreateRelation(svc service.RelationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.CreateRelationInput
		if err := bind(c, &in); err != nil {
			return fail(c, err)
		}
		rel, err := svc.Create(c.UserContext(), principal(c), in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(rel)
	}
}

func DeleteRelation(svc service.RelationService) fiber.Handler {
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
