package handler

import (
	"github.com/gofiber/fiber/v2"

	"crmapi/internal/service"
)

// UploadFile stores a multipart upload (field name: file), optionally
// attached to an entity via the entityType and entityId form values.
//
//	@Summary	Upload a file
//	@Tags		files
//	@Accept		multipart/form-data
//	@Produce	json
//	@Security	BearerAuth
//	@Param		file		formData	file	true	"Content"
//	@Param		entityType	formData	string	false	"record, task or project"
//	@Param		entityId	formData	string	false	"Entity ID"
//	@Success	201			{object}	model.File
//	@Failure	400			{object}	errorPayload
//	@Router		/api/files [post]
func UploadFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		entityType, entityID := c.FormValue("entityType"), c.FormValue("entityId")
		if (entityType == "") != (entityID == "") {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ENTITY", "entityType and entityId must be given together")
		}
		if entityType != "" && (!validate.Var(entityType, "oneof=record task project") || !validate.Var(entityID, "uuid")) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ENTITY", "entity must be a record, task or project id")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		file, err := svc.Upload(c.UserContext(), principal(c), service.UploadInput{
			Reader:      f,
			Filename:    fh.Filename,
			ContentType: ct,
			Size:        fh.Size,
			EntityType:  entityType,
			EntityID:    entityID,
		})
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(file)
	}
}

func ListFiles(svc service.FileService) fiber.Handler {
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

func GetFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		file, err := svc.Get(c.UserContext(), principal(c), id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(file)
	}
}

// FileDownloadURL returns a presigned link valid for service.DownloadURLTTL.
func FileDownloadURL(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		link, err := svc.DownloadURL(c.UserContext(), principal(c), id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(link)
	}
}

func DeleteFile(svc service.FileService) fiber.Handler {
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
