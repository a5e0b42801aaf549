package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"crmapi/internal/auth"
	"crmapi/internal/http/middleware"
	"crmapi/internal/service"
	"crmapi/internal/validation"
)

var validate = validation.New()

// requestError is a malformed request detected before reaching a service.
type requestError struct {
	code    string
	message string
}

func (e *requestError) Error() string { return e.message }

func badRequest(code, message string) error {
	return &requestError{code: code, message: message}
}

// fail writes err as an error response.
func fail(c *fiber.Ctx, err error) error {
	var rerr *requestError
	if errors.As(err, &rerr) {
		return writeError(c, fiber.StatusBadRequest, rerr.code, rerr.message)
	}
	return writeServiceError(c, err)
}

// principal returns the caller stored by middleware.Auth.
func principal(c *fiber.Ctx) auth.Principal {
	p, _ := middleware.PrincipalFromCtx(c)
	return p
}

// bind decodes the JSON body into dst and runs its validate tags.
func bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return badRequest("INVALID_PAYLOAD", "request body must be valid JSON")
	}
	if errs := validate.Struct(dst); len(errs) > 0 {
		return &service.ValidationError{Fields: errs}
	}
	return nil
}

// pathID returns a UUID path parameter.
func pathID(c *fiber.Ctx, name string) (string, error) {
	id := c.Params(name)
	if _, err := uuid.Parse(id); err != nil {
		return "", badRequest("INVALID_ID", "invalid id format")
	}
	return id, nil
}

// queryID returns an optional UUID query parameter.
func queryID(c *fiber.Ctx, name string) (string, error) {
	id := c.Query(name)
	if id == "" {
		return "", nil
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", badRequest("INVALID_QUERY", name+" must be a valid id")
	}
	return id, nil
}

// readPage parses page and limit. Missing values fall back to defaults.
func readPage(c *fiber.Ctx) (service.Page, error) {
	var p service.Page
	for _, q := range []struct {
		key string
		dst *int
	}{{"page", &p.Page}, {"limit", &p.Limit}} {
		raw := c.Query(q.key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return p, badRequest("INVALID_QUERY", q.key+" must be a positive integer")
		}
		*q.dst = n
	}
	if p.Page > service.MaxPage {
		return p, badRequest("INVALID_QUERY", "page must be at most "+strconv.Itoa(service.MaxPage))
	}
	return p.Normalize(), nil
}

// queryBool parses an optional boolean; nil means unset.
func queryBool(c *fiber.Ctx, key string) (*bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, badRequest("INVALID_QUERY", key+" must be true or false")
	}
	return &b, nil
}

// queryTime accepts RFC 3339 timestamps or plain dates.
func queryTime(c *fiber.Ctx, key string) (time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, badRequest("INVALID_QUERY", key+" must be a date or RFC 3339 timestamp")
}
