package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"crmapi/internal/auth"
	"crmapi/internal/model"
	"crmapi/internal/service"
	serviceMocks "crmapi/internal/service/mocks"
	"crmapi/internal/validation"
	"crmapi/internal/workflow"
)

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var body errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp).Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateObject(t *testing.T) {
	mockSvc := new(serviceMocks.MockObjectService)
	app := fiber.New()
	app.Post("/objects", CreateObject(mockSvc))

	t.Run("success", func(t *testing.T) {
		in := service.CreateObjectInput{Name: "deals", Label: "Deals", Stages: []string{"lead", "won"}}
		mockSvc.On("Create", mock.Anything, auth.Principal{}, in).Return(&model.CrmObject{ID: "o1", Name: "deals"}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/objects", `{"name":"deals","label":"Deals","stages":["lead","won"]}`))

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var obj model.CrmObject
		json.NewDecoder(resp.Body).Decode(&obj)
		assert.Equal(t, "o1", obj.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("field specific validation messages", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest(http.MethodPost, "/objects", `{"name":"Bad Name"}`))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "VALIDATION_FAILED", body.Error.Code)

		byField := map[string]string{}
		for _, f := range body.Error.Fields {
			byField[f.Field] = f.Message
		}
		assert.Contains(t, byField, "name")
		assert.Contains(t, byField, "label")
		assert.NotEqual(t, byField["name"], byField["label"])
	})

	t.Run("malformed json", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest(http.MethodPost, "/objects", `{"name":`))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_PAYLOAD", decodeError(t, resp).Error.Code)
	})

	t.Run("conflict keeps the service message", func(t *testing.T) {
		mockSvc.On("Create", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, &service.Error{Kind: service.ErrConflict, Message: "object already exists"}).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/objects", `{"name":"deals","label":"Deals"}`))

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "CONFLICT", body.Error.Code)
		assert.Equal(t, "object already exists", body.Error.Message)
	})
}

func TestListRecords(t *testing.T) {
	mockSvc := new(serviceMocks.MockRecordService)
	app := fiber.New()
	app.Get("/objects/:id/records", ListRecords(mockSvc))
	objectID := uuid.NewString()

	t.Run("pagination and filters", func(t *testing.T) {
		archived := false
		q := service.RecordQuery{
			Page:     service.Page{Page: 2, Limit: 50},
			Stage:    "won",
			Archived: &archived,
			Search:   "acme",
			Sort:     "-created_at",
		}
		items := make([]model.Record, 50)
		mockSvc.On("List", mock.Anything, auth.Principal{}, objectID, q).Return(&service.ListResult[model.Record]{
			Items: items, Total: 120, Page: 2, Limit: 50, TotalPages: 3,
		}, nil).Once()

		req := httptest.NewRequest(http.MethodGet,
			"/objects/"+objectID+"/records?page=2&limit=50&stage=won&archived=false&q=acme&sort=-created_at", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body struct {
			Data       []json.RawMessage `json:"data"`
			Total      int               `json:"total"`
			TotalPages int               `json:"totalPages"`
		}
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Len(t, body.Data, 50)
		assert.Equal(t, 120, body.Total)
		assert.Equal(t, 3, body.TotalPages)
		mockSvc.AssertExpectations(t)
	})

	t.Run("defaults", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, auth.Principal{}, objectID, service.RecordQuery{
			Page: service.Page{Page: 1, Limit: service.DefaultLimit},
		}).Return(&service.ListResult[model.Record]{Items: []model.Record{}}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/objects/"+objectID+"/records", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	tests := []struct {
		name     string
		target   string
		wantCode string
	}{
		{name: "invalid limit", target: "/objects/" + objectID + "/records?limit=abc", wantCode: "INVALID_QUERY"},
		{name: "zero page", target: "/objects/" + objectID + "/records?page=0", wantCode: "INVALID_QUERY"},
		{name: "page past the last allowed", target: "/objects/" + objectID + "/records?page=1000001", wantCode: "INVALID_QUERY"},
		{name: "page beyond int range", target: "/objects/" + objectID + "/records?page=99999999999999999999", wantCode: "INVALID_QUERY"},
		{name: "invalid owner", target: "/objects/" + objectID + "/records?ownerId=me", wantCode: "INVALID_QUERY"},
		{name: "invalid object id", target: "/objects/nope/records", wantCode: "INVALID_ID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := app.Test(httptest.NewRequest(http.MethodGet, tt.target, nil))

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tt.wantCode, decodeError(t, resp).Error.Code)
		})
	}
}

func TestCreateRecord(t *testing.T) {
	mockSvc := new(serviceMocks.MockRecordService)
	app := fiber.New()
	app.Post("/records", CreateRecord(mockSvc))
	objectID := uuid.NewString()
	body := fmt.Sprintf(`{"objectId":%q,"data":{"amount":"12"}}`, objectID)

	t.Run("data errors from the service", func(t *testing.T) {
		mockSvc.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil, &service.ValidationError{
			Fields: []validation.FieldError{{Field: "data.amount", Message: "must be a number"}},
		}).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/records", body))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		res := decodeError(t, resp)
		assert.Equal(t, "VALIDATION_FAILED", res.Error.Code)
		require.Len(t, res.Error.Fields, 1)
		assert.Equal(t, "data.amount", res.Error.Fields[0].Field)
	})

	t.Run("missing object", func(t *testing.T) {
		mockSvc.On("Create", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("create record: %w", service.ErrNotFound)).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/records", body))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	t.Run("object id is required", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest(http.MethodPost, "/records", `{"data":{}}`))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		res := decodeError(t, resp)
		require.NotEmpty(t, res.Error.Fields)
		assert.Equal(t, "objectId", res.Error.Fields[0].Field)
	})
}

func TestUpdateAndDeleteRecord(t *testing.T) {
	mockSvc := new(serviceMocks.MockRecordService)
	app := fiber.New()
	app.Patch("/records/:id", UpdateRecord(mockSvc))
	app.Delete("/records/:id", DeleteRecord(mockSvc))

	t.Run("update missing record", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Update", mock.Anything, mock.Anything, id, mock.Anything).
			Return(nil, &service.Error{Kind: service.ErrNotFound, Message: "record not found"}).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPatch, "/records/"+id, `{"data":{"name":"x"}}`))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "record not found", decodeError(t, resp).Error.Message)
	})

	t.Run("delete", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Delete", mock.Anything, mock.Anything, id).Return(nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/records/"+id, nil))

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("delete service error", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Delete", mock.Anything, mock.Anything, id).Return(errors.New("db down")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/records/"+id, nil))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		res := decodeError(t, resp)
		assert.Equal(t, "INTERNAL_ERROR", res.Error.Code)
		assert.NotContains(t, res.Error.Message, "db down")
	})

	mockSvc.AssertExpectations(t)
}

func TestCompileWorkflow(t *testing.T) {
	mockSvc := new(serviceMocks.MockWorkflowService)
	app := fiber.New()
	app.Post("/workflows/compile", CompileWorkflow(mockSvc))

	def := &model.Definition{
		Trigger: model.Trigger{Type: model.TriggerRecordCreated},
		Actions: []model.Action{{Type: model.ActionSetStage}},
	}
	mockSvc.On("Compile", mock.Anything, mock.MatchedBy(func(g workflow.Graph) bool {
		return len(g.Nodes) == 2 && g.Nodes[0].Type == workflow.NodeTrigger
	})).Return(def, nil).Once()

	resp, _ := app.Test(jsonRequest(http.MethodPost, "/workflows/compile", `{"nodes":[
		{"id":"t","type":"trigger","position":{"x":0,"y":0},"data":{"type":"record_created"}},
		{"id":"a","type":"action","position":{"x":0,"y":100},"data":{"type":"set_stage"}}
	],"edges":[{"id":"e","source":"t","target":"a"}]}`))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var got model.Definition
	json.NewDecoder(resp.Body).Decode(&got)
	assert.Equal(t, *def, got)
	mockSvc.AssertExpectations(t)
}

func TestUpdateComment_Forbidden(t *testing.T) {
	mockSvc := new(serviceMocks.MockCommentService)
	app := fiber.New()
	app.Patch("/comments/:id", UpdateComment(mockSvc))

	id := uuid.NewString()
	mockSvc.On("Update", mock.Anything, mock.Anything, id, service.UpdateCommentInput{Body: "edit"}).
		Return(nil, &service.Error{Kind: service.ErrForbidden, Message: "only the author can change this comment"}).Once()

	resp, _ := app.Test(jsonRequest(http.MethodPatch, "/comments/"+id, `{"body":"edit"}`))

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", decodeError(t, resp).Error.Code)
}

func TestUploadFile(t *testing.T) {
	mockSvc := new(serviceMocks.MockFileService)
	app := fiber.New()
	app.Post("/files", UploadFile(mockSvc))

	multipartBody := func(fields map[string]string) (*bytes.Buffer, string) {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		part, _ := writer.CreateFormFile("file", "test.txt")
		part.Write([]byte("hello world"))
		for k, v := range fields {
			writer.WriteField(k, v)
		}
		writer.Close()
		return body, writer.FormDataContentType()
	}

	t.Run("success", func(t *testing.T) {
		recordID := uuid.NewString()
		body, ct := multipartBody(map[string]string{"entityType": "record", "entityId": recordID})

		expected := &model.File{ID: uuid.NewString(), Filename: "test.txt"}
		mockSvc.On("Upload", mock.Anything, mock.Anything, mock.MatchedBy(func(in service.UploadInput) bool {
			return in.Filename == "test.txt" &&
				in.EntityType == "record" &&
				in.EntityID == recordID &&
				in.Size == int64(len("hello world")) &&
				in.Reader != nil
		})).Return(expected, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/files", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var result model.File
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, expected.ID, result.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("no file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/files", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "FILE_REQUIRED", decodeError(t, resp).Error.Code)
	})

	t.Run("half an entity", func(t *testing.T) {
		body, ct := multipartBody(map[string]string{"entityType": "task"})
		req := httptest.NewRequest(http.MethodPost, "/files", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ENTITY", decodeError(t, resp).Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		body, ct := multipartBody(nil)
		mockSvc.On("Upload", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("upload failed")).Once()

		req := httptest.NewRequest(http.MethodPost, "/files", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestListTimeEntries_InvalidRange(t *testing.T) {
	mockSvc := new(serviceMocks.MockTimeEntryService)
	app := fiber.New()
	app.Get("/time-entries", ListTimeEntries(mockSvc))

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/time-entries?from=yesterday", nil))

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_QUERY", decodeError(t, resp).Error.Code)
	mockSvc.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}

func newRoutedApp(authSvc *serviceMocks.MockAuthService, objects *serviceMocks.MockObjectService) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})
	RegisterRoutes(app, nil, Services{
		Auth:           authSvc,
		Objects:        objects,
		Fields:         new(serviceMocks.MockFieldService),
		Records:        new(serviceMocks.MockRecordService),
		Relations:      new(serviceMocks.MockRelationService),
		Workflows:      new(serviceMocks.MockWorkflowService),
		Projects:       new(serviceMocks.MockProjectService),
		Tasks:          new(serviceMocks.MockTaskService),
		TimeEntries:    new(serviceMocks.MockTimeEntryService),
		Calendar:       new(serviceMocks.MockCalendarService),
		EmailTemplates: new(serviceMocks.MockEmailTemplateService),
		Notifications:  new(serviceMocks.MockNotificationService),
		Comments:       new(serviceMocks.MockCommentService),
		Files:          new(serviceMocks.MockFileService),
	})
	return app
}

func TestRouting(t *testing.T) {
	authSvc := new(serviceMocks.MockAuthService)
	objects := new(serviceMocks.MockObjectService)
	app := newRoutedApp(authSvc, objects)

	caller := auth.Principal{UserID: "u1", TenantID: "t1"}
	authSvc.On("Authenticate", "good").Return(&caller, nil)
	authSvc.On("Authenticate", "bad").Return(nil, auth.ErrInvalidToken)

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "METHOD_NOT_ALLOWED", decodeError(t, resp).Error.Code)
	})

	t.Run("api requires a token", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/objects", nil))

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "UNAUTHORIZED", decodeError(t, resp).Error.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.Header.Set("Authorization", "Bearer bad")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("authenticated caller reaches the service", func(t *testing.T) {
		objects.On("List", mock.Anything, caller, true).Return([]model.CrmObject{{ID: "o1"}}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/objects?includeArchived=true", nil)
		req.Header.Set("Authorization", "Bearer good")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		objects.AssertExpectations(t)
	})

	t.Run("sign in is public", func(t *testing.T) {
		authSvc.On("SendCode", mock.Anything, "ann@example.com").Return(nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/api/auth/email-code/send", `{"email":"ann@example.com"}`))

		assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	})
}
