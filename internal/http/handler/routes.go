package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"crmapi/internal/http/middleware"
	"crmapi/internal/service"
)

// Services are the use cases exposed over HTTP.
type Services struct {
	Auth           service.AuthService
	Objects        service.ObjectService
	Fields         service.FieldService
	Records        service.RecordService
	Relations      service.RelationService
	Workflows      service.WorkflowService
	Projects       service.ProjectService
	Tasks          service.TaskService
	TimeEntries    service.TimeEntryService
	Calendar       service.CalendarService
	EmailTemplates service.EmailTemplateService
	Notifications  service.NotificationService
	Comments       service.CommentService
	Files          service.FileService
}

// Sign-in endpoints reachable without a bearer token.
var publicPaths = []string{
	"/api/auth/register",
	"/api/auth/email-code/send",
	"/api/auth/email-code/verify",
}

// RegisterRoutes attaches health probes and the /api surface to app.
// Everything under /api except publicPaths requires a bearer token.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc Services) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	api := app.Group("/api", middleware.Auth(svc.Auth, publicPaths...))

	authGroup := api.Group("/auth")
	authGroup.Post("/register", Register(svc.Auth))
	authGroup.Post("/email-code/send", SendCode(svc.Auth))
	authGroup.Post("/email-code/verify", VerifyCode(svc.Auth))
	authGroup.Get("/me", Me(svc.Auth))

	api.Get("/objects", ListObjects(svc.Objects))
	api.Post("/objects", CreateObject(svc.Objects))
	api.Get("/objects/:id", GetObject(svc.Objects))
	api.Patch("/objects/:id", UpdateObject(svc.Objects))
	api.Delete("/objects/:id", DeleteObject(svc.Objects))
	api.Get("/objects/:id/fields", ListFields(svc.Fields))
	api.Get("/objects/:id/records", ListRecords(svc.Records))

	api.Post("/fields", CreateField(svc.Fields))
	api.Get("/fields/:id", GetField(svc.Fields))
	api.Patch("/fields/:id", UpdateField(svc.Fields))
	api.Delete("/fields/:id", DeleteField(svc.Fields))

	api.Post("/records", CreateRecord(svc.Records))
	api.Get("/records/:id", GetRecord(svc.Records))
	api.Patch("/records/:id", UpdateRecord(svc.Records))
	api.Delete("/records/:id", DeleteRecord(svc.Records))
	api.Get("/records/:id/relations", ListRelations(svc.Relations))

	api.Post("/relations", CreateRelation(svc.Relations))
	api.Delete("/relations/:id", DeleteRelation(svc.Relations))

	// Static segments before :id so "compile" is not parsed as an id.
	api.Post("/workflows/compile", CompileWorkflow(svc.Workflows))
	api.Get("/workflows", ListWorkflows(svc.Workflows))
	api.Post("/workflows", CreateWorkflow(svc.Workflows))
	api.Get("/workflows/:id", GetWorkflow(svc.Workflows))
	api.Patch("/workflows/:id", UpdateWorkflow(svc.Workflows))
	api.Delete("/workflows/:id", DeleteWorkflow(svc.Workflows))
	api.Get("/workflows/:id/graph", WorkflowGraph(svc.Workflows))
	api.Post("/workflows/:id/run", RunWorkflow(svc.Workflows))
	api.Get("/workflows/:id/runs", ListWorkflowRuns(svc.Workflows))

	api.Get("/projects", ListProjects(svc.Projects))
	api.Post("/projects", CreateProject(svc.Projects))
	api.Get("/projects/:id", GetProject(svc.Projects))
	api.Patch("/projects/:id", UpdateProject(svc.Projects))
	api.Delete("/projects/:id", DeleteProject(svc.Projects))

	api.Get("/tasks", ListTasks(svc.Tasks))
	api.Post("/tasks", CreateTask(svc.Tasks))
	api.Get("/tasks/:id", GetTask(svc.Tasks))
	api.Patch("/tasks/:id", UpdateTask(svc.Tasks))
	api.Patch("/tasks/:id/move", MoveTask(svc.Tasks))
	api.Delete("/tasks/:id", DeleteTask(svc.Tasks))

	api.Get("/time-entries", ListTimeEntries(svc.TimeEntries))
	api.Post("/time-entries", CreateTimeEntry(svc.TimeEntries))
	api.Get("/time-entries/summary", TimeSummary(svc.TimeEntries))
	api.Get("/time-entries/running", RunningTimer(svc.TimeEntries))
	api.Post("/time-entries/start", StartTimer(svc.TimeEntries))
	api.Post("/time-entries/stop", StopTimer(svc.TimeEntries))
	api.Get("/time-entries/:id", GetTimeEntry(svc.TimeEntries))
	api.Patch("/time-entries/:id", UpdateTimeEntry(svc.TimeEntries))
	api.Delete("/time-entries/:id", DeleteTimeEntry(svc.TimeEntries))

	api.Get("/calendar-events", ListCalendarEvents(svc.Calendar))
	api.Post("/calendar-events", CreateCalendarEvent(svc.Calendar))
	api.Get("/calendar-events/:id", GetCalendarEvent(svc.Calendar))
	api.Patch("/calendar-events/:id", UpdateCalendarEvent(svc.Calendar))
	api.Delete("/calendar-events/:id", DeleteCalendarEvent(svc.Calendar))

	api.Get("/email-templates", ListEmailTemplates(svc.EmailTemplates))
	api.Post("/email-templates", CreateEmailTemplate(svc.EmailTemplates))
	api.Get("/email-templates/:id", GetEmailTemplate(svc.EmailTemplates))
	api.Patch("/email-templates/:id", UpdateEmailTemplate(svc.EmailTemplates))
	api.Delete("/email-templates/:id", DeleteEmailTemplate(svc.EmailTemplates))
	api.Post("/email-templates/:id/preview", PreviewEmailTemplate(svc.EmailTemplates))
	api.Post("/email-templates/:id/send", SendEmailTemplate(svc.EmailTemplates))

	api.Get("/notifications", ListNotifications(svc.Notifications))
	api.Get("/notifications/unread-count", UnreadNotificationCount(svc.Notifications))
	api.Post("/notifications/read-all", MarkAllNotificationsRead(svc.Notifications))
	api.Post("/notifications/:id/read", MarkNotificationRead(svc.Notifications))
	api.Delete("/notifications/:id", DeleteNotification(svc.Notifications))

	api.Get("/comments", ListComments(svc.Comments))
	api.Post("/comments", CreateComment(svc.Comments))
	api.Patch("/comments/:id", UpdateComment(svc.Comments))
	api.Delete("/comments/:id", DeleteComment(svc.Comments))

	api.Get("/files", ListFiles(svc.Files))
	api.Post("/files", UploadFile(svc.Files))
	api.Get("/files/:id", GetFile(svc.Files))
	api.Get("/files/:id/download", FileDownloadURL(svc.Files))
	api.Delete("/files/:id", DeleteFile(svc.Files))
}
