package handler

import (
	"github.com/gofiber/fiber/v2"

	"crmapi/internal/service"
	"crmapi/internal/workflow"
)

func ListWorkflows(svc service.WorkflowService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := readPage(c)
		if err != nil {
			return fail(c, err)
		}
		res, err := svc.List(c.UserContext(), principal(c), page)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(res)
	}
}

func GetWorkflow(svc service.WorkflowService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		wf, err := svc.Get(c.UserContext(), principal(c), id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(wf)
	}
}

// CreateWorkflow accepts either a definition or an editor graph.
//
//	@Summary	Create a workflow
//	@Tags		workflows
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		body	body		service.WorkflowInput	true	"Definition or graph"
//	@Success	201		{object}	model.Workflow
//	@Failure	400		{object}	errorPayload
//	@Router		/api/workflows [post]
func CreateWorkflow(svc service.WorkflowService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.WorkflowInput
		if err := bind(c, &in); err != nil {
			return fail(c, err)
		}
		wf, err := svc.Create(c.UserContext(), principal(c), in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(wf)
	}
}

func UpdateWorkflow(svc service.WorkflowService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		var in service.UpdateWorkflowInput
		if err := bind(c, &in); err != nil {
			return fail(c, err)
		}
		wf, err := svc.Update(c.UserContext(), principal(c), id, in)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(wf)
	}
}

func DeleteWorkflow(svc service.WorkflowService) fiber.Handler {
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

// CompileWorkflow converts an editor graph to a definition without saving it.
//
//	@Summary	Compile an editor graph
//	@Tags		workflows
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		body	body		workflow.Graph	true	"Graph"
//	@Success	200		{object}	model.Definition
//	@Failure	400		{object}	errorPayload
//	@Router		/api/workflows/compile [post]
func CompileWorkflow(svc service.WorkflowService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var g workflow.Graph
		if err := bind(c, &g); err != nil {
			return fail(c, err)
		}
		def, err := svc.Compile(c.UserContext(), g)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(def)
	}
}

// WorkflowGraph lays out a stored workflow for the editor.
func WorkflowGraph(svc service.WorkflowService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		g, err := svc.Graph(c.UserContext(), principal(c), id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(g)
	}
}

// RunWorkflow executes a workflow against one record and returns the run.
func RunWorkflow(svc service.WorkflowService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		var in service.RunWorkflowInput
		if err := bind(c, &in); err != nil {
			return fail(c, err)
		}
		run, err := svc.Run(c.UserContext(), principal(c), id, in)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(run)
	}
}

func ListWorkflowRuns(svc service.WorkflowService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		page, err := readPage(c)
		if err != nil {
			return fail(c, err)
		}
		res, err := svc.Runs(c.UserContext(), principal(c), id, page)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(res)
	}
}
