package preview

import (
	"errors"

	"content-sync/core/logger"
	"content-sync/core/reconcile"
	"content-sync/core/record"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for plan previews.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the preview routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/preview")
	group.Get("/", h.HandlePlan)
	group.Get("/:identity", h.HandleDecision)
}

// Report is the preview response body.
type Report struct {
	Summary   reconcile.PlanSummary `json:"summary"`
	Order     []string              `json:"order"`
	Cycles    [][]string            `json:"cycles,omitempty"`
	Warnings  []record.Warning      `json:"warnings,omitempty"`
	Decisions []reconcile.Decision  `json:"decisions"`
}

// HandlePlan returns the full plan. ?action=create|update|skip filters decisions.
func (h *Handler) HandlePlan(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	plan, err := h.service.Plan(c.Context())
	if err != nil {
		l.Error("Preview planning failed", zap.Error(err))
		return planError(c, err)
	}

	report := Report{
		Summary:   plan.Summary,
		Order:     plan.Order,
		Warnings:  plan.Warnings,
		Decisions: plan.Decisions,
	}
	for _, comp := range plan.Components {
		if comp.Cyclic {
			report.Cycles = append(report.Cycles, comp.Members)
		}
	}

	if action := c.Query("action"); action != "" {
		filtered := make([]reconcile.Decision, 0, len(plan.Decisions))
		for _, d := range plan.Decisions {
			if string(d.Action) == action {
				filtered = append(filtered, d)
			}
		}
		report.Decisions = filtered
	}

	return c.JSON(report)
}

// HandleDecision returns the decision and position of a single identity.
func (h *Handler) HandleDecision(c *fiber.Ctx) error {
	identity := c.Params("identity")
	l := logger.WithRayID(h.service.logger, c)

	plan, err := h.service.Plan(c.Context())
	if err != nil {
		l.Error("Preview planning failed", zap.Error(err), zap.String("identity", identity))
		return planError(c, err)
	}

	d, ok := plan.Decision(identity)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "identity not in snapshot",
		})
	}
	return c.JSON(fiber.Map{
		"position": plan.Position(identity),
		"decision": d,
		"record":   d.Record,
	})
}

// planError maps snapshot problems to 422 and everything else to 500.
func planError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	if errors.Is(err, record.ErrMalformedRecord) || errors.Is(err, record.ErrDuplicateIdentity) {
		status = fiber.StatusUnprocessableEntity
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
