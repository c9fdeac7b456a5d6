package audit

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

type AuditController struct {
	AuditService AuditService
}

func NewAuditController(auditService AuditService) *AuditController {
	return &AuditController{
		AuditService: auditService,
	}
}

// ListLogs godoc
// @Summary      List audit logs
// @Description  Get a paginated list of permission, role and user mutations
// @Tags         audit
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        limit query int false "Items per page" default(20)
// @Param        entity query string false "Filter by entity type"
// @Success      200  {object} map[string]interface{}
// @Router       /api/audit [get]
func (ctrl *AuditController) ListLogs(c *fiber.Ctx) error {
	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "20"), 10, 64)

	filters := map[string]interface{}{}
	if entity := c.Query("entity"); entity != "" {
		filters["entity"] = entity
	}

	logs, total, err := ctrl.AuditService.ListLogs(c.UserContext(), filters, page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"logs":  logs,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}
