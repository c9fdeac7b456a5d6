package sync

import (
	common_models "go-opsdesk/internal/common/models"
	"go-opsdesk/internal/features/audit"

	"github.com/gofiber/fiber/v2"
)

type SyncController struct {
	Auditor      Auditor
	AuditService audit.AuditService
}

func NewSyncController(auditor Auditor, auditService audit.AuditService) *SyncController {
	return &SyncController{
		Auditor:      auditor,
		AuditService: auditService,
	}
}

// ValidateConsistency godoc
// @Summary      Run a consistency audit
// @Description  Recompute expected permission sets for every role and user and repair any drift found
// @Tags         sync
// @Produce      json
// @Success      200  {object} Report
// @Failure      500  {string} string "Audit failed"
// @Router       /api/sync/consistency [post]
func (ctrl *SyncController) ValidateConsistency(c *fiber.Ctx) error {
	report, err := ctrl.Auditor.ValidateAndFixConsistency(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	_ = ctrl.AuditService.LogChange(c.UserContext(), common_models.AuditActionRepair, "consistency", "full-scan", map[string]common_models.Change{
		"fixed_users": {New: report.FixedUsers},
		"fixed_roles": {New: report.FixedRoles},
	})

	return c.JSON(report)
}
