package engine

import (
	"fmt"

	"webtemplate-backend/internal/apperr"
	"webtemplate-backend/internal/metadata"
)

// Actions checked by CheckPermission.
const (
	ActionRead   = "read"
	ActionRender = "render"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionExport = "export"
)

// CheckPermission verifies that the user may perform action on Web
// Templates. Any authenticated user may read and render; writes need the
// admin or website_manager role.
func CheckPermission(user *metadata.UserContext, action string) error {
	if user == nil {
		return apperr.UnauthorizedError("Authentication required")
	}

	switch action {
	case ActionRead, ActionRender:
		return nil
	case ActionCreate, ActionUpdate, ActionDelete, ActionExport:
		if user.CanManageTemplates() {
			return nil
		}
		return apperr.ForbiddenError(fmt.Sprintf("Permission denied for %s on %s", action, metadata.DocType))
	default:
		return apperr.ForbiddenError(fmt.Sprintf("Unknown action %s", action))
	}
}
