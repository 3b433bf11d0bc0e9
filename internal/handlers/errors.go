package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	apierrors "github.com/taskflow/taskflow-api/internal/errors"
	"github.com/taskflow/taskflow-api/internal/services"
)

// respondServiceError maps service sentinel errors onto the uniform error
// envelope. Unknown errors become a 500 without leaking internals.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrParentNotFound):
		apierrors.NotFound(c, apierrors.ErrCodeTaskNotFound, "Task not found")
	case errors.Is(err, services.ErrTeamNotFound):
		apierrors.NotFound(c, apierrors.ErrCodeTeamNotFound, "Team not found")
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, apierrors.ErrCodeUserNotFound, "User not found")
	case errors.Is(err, services.ErrCommentNotFound):
		apierrors.NotFound(c, apierrors.ErrCodeCommentNotFound, "Comment not found")

	case errors.Is(err, services.ErrTaskViewDenied):
		apierrors.Forbidden(c, apierrors.ErrCodeTaskAccessDenied, "You do not have permission to access this task")
	case errors.Is(err, services.ErrTaskEditDenied):
		apierrors.Forbidden(c, apierrors.ErrCodeTaskEditDenied, "You do not have permission to edit this task")
	case errors.Is(err, services.ErrTaskDeleteDenied):
		apierrors.Forbidden(c, apierrors.ErrCodeTaskDeleteDenied, "You do not have permission to delete this task")
	case errors.Is(err, services.ErrNotTeamMember):
		apierrors.Forbidden(c, apierrors.ErrCodeNotTeamMember, "You are not a member of this team")
	case errors.Is(err, services.ErrNotTeamAdmin):
		apierrors.Forbidden(c, apierrors.ErrCodeNotTeamAdmin, "Only team owner or admin can perform this action")
	case errors.Is(err, services.ErrCannotRemoveOwner):
		apierrors.Forbidden(c, apierrors.ErrCodeCannotRemoveOwner, "Cannot remove the team owner")
	case errors.Is(err, services.ErrCommentEditDenied):
		apierrors.Forbidden(c, apierrors.ErrCodeCommentEditDenied, "You can only modify your own comments")

	case errors.Is(err, services.ErrAlreadyTeamMember):
		apierrors.Conflict(c, apierrors.ErrCodeAlreadyMember, "User is already a member of this team")
	case errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, apierrors.ErrCodeEmailExists, "Email already exists")

	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.RespondWithError(c, 401, apierrors.ErrCodeInvalidCredentials, "Invalid email or password")

	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrContentRequired),
		errors.Is(err, services.ErrTeamNameRequired),
		errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, err.Error())

	default:
		apierrors.InternalError(c, "")
	}
}
