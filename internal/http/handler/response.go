package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"gitgrok.app/api/common/apperr"
)

const genericErrorMessage = "Something went wrong"

// ErrorResponder writes {success:false, message, detail?} bodies. Detail is only
// included outside production, and production hides upstream and internal messages.
type ErrorResponder struct {
	IsProduction bool
}

func (r ErrorResponder) Respond(c *gin.Context, err error) {
	ctx := c.Request.Context()
	kind := apperr.KindOf(err)
	status := apperr.Status(kind)

	message := apperr.MessageOf(err)
	if message == "" || (r.IsProduction && !apperr.Exposable(kind)) {
		message = genericErrorMessage
	}

	if status >= http.StatusInternalServerError {
		slog.ErrorContext(ctx, "request failed", "error", err, "kind", kind)
	} else {
		slog.InfoContext(ctx, "request rejected", "error", err, "kind", kind)
	}

	body := gin.H{"success": false, "message": message}
	if !r.IsProduction {
		body["detail"] = err.Error()
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}

// BadRequest answers malformed request bodies.
func (r ErrorResponder) BadRequest(c *gin.Context, err error) {
	slog.WarnContext(c.Request.Context(), "invalid request body", "error", err)
	body := gin.H{"success": false, "message": "Invalid request body"}
	if !r.IsProduction {
		body["detail"] = err.Error()
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, body)
}

// bindFlexible binds a JSON body when present, otherwise query parameters.
// Used by GET endpoints whose clients send either form.
func bindFlexible(c *gin.Context, dst any) error {
	if c.Request.ContentLength > 0 {
		return c.ShouldBindJSON(dst)
	}
	return c.ShouldBindQuery(dst)
}
