package gateway

import (
	"strconv"

	"github.com/example/shopfront/pkg/apperror"
	"github.com/example/shopfront/pkg/repository"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response is the envelope of every API reply. Status always equals the HTTP status.
type Response struct {
	Message string      `json:"message"`
	Body    interface{} `json:"body"`
	Status  int         `json:"status"`
}

// ListBody is the body of paginated list replies.
type ListBody[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

func newListBody[T any](items []T, total int64, page repository.Page) ListBody[T] {
	if items == nil {
		items = []T{}
	}
	page = page.Normalize()
	return ListBody[T]{Items: items, Total: total, Page: page.Number, PageSize: page.Size}
}

func respond(c *gin.Context, status int, message string, body interface{}) {
	c.JSON(status, Response{Message: message, Body: body, Status: status})
}

// fail writes err as an envelope. Internal errors are logged and their
// details withheld from the client.
func (g *Gateway) fail(c *gin.Context, err error) {
	appErr := apperror.From(err)
	status := apperror.HTTPStatus(appErr.Kind)
	message := appErr.Message

	if appErr.Kind == apperror.KindInternal {
		g.logger.Error("Request failed",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		message = "internal server error"
	}

	c.AbortWithStatusJSON(status, Response{Message: message, Status: status})
}

type pageQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1"`
}

func (q pageQuery) toPage() repository.Page {
	return repository.Page{Number: q.Page, Size: q.PageSize}
}

func bindPage(c *gin.Context) (repository.Page, error) {
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return repository.Page{}, apperror.Validation("invalid pagination: %v", err)
	}
	return q.toPage(), nil
}

func bindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperror.Validation("invalid request body: %v", err)
	}
	return nil
}

func idParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.Validation("invalid %s", name)
	}
	return uint(id), nil
}
