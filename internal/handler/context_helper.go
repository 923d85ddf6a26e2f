package handler

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-adp-console/internal/dto"
	"github.com/noah-isme/sma-adp-console/internal/middleware"
	"github.com/noah-isme/sma-adp-console/internal/models"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
	"github.com/noah-isme/sma-adp-console/pkg/response"
)

func currentUser(c *gin.Context) *models.User {
	return middleware.CurrentUser(c)
}

func pageQuery(c *gin.Context) dto.PageQuery {
	var p dto.PageQuery
	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		p.Page = page
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		p.Limit = limit
	}
	return p
}

func boolQuery(c *gin.Context, key string) *bool {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &val
}

// bindJSON decodes the body into dest and answers 400 on failure.
func bindJSON(c *gin.Context, dest interface{}, message string) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message))
		return false
	}
	return true
}

// formFile opens the multipart part named field. The caller closes the
// returned file.
func formFile(c *gin.Context, field string) (dto.Attachment, multipart.File, bool) {
	header, err := c.FormFile(field)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, field+" is required"))
		return dto.Attachment{}, nil, false
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable upload"))
		return dto.Attachment{}, nil, false
	}
	return dto.Attachment{Filename: header.Filename, Content: file}, file, true
}

func meta(c *gin.Context) map[string]interface{} {
	return middleware.ExtractMeta(c)
}

func paged[T any](c *gin.Context, page models.Page[T]) {
	pagination := page.Pagination
	response.JSON(c, http.StatusOK, page.Items, &pagination, meta(c))
}
