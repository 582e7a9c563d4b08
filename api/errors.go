package api

import (
	"net/http"

	"github.com/Domenick1991/autorental/internal/domain"
	"github.com/gin-gonic/gin"
)

type errorBody struct {
	Code    domain.ErrorCode `json:"code"`
	Message string           `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// writeError maps a business error to the envelope every endpoint shares.
// Internal errors are reported with a generic message so infrastructure
// details never leak to clients.
func writeError(c *gin.Context, err error) {
	code := domain.CodeOf(err)
	message := err.Error()
	if code == domain.CodeInternal {
		message = "internal error"
	}
	c.JSON(httpStatus(code), errorResponse{Error: errorBody{Code: code, Message: message}})
}

func writeErrorCode(c *gin.Context, code domain.ErrorCode, message string) {
	c.JSON(httpStatus(code), errorResponse{Error: errorBody{Code: code, Message: message}})
}

func httpStatus(code domain.ErrorCode) int {
	switch code {
	case domain.CodeValidation:
		return http.StatusBadRequest
	case domain.CodeUnauthorized:
		return http.StatusUnauthorized
	case domain.CodeForbidden:
		return http.StatusForbidden
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeConflict:
		return http.StatusConflict
	case domain.CodeBusinessRule:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
