package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/campus-admin-api/internal/middleware"
	"github.com/noah-isme/campus-admin-api/internal/models"
	apperrors "github.com/noah-isme/campus-admin-api/pkg/errors"
)

var validate = validator.New()

// bindJSON decodes and validates a JSON request body.
func bindJSON(c *gin.Context, dest interface{}) error {
	if err := c.ShouldBindJSON(dest); err != nil {
		return apperrors.WithDetails(apperrors.ErrValidation, "malformed request body")
	}
	if err := validate.Struct(dest); err != nil {
		var details []string
		if errs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range errs {
				details = append(details, fe.Field()+" failed "+fe.Tag()+" validation")
			}
		}
		return apperrors.WithDetails(apperrors.ErrValidation, details...)
	}
	return nil
}

// claims returns the authenticated principal or an unauthorized error.
func claims(c *gin.Context) (*models.JWTClaims, error) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return nil, apperrors.ErrUnauthorized
	}
	return claims, nil
}

// pageParams reads the page and per_page query values.
func pageParams(c *gin.Context) (page, size int) {
	page = intQuery(c, "page", 1)
	size = intQuery(c, "per_page", 20)
	return page, size
}

// invalidParam flags a query or path parameter that failed validation.
func invalidParam(name string) error {
	return apperrors.WithDetails(apperrors.ErrValidation, "invalid "+name+" parameter")
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
