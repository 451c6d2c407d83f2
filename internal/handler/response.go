package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"blog_backend/internal/logging"
	"blog_backend/internal/middleware"
	"blog_backend/internal/model"
	"blog_backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var registerValidatorsOnce sync.Once

// registerValidators adds the notblank rule and reports fields by their
// JSON names. Safe to call from every handler constructor.
func registerValidators() {
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
			panic(fmt.Sprintf("failed to register notblank validation: %v", err))
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

func abortWith(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, model.NewErrorResponse(code, message))
}

// respondError maps a service error to its HTTP status. Anything outside
// the known categories is logged and reported as a generic 500.
func respondError(c *gin.Context, log logging.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		abortWith(c, http.StatusBadRequest, model.CodeValidation, err.Error())
	case errors.Is(err, service.ErrInvalidCredential):
		abortWith(c, http.StatusUnauthorized, model.CodeUnauthorized, err.Error())
	case errors.Is(err, service.ErrForbidden):
		abortWith(c, http.StatusForbidden, model.CodeForbidden, err.Error())
	case errors.Is(err, service.ErrNotFound):
		abortWith(c, http.StatusNotFound, model.CodeNotFound, err.Error())
	case errors.Is(err, service.ErrConflict):
		abortWith(c, http.StatusConflict, model.CodeConflict, err.Error())
	default:
		_ = c.Error(err)
		log.Error(c.Request.Context(), "request failed",
			"request_id", c.GetString(middleware.RequestIDKey),
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err)
		abortWith(c, http.StatusInternalServerError, model.CodeInternal, "An unexpected error occurred")
	}
}

// bindJSON decodes the body into req and answers 400 on failure.
func bindJSON(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, describeField(fe))
		}
		abortWith(c, http.StatusBadRequest, model.CodeValidation, strings.Join(msgs, "; "))
		return false
	}
	abortWith(c, http.StatusBadRequest, model.CodeValidation, "Invalid request body")
	return false
}

func describeField(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fe.Field() + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fe.Field() + " is invalid"
	}
}

// pathID parses a positive int64 path parameter and answers 400 otherwise.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		abortWith(c, http.StatusBadRequest, model.CodeValidation, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// queryInt reads an optional integer query parameter; absent yields 0.
func queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		abortWith(c, http.StatusBadRequest, model.CodeValidation, "Invalid "+name)
		return 0, false
	}
	return v, true
}
