package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/kalpovskii/taskboard/internal/app/models"
	"github.com/kalpovskii/taskboard/internal/app/services"
	"github.com/kalpovskii/taskboard/internal/logging"
)

type taskService interface {
	List(ctx context.Context, sortBy, sortOrder string) ([]models.Task, error)
	Get(ctx context.Context, id string) (*models.Task, error)
	Create(ctx context.Context, in models.CreateTaskInput) (*models.Task, error)
	Update(ctx context.Context, id string, in models.UpdateTaskInput) (*models.Task, error)
	Delete(ctx context.Context, id string) error
}

var errRouteNotFound = errors.New("route not found")

func setupRouter(service taskService, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			logger.ErrorContext(c.Request.Context(), "panic in handler", slog.Any("panic", recovered))
			c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody("Internal Server Error"))
		}),
		logging.GinMiddleware(logger),
		errorHandler(logger),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h := &taskHandlers{service: service}
	tasks := r.Group("/tasks")
	tasks.GET("", h.list)
	tasks.GET("/:id", h.get)
	tasks.POST("", h.create)
	tasks.PUT("/:id", h.update)
	tasks.DELETE("/:id", h.delete)

	r.NoRoute(func(c *gin.Context) {
		_ = c.Error(errRouteNotFound)
	})

	return r
}

type taskHandlers struct {
	service taskService
}

func (h *taskHandlers) list(c *gin.Context) {
	tasks, err := h.service.List(c.Request.Context(), c.Query("sortBy"), c.Query("sortOrder"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *taskHandlers) get(c *gin.Context) {
	task, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *taskHandlers) create(c *gin.Context) {
	var in models.CreateTaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		_ = c.Error(bodyError(err))
		return
	}

	task, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *taskHandlers) update(c *gin.Context) {
	var in models.UpdateTaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		_ = c.Error(bodyError(err))
		return
	}

	task, err := h.service.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *taskHandlers) delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// bodyError turns a JSON decoding failure into a validation error.
func bodyError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return &services.ValidationError{Fields: map[string]string{
			typeErr.Field: "must be " + jsonTypeName(typeErr.Type),
		}}
	}
	return &services.ValidationError{Fields: map[string]string{"body": "malformed JSON body"}}
}

// jsonTypeName names t the way a JSON client sees it.
func jsonTypeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Slice, reflect.Array:
		return "an array"
	default:
		return "an object"
	}
}

func errorBody(message string) gin.H {
	return gin.H{"success": false, "message": message}
}

// errorHandler renders the last error pushed by a handler as the uniform
// {success, message} envelope.
func errorHandler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		var (
			validationErr *services.ValidationError
			infraErr      *services.InfrastructureError
		)
		switch {
		case errors.As(err, &validationErr):
			body := errorBody("Validation failed")
			body["error"] = gin.H{"fieldErrors": validationErr.Fields}
			c.AbortWithStatusJSON(http.StatusBadRequest, body)
		case errors.Is(err, services.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, errorBody("Task not found"))
		case errors.Is(err, errRouteNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, errorBody("Route not found"))
		case errors.As(err, &infraErr):
			logger.ErrorContext(c.Request.Context(), "store failure", slog.String("op", infraErr.Op), slog.Any("error", infraErr.Err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody("Database operation failed"))
		default:
			logger.ErrorContext(c.Request.Context(), "unhandled error", slog.Any("error", err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody("Internal Server Error"))
		}
	}
}
