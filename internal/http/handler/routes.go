package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"minga/internal/logger"
	"minga/internal/model"
	"minga/internal/service"
)

// Deps are the collaborators the HTTP layer talks to. It never touches datastore clients directly.
type Deps struct {
	Users   service.UserService
	Health  service.HealthService
	Metrics prometheus.Gatherer
	Log     *logger.Logger
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers only parse input and map use-case results and errors to responses.
func RegisterRoutes(app *fiber.App, d Deps) {
	log := d.Log
	if log == nil {
		log = logger.Nop()
	}
	validate := validator.New()

	app.Get("/health", HealthCheck(d.Health, log))
	app.Get("/healthz", LivenessProbe())

	if d.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Metrics, promhttp.HandlerOpts{})))
	}

	app.Get("/users", ListUsers(d.Users, log))
	app.Post("/users", CreateUser(d.Users, validate, log))
	app.Get("/users/:id", GetUser(d.Users, log))
}

// HealthCheck reports the aggregated datastore status.
// healthy and degraded answer 200; unhealthy or a use-case failure answers 503.
func HealthCheck(svc service.HealthService, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status, err := svc.Check(c.UserContext())
		if err != nil {
			log.Error("health check error", "request_id", requestIDFromCtx(c), "error", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":    model.StatusUnhealthy,
				"timestamp": time.Now().UTC(),
				"error":     err.Error(),
			})
		}

		code := fiber.StatusOK
		if status.Status == model.StatusUnhealthy {
			code = fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(status)
	}
}

// LivenessProbe answers 200 without touching any dependency.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ListUsers handles GET /users?limit=&offset=. Missing values use the defaults;
// the response echoes the bounds the service applied.
func ListUsers(svc service.UserService, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", strconv.Itoa(service.DefaultLimit)))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		page, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			log.Error("error fetching users", "request_id", requestIDFromCtx(c), "error", err)
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "failed to fetch users")
		}
		return c.JSON(page)
	}
}

// CreateUser handles POST /users with a JSON body {email, name}.
func CreateUser(svc service.UserService, validate *validator.Validate, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in model.CreateUserInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be JSON")
		}
		if err := validate.Struct(in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "FIELDS_REQUIRED", "email and name are required")
		}

		u, err := svc.Create(c.UserContext(), in)
		if err != nil {
			if errors.Is(err, service.ErrDuplicateEmail) {
				return writeError(c, fiber.StatusConflict, "EMAIL_EXISTS", err.Error())
			}
			// Every other failure is a 500. Rule violations keep their message and code.
			log.Error("error creating user", "request_id", requestIDFromCtx(c), "error", err)
			if errors.Is(err, service.ErrValidation) {
				return writeError(c, fiber.StatusInternalServerError, "VALIDATION_ERROR", err.Error())
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "failed to create user")
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": u})
	}
}

// GetUser handles GET /users/:id.
func GetUser(svc service.UserService, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		u, err := svc.Get(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "user not found")
			}
			log.Error("error fetching user", "request_id", requestIDFromCtx(c), "error", err)
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "failed to fetch user")
		}
		return c.JSON(fiber.Map{"user": u})
	}
}
