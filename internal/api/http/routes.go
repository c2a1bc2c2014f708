package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/i474232898/weather-lookup/internal/common"
	"github.com/i474232898/weather-lookup/internal/search"
	"github.com/i474232898/weather-lookup/internal/store"
	"github.com/i474232898/weather-lookup/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, runner search.Runner, searcher *search.Searcher, sessions *store.SessionStore) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather", func(c *fiber.Ctx) error {
		q := cityQuery{City: c.Query("city")}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snapshot, err := runner.Run(c.UserContext(), q.City)
		if err != nil {
			return writeFailure(c, err)
		}
		return c.JSON(snapshot)
	})

	v1.Post("/searches", func(c *fiber.Ctx) error {
		var req searchRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if common.IsBlank(req.City) {
			return writeFailure(c, &weather.PipelineFailure{Kind: weather.FailureEmptyInput, Err: weather.ErrEmptyInput})
		}
		if req.Session == "" {
			req.Session = uuid.NewString()
		}

		ticket := searcher.Submit(req.Session, req.City)
		return c.Status(fiber.StatusAccepted).JSON(ticket)
	})

	v1.Get("/searches/:session", func(c *fiber.Ctx) error {
		session := c.Params("session")
		if err := validate.Var(session, "required,uuid"); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "session must be a uuid")
		}

		entry, err := sessions.Get(session)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no search for session")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read session")
		}

		return c.JSON(newEntryBody(entry))
	})
}

// cityQuery holds the query parameters of the lookup endpoint. Emptiness is
// left to the pipeline so it reports empty_input.
type cityQuery struct {
	City string `validate:"max=200"`
}

type searchRequest struct {
	Session string `json:"session" validate:"omitempty,uuid"`
	City    string `json:"city" validate:"max=200"`
}

// failureBody is the JSON shape of a pipeline failure.
type failureBody struct {
	Error    bool   `json:"error"`
	Kind     string `json:"kind"`
	NotFound bool   `json:"notFound"`
	Message  string `json:"message"`
	Detail   string `json:"detail"`
}

func newFailureBody(err error) failureBody {
	body := failureBody{
		Error:   true,
		Kind:    "unknown",
		Message: weather.UserMessage(err),
		Detail:  err.Error(),
	}
	if f, ok := weather.AsFailure(err); ok {
		body.Kind = f.Kind.String()
		body.NotFound = f.NotFound()
	}
	return body
}

func failureStatus(err error) int {
	f, ok := weather.AsFailure(err)
	if !ok {
		return fiber.StatusInternalServerError
	}
	switch {
	case f.Kind == weather.FailureEmptyInput:
		return fiber.StatusBadRequest
	case f.Kind == weather.FailureCanceled:
		return fiber.StatusServiceUnavailable
	case f.NotFound():
		return fiber.StatusNotFound
	default:
		return fiber.StatusBadGateway
	}
}

func writeFailure(c *fiber.Ctx, err error) error {
	return c.Status(failureStatus(err)).JSON(newFailureBody(err))
}

type entryBody struct {
	store.Entry
	Failure *failureBody `json:"failure,omitempty"`
}

func newEntryBody(entry store.Entry) entryBody {
	body := entryBody{Entry: entry}
	if entry.Failure != nil {
		fb := newFailureBody(entry.Failure)
		body.Failure = &fb
	}
	return body
}
