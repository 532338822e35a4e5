package api

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/edupoint/thesis-portal-api/utils/response"
)

type APIServer struct {
	app           *fiber.App
	listenAddress string
}

// NewApp builds the Fiber app with the shared configuration: body headroom
// over the 10MB submission cap and an error handler that keeps framework
// errors inside the standard response envelope.
func NewApp() *fiber.App {
	return fiber.New(fiber.Config{
		BodyLimit:    12 * 1024 * 1024,
		ErrorHandler: handleError,
	})
}

// handleError maps errors that escape the handlers onto the response
// envelope. Bodies over the BodyLimit are rejected by the framework before
// the upload handler can size-check them, so 413 carries the same code as
// the handler's own size gate.
func handleError(c *fiber.Ctx, err error) error {
	statusCode := fiber.StatusInternalServerError
	message := "Internal server error"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		statusCode = fiberErr.Code
		message = fiberErr.Message
	}

	switch statusCode {
	case fiber.StatusRequestEntityTooLarge:
		return response.Error(c, fiber.StatusBadRequest, "File exceeds the 10MB limit", response.CodeFileTooLarge)
	case fiber.StatusNotFound:
		return response.NotFound(c, message)
	case fiber.StatusMethodNotAllowed:
		return response.Error(c, statusCode, message, response.CodeBadRequest)
	default:
		return response.Error(c, statusCode, message, response.CodeInternalError)
	}
}

func NewAPIServer(listenAddress string) *APIServer {
	return &APIServer{
		app:           NewApp(),
		listenAddress: listenAddress,
	}
}

func (s *APIServer) GetEngine() *fiber.App {
	return s.app
}

func (s *APIServer) Run() error {
	log.Println("Starting API Server")
	log.Printf("Listening on %s", s.listenAddress)

	return s.app.Listen(s.listenAddress)
}
