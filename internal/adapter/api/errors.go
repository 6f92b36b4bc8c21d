package api

import (
	"fmt"
	"github.com/labstack/echo/v4"
	"net/http"
)

const MessageInternal = "Internal server error"

type JsonErrorModel struct {
	Message string `json:"message"`
}

func JsonError(c echo.Context, status int, content any) error {
	data := &JsonErrorModel{Message: fmt.Sprintf("%v", content)}
	return c.JSON(status, data)
}

// internalError logs err and answers with a generic 500 body.
func (s *Server) internalError(c echo.Context, msg string, err error) error {
	s.logger.Error(msg, "path", c.Path(), "err", err)
	return JsonError(c, http.StatusInternalServerError, MessageInternal)
}
