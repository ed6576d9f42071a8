package util

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/render"

	"github.com/onetakeda/sapio-webhooks/pkg/log"
)

type Response struct {
	StatusCode int `json:"-"`
}

func (res Response) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, res.StatusCode)
	return nil
}

type ServerResponse struct {
	Response
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func NewServerResponse(msg string, object interface{}, statusCode int) ServerResponse {
	data, err := json.Marshal(object)
	if err != nil {
		log.FromContext(context.Background()).Errorf("unable to marshal response data - %s", err)
	}

	return ServerResponse{
		Response: Response{StatusCode: statusCode},
		Status:   true,
		Message:  msg,
		Data:     data,
	}
}

func NewErrorResponse(msg string, statusCode int) ServerResponse {
	return ServerResponse{
		Response: Response{StatusCode: statusCode},
		Status:   false,
		Message:  msg,
	}
}
