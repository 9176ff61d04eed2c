package pipeline

import (
	"encoding/json"
	"net/http"
)

const (
	notFoundMessage = "Endpoint não encontrado"
	internalPrefix  = "Erro interno: "
)

// Event is the transport-neutral request handed over by the hosting layer.
type Event struct {
	Method    string
	Path      string
	Body      string
	RequestID string
}

// Response is the envelope returned to the hosting layer.
type Response struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       string            `json:"body"`
}

type predictRequest struct {
	Image *string `json:"image"`
}

type errorBody struct {
	Error string `json:"error"`
}

func jsonResponse(status int, headers map[string]string, v any) Response {
	body, err := json.Marshal(v)
	if err != nil {
		status, headers = http.StatusInternalServerError, nil
		body, _ = json.Marshal(errorBody{Error: internalPrefix + err.Error()})
	}
	return Response{StatusCode: status, Headers: headers, Body: string(body)}
}

// Envelope converts a pipeline failure into its response.
func Envelope(err error) Response {
	pe := classify(err)
	if pe.Kind == KindRouteNotFound {
		return jsonResponse(http.StatusNotFound, nil, errorBody{Error: notFoundMessage})
	}
	return jsonResponse(http.StatusInternalServerError, nil, errorBody{Error: internalPrefix + pe.Err.Error()})
}
