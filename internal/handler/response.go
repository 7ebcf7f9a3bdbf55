package handler

import (
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
)

const (
	msgMissingPrompt = "Missing required parameter: prompt"
	msgNoImage       = "No image in Bedrock response"
)

func headers() map[string]string {
	return map[string]string{
		"Content-Type":                 "application/json",
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type",
		"Access-Control-Allow-Methods": "GET,OPTIONS",
	}
}

type okBody struct {
	OK bool `json:"ok"`
}

type errorBody struct {
	Error string          `json:"error"`
	Raw   json.RawMessage `json:"raw,omitempty"`
}

type successBody struct {
	PresignedURL string `json:"presigned_url"`
}

func respond(status int, payload any) (events.APIGatewayProxyResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers(),
		Body:       string(body),
	}, nil
}

func preflight() (events.APIGatewayProxyResponse, error) {
	return respond(http.StatusOK, okBody{OK: true})
}

func missingPrompt() (events.APIGatewayProxyResponse, error) {
	return respond(http.StatusBadRequest, errorBody{Error: msgMissingPrompt})
}

func noImage(raw json.RawMessage) (events.APIGatewayProxyResponse, error) {
	return respond(http.StatusBadGateway, errorBody{Error: msgNoImage, Raw: raw})
}

func success(url string) (events.APIGatewayProxyResponse, error) {
	return respond(http.StatusOK, successBody{PresignedURL: url})
}
