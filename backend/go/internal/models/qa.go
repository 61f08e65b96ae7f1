package models

// QAResponse is the body returned for an answered question.
type QAResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ErrorResponse is the body returned for every failed request.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// WelcomeResponse is returned by the root route.
type WelcomeResponse struct {
	Message string `json:"message"`
}
