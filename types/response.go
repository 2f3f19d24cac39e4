package types

// PredictResponse is returned by every prediction endpoint. Result is null
// when no answer could be produced.
type PredictResponse struct {
	Result *string `json:"result"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}

type WelcomeResponse struct {
	Message string `json:"message"`
}
