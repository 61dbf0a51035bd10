package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type SubscribeRequest struct {
	User string `json:"user"`
}

type SubscriptionStatusResponse struct {
	User       string `json:"user"`
	PollID     string `json:"poll_id"`
	Subscribed bool   `json:"subscribed"`
}
