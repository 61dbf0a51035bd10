package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RegisterUserRequest struct {
	Account     string `json:"account"`
	DisplayName string `json:"display_name"`
	Age         int    `json:"age"`
	Location    string `json:"location"`
	Contact     string `json:"contact"`
}

type RegisterInstanceRequest struct {
	Account      string `json:"account"`
	Organization string `json:"organization"`
	Contact      string `json:"contact"`
}

type AccountResponse struct {
	Account      string `json:"account"`
	Class        string `json:"class"`
	IsUser       bool   `json:"is_user"`
	IsInstance   bool   `json:"is_instance"`
	DisplayName  string `json:"display_name,omitempty"`
	Organization string `json:"organization,omitempty"`
	Age          int    `json:"age,omitempty"`
	Location     string `json:"location,omitempty"`
	Contact      string `json:"contact,omitempty"`
}
