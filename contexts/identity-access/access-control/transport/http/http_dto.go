package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type AssignRoleRequest struct {
	Account string `json:"account"`
	Role    string `json:"role"`
}

type AccountRoleResponse struct {
	Account string `json:"account"`
	Role    string `json:"role"`
	HasRole bool   `json:"has_role"`
}
