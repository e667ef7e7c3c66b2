package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type GrantRoleRequest struct {
	Account  string `json:"account"`
	RoleName string `json:"role_name"`
}

type RevokeRoleRequest struct {
	Account  string `json:"account"`
	RoleName string `json:"role_name"`
}

type RoleAssignmentResponse struct {
	Account   string `json:"account"`
	RoleName  string `json:"role_name"`
	GrantedBy string `json:"granted_by"`
	GrantedAt string `json:"granted_at"`
}

type AccountRolesResponse struct {
	Account string                   `json:"account"`
	Roles   []RoleAssignmentResponse `json:"roles"`
}
