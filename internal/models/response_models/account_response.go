package response_models

type AccountLoginResponse struct {
	Token string `json:"token"`
	Tier  string `json:"tier"`
}

type AccountResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Tier  string `json:"tier"`
}
