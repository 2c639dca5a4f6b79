package response_models

import "stepwise/internal/models/db_models"

type AccountLoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

type AccountResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func NewAccountResponse(a *db_models.Account) AccountResponse {
	return AccountResponse{ID: a.ID.String(), Name: a.Name, Email: a.Email}
}
