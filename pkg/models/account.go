package models

type Account struct {
	ID             string `json:"id"`
	CredentialHash string `json:"-"`
	Role           string `json:"role"`
	Disabled       bool   `json:"disabled"`
}

type CreateAccountRequest struct {
	ID         string `json:"id" binding:"required"`
	Credential string `json:"credential" binding:"required"`
	Role       string `json:"role" binding:"required"`
}

type UpdateAccountRequest struct {
	Role     *string `json:"role"`
	Disabled *bool   `json:"disabled"`
}
