package models

// Tutor is a registry tutor (pet owner) as returned by the backend.
type Tutor struct {
	ID      int64  `json:"id"`
	Name    string `json:"nome"`
	Email   string `json:"email"`
	Phone   string `json:"telefone"`
	Address string `json:"endereco"`
	CPF     string `json:"cpf"`
	Photo   *Photo `json:"foto,omitempty"`
	Pets    []Pet  `json:"pets,omitempty"`
}

// TutorInput is the create/update payload for a tutor.
type TutorInput struct {
	Name    string `json:"nome" validate:"required"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"telefone" validate:"required,min=10"`
	Address string `json:"endereco" validate:"required"`
	CPF     string `json:"cpf" validate:"required,len=11,numeric"`
}

// Page is a paginated listing as returned by the backend.
type Page[T any] struct {
	Content    []T `json:"content"`
	Page       int `json:"page"`
	Size       int `json:"size"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}
