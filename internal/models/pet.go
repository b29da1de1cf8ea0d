package models

// Photo describes an uploaded image attached to a pet or tutor.
type Photo struct {
	ID          int64  `json:"id"`
	Name        string `json:"nome"`
	ContentType string `json:"contentType"`
	URL         string `json:"url"`
}

// Pet is a registry pet as returned by the backend.
type Pet struct {
	ID     int64   `json:"id"`
	Name   string  `json:"nome"`
	Breed  string  `json:"raca"`
	Age    int     `json:"idade"`
	Photo  *Photo  `json:"foto,omitempty"`
	Tutors []Tutor `json:"tutores,omitempty"`
}

// PetInput is the create/update payload for a pet.
type PetInput struct {
	Name  string `json:"nome" validate:"required"`
	Breed string `json:"raca" validate:"required"`
	Age   int    `json:"idade" validate:"gte=0"`
}
