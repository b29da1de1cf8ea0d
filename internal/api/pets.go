package api

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/petmanager/petman/internal/models"
)

const petsPath = "/v1/pets"

// ListPets fetches one page of the pet registry.
func (c *Client) ListPets(ctx context.Context, p ListParams) (models.Page[models.Pet], error) {
	var page models.Page[models.Pet]
	err := c.doJSON(ctx, http.MethodGet, petsPath+"?"+p.query().Encode(), nil, &page)
	return page, err
}

// GetPet fetches a single pet by id.
func (c *Client) GetPet(ctx context.Context, id int64) (models.Pet, error) {
	var pet models.Pet
	err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("%s/%d", petsPath, id), nil, &pet)
	return pet, err
}

// CreatePet validates and creates a pet, returning the stored record.
func (c *Client) CreatePet(ctx context.Context, in models.PetInput) (models.Pet, error) {
	if err := c.validate.Struct(in); err != nil {
		return models.Pet{}, fmt.Errorf("invalid pet: %w", err)
	}
	var pet models.Pet
	err := c.doJSON(ctx, http.MethodPost, petsPath, in, &pet)
	return pet, err
}

// UpdatePet validates and replaces a pet's fields.
func (c *Client) UpdatePet(ctx context.Context, id int64, in models.PetInput) (models.Pet, error) {
	if err := c.validate.Struct(in); err != nil {
		return models.Pet{}, fmt.Errorf("invalid pet: %w", err)
	}
	var pet models.Pet
	err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("%s/%d", petsPath, id), in, &pet)
	return pet, err
}

// DeletePet removes a pet.
func (c *Client) DeletePet(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", petsPath, id), nil, nil)
}

// UploadPetPhoto attaches an image to a pet.
func (c *Client) UploadPetPhoto(ctx context.Context, id int64, filename string, data io.Reader) error {
	return c.uploadPhoto(ctx, fmt.Sprintf("%s/%d/foto", petsPath, id), filename, data)
}
