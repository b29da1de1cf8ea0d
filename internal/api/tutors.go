package api

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/petmanager/petman/internal/models"
)

const tutorsPath = "/v1/tutores"

// ListTutors fetches one page of the tutor registry.
func (c *Client) ListTutors(ctx context.Context, p ListParams) (models.Page[models.Tutor], error) {
	var page models.Page[models.Tutor]
	err := c.doJSON(ctx, http.MethodGet, tutorsPath+"?"+p.query().Encode(), nil, &page)
	return page, err
}

// GetTutor fetches a single tutor by id.
func (c *Client) GetTutor(ctx context.Context, id int64) (models.Tutor, error) {
	var tutor models.Tutor
	err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("%s/%d", tutorsPath, id), nil, &tutor)
	return tutor, err
}

// CreateTutor validates and creates a tutor, returning the stored record.
func (c *Client) CreateTutor(ctx context.Context, in models.TutorInput) (models.Tutor, error) {
	if err := c.validate.Struct(in); err != nil {
		return models.Tutor{}, fmt.Errorf("invalid tutor: %w", err)
	}
	var tutor models.Tutor
	err := c.doJSON(ctx, http.MethodPost, tutorsPath, in, &tutor)
	return tutor, err
}

// UpdateTutor validates and replaces a tutor's fields.
func (c *Client) UpdateTutor(ctx context.Context, id int64, in models.TutorInput) (models.Tutor, error) {
	if err := c.validate.Struct(in); err != nil {
		return models.Tutor{}, fmt.Errorf("invalid tutor: %w", err)
	}
	var tutor models.Tutor
	err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("%s/%d", tutorsPath, id), in, &tutor)
	return tutor, err
}

// DeleteTutor removes a tutor.
func (c *Client) DeleteTutor(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", tutorsPath, id), nil, nil)
}

// UploadTutorPhoto attaches an image to a tutor.
func (c *Client) UploadTutorPhoto(ctx context.Context, id int64, filename string, data io.Reader) error {
	return c.uploadPhoto(ctx, fmt.Sprintf("%s/%d/foto", tutorsPath, id), filename, data)
}
