package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/petmanager/petman/internal/api"
	"github.com/petmanager/petman/internal/models"
)

func (a *App) ListPets(ctx context.Context) error {
	a.NavigateTo(routePets)
	page, err := a.api.ListPets(ctx, api.ListParams{Page: 0, Size: 20})
	if err != nil {
		return a.reportErr(ctx, "listing pets", err)
	}
	if len(page.Content) == 0 {
		fmt.Fprintln(a.out, "No pets registered.")
		return nil
	}
	for _, p := range page.Content {
		fmt.Fprintf(a.out, "%4d  %-20s %-15s %d years\n", p.ID, p.Name, p.Breed, p.Age)
	}
	fmt.Fprintf(a.out, "page %d of %d (%d total)\n", page.Page+1, page.TotalPages, page.Total)
	return nil
}

func (a *App) ShowPet(ctx context.Context, id string) error {
	petID, err := parseID(id)
	if err != nil {
		fmt.Fprintln(a.out, "Invalid id:", id)
		return nil
	}
	pet, err := a.api.GetPet(ctx, petID)
	if err != nil {
		return a.reportErr(ctx, "fetching pet", err)
	}
	fmt.Fprintf(a.out, "Pet #%d\n  Name:  %s\n  Breed: %s\n  Age:   %d\n", pet.ID, pet.Name, pet.Breed, pet.Age)
	if pet.Photo != nil {
		fmt.Fprintf(a.out, "  Photo: %s\n", pet.Photo.URL)
	}
	for _, t := range pet.Tutors {
		fmt.Fprintf(a.out, "  Tutor: %s (#%d)\n", t.Name, t.ID)
	}
	return nil
}

func (a *App) AddPet(ctx context.Context) error {
	in, err := a.promptPet(models.PetInput{})
	if err != nil {
		return err
	}
	pet, err := a.api.CreatePet(ctx, in)
	if err != nil {
		return a.reportErr(ctx, "creating pet", err)
	}
	fmt.Fprintf(a.out, "Created pet #%d.\n", pet.ID)
	return nil
}

func (a *App) EditPet(ctx context.Context, id string) error {
	petID, err := parseID(id)
	if err != nil {
		fmt.Fprintln(a.out, "Invalid id:", id)
		return nil
	}
	current, err := a.api.GetPet(ctx, petID)
	if err != nil {
		return a.reportErr(ctx, "fetching pet", err)
	}
	in, err := a.promptPet(models.PetInput{Name: current.Name, Breed: current.Breed, Age: current.Age})
	if err != nil {
		return err
	}
	if _, err := a.api.UpdatePet(ctx, petID, in); err != nil {
		return a.reportErr(ctx, "updating pet", err)
	}
	fmt.Fprintf(a.out, "Updated pet #%d.\n", petID)
	return nil
}

func (a *App) DeletePet(ctx context.Context, id string) error {
	petID, err := parseID(id)
	if err != nil {
		fmt.Fprintln(a.out, "Invalid id:", id)
		return nil
	}
	if err := a.api.DeletePet(ctx, petID); err != nil {
		return a.reportErr(ctx, "deleting pet", err)
	}
	fmt.Fprintf(a.out, "Deleted pet #%d.\n", petID)
	return nil
}

func (a *App) AttachPetPhoto(ctx context.Context, id, file string) error {
	petID, err := parseID(id)
	if err != nil {
		fmt.Fprintln(a.out, "Invalid id:", id)
		return nil
	}
	f, err := os.Open(file)
	if err != nil {
		fmt.Fprintln(a.out, "Cannot open file:", err)
		return nil
	}
	defer f.Close()
	if err := a.api.UploadPetPhoto(ctx, petID, filepath.Base(file), f); err != nil {
		return a.reportErr(ctx, "uploading photo", err)
	}
	fmt.Fprintln(a.out, "Photo uploaded.")
	return nil
}

// promptPet collects pet fields, offering current values as defaults.
func (a *App) promptPet(current models.PetInput) (models.PetInput, error) {
	name, err := a.promptDefault("Name", current.Name)
	if err != nil {
		return models.PetInput{}, err
	}
	breed, err := a.promptDefault("Breed", current.Breed)
	if err != nil {
		return models.PetInput{}, err
	}
	ageStr, err := a.promptDefault("Age", strconv.Itoa(current.Age))
	if err != nil {
		return models.PetInput{}, err
	}
	age, err := strconv.Atoi(ageStr)
	if err != nil {
		fmt.Fprintln(a.out, "Age must be a number, keeping", current.Age)
		age = current.Age
	}
	return models.PetInput{Name: name, Breed: breed, Age: age}, nil
}

func (a *App) promptDefault(label, current string) (string, error) {
	prompt := label
	if current != "" {
		prompt = fmt.Sprintf("%s [%s]", label, current)
	}
	v, err := GetSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return "", err
	}
	if v == "" {
		return current, nil
	}
	return v, nil
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
