package cli

import (
	"context"
	"fmt"

	"github.com/petmanager/petman/internal/api"
	"github.com/petmanager/petman/internal/format"
	"github.com/petmanager/petman/internal/models"
)

func (a *App) ListTutors(ctx context.Context) error {
	a.NavigateTo(routeTutors)
	page, err := a.api.ListTutors(ctx, api.ListParams{Page: 0, Size: 20})
	if err != nil {
		return a.reportErr(ctx, "listing tutors", err)
	}
	if len(page.Content) == 0 {
		fmt.Fprintln(a.out, "No tutors registered.")
		return nil
	}
	for _, t := range page.Content {
		fmt.Fprintf(a.out, "%4d  %-25s %-18s %s\n", t.ID, t.Name, format.FormatPhone(t.Phone), format.MaskCPF(t.CPF))
	}
	fmt.Fprintf(a.out, "page %d of %d (%d total)\n", page.Page+1, page.TotalPages, page.Total)
	return nil
}

func (a *App) ShowTutor(ctx context.Context, id string) error {
	tutorID, err := parseID(id)
	if err != nil {
		fmt.Fprintln(a.out, "Invalid id:", id)
		return nil
	}
	t, err := a.api.GetTutor(ctx, tutorID)
	if err != nil {
		return a.reportErr(ctx, "fetching tutor", err)
	}
	fmt.Fprintf(a.out, "Tutor #%d\n  Name:    %s\n  Email:   %s\n  Phone:   %s\n  Address: %s\n  CPF:     %s\n",
		t.ID, t.Name, t.Email, format.FormatPhone(t.Phone), t.Address, format.FormatCPF(t.CPF))
	for _, p := range t.Pets {
		fmt.Fprintf(a.out, "  Pet: %s (#%d)\n", p.Name, p.ID)
	}
	return nil
}

func (a *App) AddTutor(ctx context.Context) error {
	in, err := a.promptTutor(models.TutorInput{})
	if err != nil {
		return err
	}
	t, err := a.api.CreateTutor(ctx, in)
	if err != nil {
		return a.reportErr(ctx, "creating tutor", err)
	}
	fmt.Fprintf(a.out, "Created tutor #%d.\n", t.ID)
	return nil
}

func (a *App) EditTutor(ctx context.Context, id string) error {
	tutorID, err := parseID(id)
	if err != nil {
		fmt.Fprintln(a.out, "Invalid id:", id)
		return nil
	}
	current, err := a.api.GetTutor(ctx, tutorID)
	if err != nil {
		return a.reportErr(ctx, "fetching tutor", err)
	}
	in, err := a.promptTutor(models.TutorInput{
		Name:    current.Name,
		Email:   current.Email,
		Phone:   current.Phone,
		Address: current.Address,
		CPF:     current.CPF,
	})
	if err != nil {
		return err
	}
	if _, err := a.api.UpdateTutor(ctx, tutorID, in); err != nil {
		return a.reportErr(ctx, "updating tutor", err)
	}
	fmt.Fprintf(a.out, "Updated tutor #%d.\n", tutorID)
	return nil
}

func (a *App) DeleteTutor(ctx context.Context, id string) error {
	tutorID, err := parseID(id)
	if err != nil {
		fmt.Fprintln(a.out, "Invalid id:", id)
		return nil
	}
	if err := a.api.DeleteTutor(ctx, tutorID); err != nil {
		return a.reportErr(ctx, "deleting tutor", err)
	}
	fmt.Fprintf(a.out, "Deleted tutor #%d.\n", tutorID)
	return nil
}

func (a *App) promptTutor(current models.TutorInput) (models.TutorInput, error) {
	name, err := a.promptDefault("Name", current.Name)
	if err != nil {
		return models.TutorInput{}, err
	}
	email, err := a.promptDefault("Email", current.Email)
	if err != nil {
		return models.TutorInput{}, err
	}
	phone, err := a.promptDefault("Phone (digits only)", current.Phone)
	if err != nil {
		return models.TutorInput{}, err
	}
	address, err := a.promptDefault("Address", current.Address)
	if err != nil {
		return models.TutorInput{}, err
	}
	cpf, err := a.promptDefault("CPF (11 digits)", current.CPF)
	if err != nil {
		return models.TutorInput{}, err
	}
	return models.TutorInput{
		Name:    name,
		Email:   email,
		Phone:   format.DigitsOnly(phone),
		Address: address,
		CPF:     format.DigitsOnly(cpf),
	}, nil
}
