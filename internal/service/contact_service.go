package service

import (
	"context"
	"log/slog"
	"strings"

	"tecnopronto/internal/availability"
	"tecnopronto/internal/middleware"
	"tecnopronto/internal/models"
	"tecnopronto/internal/observability"
	"tecnopronto/internal/repository"
	"tecnopronto/internal/validation"
)

type ContactService struct {
	contactRepo   repository.ContactRepository
	engine        *availability.Engine
	supportEmail  string
	supportNumber string
}

type ContactInput struct {
	FirstName string `json:"first_name" form:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" form:"last_name" validate:"required,max=100"`
	Email     string `json:"email" form:"email" validate:"required,email,max=254"`
	Message   string `json:"message" form:"message" validate:"required,max=5000"`
}

// ContactInfo is what the contact page shows next to the form.
type ContactInfo struct {
	SupportEmail  string              `json:"support_email"`
	SupportNumber string              `json:"support_number"`
	Availability  availability.Status `json:"availability"`
}

func NewContactService(
	contactRepo repository.ContactRepository,
	engine *availability.Engine,
	supportEmail, supportNumber string,
) *ContactService {
	return &ContactService{
		contactRepo:   contactRepo,
		engine:        engine,
		supportEmail:  supportEmail,
		supportNumber: supportNumber,
	}
}

func (s *ContactService) Submit(ctx context.Context, in ContactInput) (*models.ContactMessage, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.Message = strings.TrimSpace(in.Message)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	msg := &models.ContactMessage{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Message:   in.Message,
	}
	if err := s.contactRepo.Create(ctx, msg); err != nil {
		return nil, err
	}

	observability.ContactMessages.Inc()
	middleware.Logger.InfoContext(ctx, "contact message received",
		slog.Uint64("message_id", uint64(msg.ID)),
		slog.Int("length", len(msg.Message)),
	)
	return msg, nil
}

func (s *ContactService) Info(_ context.Context) ContactInfo {
	return ContactInfo{
		SupportEmail:  s.supportEmail,
		SupportNumber: s.supportNumber,
		Availability:  s.engine.Status(),
	}
}
