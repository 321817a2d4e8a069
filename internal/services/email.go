package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cathealth/cathealth-backend/internal/data/repos"
	"github.com/cathealth/cathealth-backend/internal/pkg/logger"
	"github.com/cathealth/cathealth-backend/internal/platform/apierr"
	"github.com/cathealth/cathealth-backend/internal/platform/sendgrid"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// PlanPDFRenderer renders a wellness plan as a printable PDF document.
type PlanPDFRenderer interface {
	RenderPlanPDF(catName, planMarkdown string) ([]byte, error)
}

// SendPlanInput describes the delivery request. PlanID is optional; when set,
// the matching plan row is stamped with the delivery time.
type SendPlanInput struct {
	UserEmail   string
	PlanID      uuid.UUID
	CatName     string
	PlanContent string
	AttachPDF   bool
}

// EmailService delivers a generated wellness plan to the owner's inbox.
type EmailService interface {
	SendPlan(ctx context.Context, ident *Identity, in SendPlanInput) (string, error)
}

type emailService struct {
	log      *logger.Logger
	mailer   sendgrid.Client
	planRepo repos.PlanRepo
	pdf      PlanPDFRenderer
}

func NewEmailService(
	log *logger.Logger,
	mailer sendgrid.Client,
	planRepo repos.PlanRepo,
	pdf PlanPDFRenderer,
) EmailService {
	serviceLog := log.With("service", "EmailService")
	return &emailService{
		log:      serviceLog,
		mailer:   mailer,
		planRepo: planRepo,
		pdf:      pdf,
	}
}

func (es *emailService) SendPlan(ctx context.Context, ident *Identity, in SendPlanInput) (string, error) {
	if ident == nil {
		return "", apierr.Unauthorized(fmt.Errorf("authentication required to email a wellness plan"))
	}

	in.UserEmail = strings.TrimSpace(in.UserEmail)
	if in.UserEmail == "" || strings.TrimSpace(in.PlanContent) == "" {
		return "", apierr.BadRequest(apierr.CodeValidation, fmt.Errorf("email and wellness plan content are required"))
	}
	if !emailPattern.MatchString(in.UserEmail) {
		return "", apierr.BadRequest(apierr.CodeValidation, fmt.Errorf("invalid email address"))
	}

	catName := strings.TrimSpace(in.CatName)
	if catName == "" {
		catName = "Your Cat"
	}

	htmlBody, err := renderPlanEmailHTML(catName, in.PlanContent)
	if err != nil {
		return "", apierr.Internal(fmt.Errorf("render plan email: %w", err))
	}

	req := sendgrid.SendEmailRequest{
		To:         []sendgrid.EmailAddress{{Email: in.UserEmail}},
		Subject:    fmt.Sprintf("%s's Wellness Plan from CatHealth", catName),
		Text:       in.PlanContent,
		HTML:       htmlBody,
		Categories: []string{"wellness_plan"},
	}

	if in.AttachPDF && es.pdf != nil {
		pdfBytes, pdfErr := es.pdf.RenderPlanPDF(catName, in.PlanContent)
		if pdfErr != nil {
			// The email still goes out without the attachment.
			es.log.Warn("Plan PDF render failed, sending without attachment", "error", pdfErr)
		} else {
			req.Attachments = []sendgrid.Attachment{{
				Filename: fmt.Sprintf("%s-wellness-plan.pdf", strings.ToLower(strings.ReplaceAll(catName, " ", "-"))),
				MIMEType: "application/pdf",
				Content:  pdfBytes,
			}}
		}
	}

	result, err := es.mailer.Send(ctx, req)
	if err != nil {
		return "", apierr.Upstream(fmt.Errorf("send plan email: %w", err))
	}
	es.log.Info("Wellness plan emailed", "to", in.UserEmail, "message_id", result.MessageID)

	if in.PlanID != uuid.Nil {
		es.markEmailed(ctx, ident, in.PlanID)
	}

	return fmt.Sprintf("Wellness plan has been sent to %s", in.UserEmail), nil
}

// markEmailed stamps the plan row after verifying ownership. Failures are
// logged only; the email already went out.
func (es *emailService) markEmailed(ctx context.Context, ident *Identity, planID uuid.UUID) {
	plans, err := es.planRepo.ListByUser(ctx, nil, ident.UserID)
	if err != nil && err != gorm.ErrRecordNotFound {
		es.log.Warn("Plan ownership check failed", "plan_id", planID, "error", err)
		return
	}
	for _, p := range plans {
		if p.ID == planID {
			if err := es.planRepo.MarkEmailed(ctx, nil, planID, time.Now().UTC()); err != nil {
				es.log.Warn("Plan emailed_at update failed", "plan_id", planID, "error", err)
			}
			return
		}
	}
	es.log.Warn("Plan not owned by requester, skipping emailed_at update", "plan_id", planID, "user_id", ident.UserID)
}
