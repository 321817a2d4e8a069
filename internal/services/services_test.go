package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/cathealth/cathealth-backend/internal/domain"
	"github.com/cathealth/cathealth-backend/internal/pkg/logger"
	"github.com/cathealth/cathealth-backend/internal/platform/openai"
	"github.com/cathealth/cathealth-backend/internal/platform/sendgrid"
)

func testLogger(tb testing.TB) *logger.Logger {
	tb.Helper()
	log, err := logger.New("development")
	if err != nil {
		tb.Fatalf("logger: %v", err)
	}
	return log
}

// fakeAI replays scripted responses in order and records how it was called.
type fakeAI struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	calls     []string // "text" or "image"
	systems   []string
	users     []string
	images    [][]openai.ImageInput
}

func (f *fakeAI) next() (string, error) {
	var resp string
	if len(f.responses) > 0 {
		resp = f.responses[0]
		f.responses = f.responses[1:]
	}
	var err error
	if len(f.errs) > 0 {
		err = f.errs[0]
		f.errs = f.errs[1:]
	}
	return resp, err
}

func (f *fakeAI) GenerateText(_ context.Context, system, user string) (string, openai.Usage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "text")
	f.systems = append(f.systems, system)
	f.users = append(f.users, user)
	resp, err := f.next()
	return resp, openai.Usage{InputTokens: 10, OutputTokens: 20}, err
}

func (f *fakeAI) GenerateTextWithImages(_ context.Context, system, user string, images []openai.ImageInput) (string, openai.Usage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "image")
	f.systems = append(f.systems, system)
	f.users = append(f.users, user)
	f.images = append(f.images, images)
	resp, err := f.next()
	return resp, openai.Usage{InputTokens: 10, OutputTokens: 20}, err
}

func (f *fakeAI) GenerateJSON(_ context.Context, system, user, _ string, _ map[string]any) (map[string]any, openai.Usage, error) {
	return nil, openai.Usage{}, fmt.Errorf("not scripted")
}

type fakePlanRepo struct {
	mu       sync.Mutex
	rows     []*types.WellnessPlan
	upserted []*types.WellnessPlan
	marked   []uuid.UUID
	fail     error
}

func (f *fakePlanRepo) Upsert(_ context.Context, _ *gorm.DB, plan *types.WellnessPlan) (*types.WellnessPlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	f.upserted = append(f.upserted, plan)
	return plan, nil
}

func (f *fakePlanRepo) GetByUserAndCat(_ context.Context, _ *gorm.DB, userID uuid.UUID, catName string) (*types.WellnessPlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.UserID == userID && row.CatName == catName {
			return row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePlanRepo) ListByUser(_ context.Context, _ *gorm.DB, userID uuid.UUID) ([]*types.WellnessPlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.WellnessPlan
	for _, row := range f.rows {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakePlanRepo) MarkEmailed(_ context.Context, _ *gorm.DB, planID uuid.UUID, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marked = append(f.marked, planID)
	return nil
}

type fakeCallRepo struct {
	mu      sync.Mutex
	entries []*types.AICallLog
}

func (f *fakeCallRepo) Create(_ context.Context, _ *gorm.DB, entry *types.AICallLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeCallRepo) ListRecentByUser(_ context.Context, _ *gorm.DB, _ uuid.UUID, _ int) ([]*types.AICallLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries, nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sendgrid.SendEmailRequest
	fail error
}

func (f *fakeMailer) Send(_ context.Context, req sendgrid.SendEmailRequest) (*sendgrid.SendEmailResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	f.sent = append(f.sent, req)
	return &sendgrid.SendEmailResult{StatusCode: 202, MessageID: "msg-1"}, nil
}

type fakePDF struct {
	fail error
}

func (f *fakePDF) RenderPlanPDF(_, _ string) ([]byte, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	return []byte("%PDF-1.4 fake"), nil
}

func testIdentity() *Identity {
	return &Identity{UserID: uuid.New(), Email: "owner@example.com"}
}
