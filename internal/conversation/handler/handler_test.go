package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"sdr_backend/internal/conversation/domain"
	"sdr_backend/internal/conversation/service"
	"sdr_backend/internal/conversation/transport"
	leadsdomain "sdr_backend/internal/leads/domain"
	leadsservice "sdr_backend/internal/leads/service"
	"sdr_backend/platform/idempotency"
	"sdr_backend/platform/validator"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type memLog struct {
	mu       sync.Mutex
	messages []domain.Message
}

func (m *memLog) Append(_ context.Context, leadID uuid.UUID, role, content string) (domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg := domain.Message{ID: uuid.New(), LeadID: leadID, Role: role, Content: content, CreatedAt: time.Now()}
	m.messages = append(m.messages, msg)
	return msg, nil
}

func (m *memLog) Recent(context.Context, uuid.UUID, int) ([]domain.Message, error) {
	return nil, nil
}

type oneLead struct {
	lead leadsdomain.Lead
}

func (o *oneLead) CreateLead(_ context.Context, contact string) (leadsservice.CreateResult, error) {
	if o.lead.ID == uuid.Nil {
		o.lead = leadsdomain.Lead{ID: uuid.New(), Contact: contact, Status: leadsdomain.StatusNew}
		return leadsservice.CreateResult{Lead: o.lead, Created: true}, nil
	}
	return leadsservice.CreateResult{Lead: o.lead}, nil
}

func (o *oneLead) UpdateLead(_ context.Context, _ uuid.UUID, u leadsdomain.LeadUpdate) (leadsdomain.Lead, error) {
	u.ApplyTo(&o.lead)
	return o.lead, nil
}

type echoModel struct{}

func (echoModel) Converse(_ context.Context, turn domain.Turn) (domain.Reply, error) {
	return domain.Reply{Text: "Olá! Em qual região você procura?"}, nil
}

func newEngine(t *testing.T) (*gin.Engine, *memLog) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	log := &memLog{}
	svc := service.New(log, &oneLead{}, echoModel{}, 0, nil)
	h := New(svc, validator.New(), idempotency.New(client, "webhook", time.Hour), nil)

	engine := gin.New()
	engine.POST("/conversation/webhook", h.Webhook)
	return engine, log
}

func post(engine *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/conversation/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestWebhookReplies(t *testing.T) {
	engine, _ := newEngine(t)

	rec := post(engine, `{"phone_number": "47999887766", "message": "Oi"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp transport.WebhookResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Response != "Olá! Em qual região você procura?" {
		t.Fatalf("response = %q", resp.Response)
	}
}

func TestWebhookDropsRedelivery(t *testing.T) {
	engine, log := newEngine(t)
	body := `{"phone_number": "47999887766", "message": "Oi", "message_id": "wamid.42"}`

	if rec := post(engine, body); rec.Code != http.StatusOK {
		t.Fatalf("first delivery status = %d", rec.Code)
	}
	rec := post(engine, body)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("redelivery status = %d, want 202", rec.Code)
	}
	if len(log.messages) != 2 {
		t.Fatalf("redelivery must not be processed, log has %d messages", len(log.messages))
	}
}

func TestWebhookValidation(t *testing.T) {
	engine, _ := newEngine(t)

	for _, body := range []string{
		`{"phone_number": "", "message": "Oi"}`,
		`{"phone_number": "47999887766", "message": "   "}`,
		`not json`,
	} {
		if rec := post(engine, body); rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: status = %d, want 400", body, rec.Code)
		}
	}
}
