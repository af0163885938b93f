package routes

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/quotecrm/internal/application/editor"
	"github.com/sangkips/quotecrm/internal/application/intake"
	"github.com/sangkips/quotecrm/internal/application/pricing"
	"github.com/sangkips/quotecrm/internal/application/service"
	"github.com/sangkips/quotecrm/internal/application/syncer"
	"github.com/sangkips/quotecrm/internal/config"
	"github.com/sangkips/quotecrm/internal/domain/entity"
	"github.com/sangkips/quotecrm/internal/infrastructure/database/dbtest"
	"github.com/sangkips/quotecrm/internal/infrastructure/realtime"
	"github.com/sangkips/quotecrm/internal/infrastructure/repository"
	"github.com/sangkips/quotecrm/internal/presentation/http/handler"
	"github.com/sangkips/quotecrm/pkg/apperror"
	"github.com/sangkips/quotecrm/pkg/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type envelope struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Data    json.RawMessage       `json:"data"`
	Errors  []apperror.FieldError `json:"errors"`
}

type testAPI struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	jwt    *utils.JWTManager
	stop   func()
}

func newTestAPI(t *testing.T, limits config.RateLimitConfig) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := dbtest.New(t)
	cfg := &config.Config{
		App:       config.AppConfig{Name: "quotecrm", Namespace: "test"},
		RateLimit: limits,
	}
	jwtManager := utils.NewJWTManager("secret", "test", time.Hour)

	settingsRepo := repository.NewSettingsRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	inquiryRepo := repository.NewInquiryRepository(db)
	clientRepo := repository.NewClientRepository(db)

	hub := realtime.NewHub(nil)
	feeds := realtime.NewFeeds(hub, settingsRepo, templateRepo, inquiryRepo)

	bus := editor.NewBus()
	ed := editor.New(settingsRepo, quoteRepo, bus, editor.WithNotifier(hub))

	settingsService := service.NewSettingsService(settingsRepo, hub)
	templateService := service.NewTemplateService(templateRepo, hub, nil, nil)
	quoteService := service.NewQuoteService(quoteRepo, bus, hub)
	inquiryService := service.NewInquiryService(inquiryRepo, bus, hub)
	clientService := service.NewClientService(clientRepo, ed, hub)
	documentService := service.NewDocumentService(quoteService, settingsService, ed, nil)

	router, stop := Setup(&Handlers{
		Settings:  handler.NewSettingsHandler(settingsService),
		Template:  handler.NewTemplateHandler(templateService),
		Quote:     handler.NewQuoteHandler(quoteService, documentService),
		Inquiry:   handler.NewInquiryHandler(inquiryService),
		Client:    handler.NewClientHandler(clientService),
		Editor:    handler.NewEditorHandler(ed, templateService, clientService, documentService),
		Dashboard: handler.NewDashboardHandler(service.NewDashboardService(repository.NewAnalyticsRepository(db), inquiryRepo), service.NewExportService(quoteRepo, inquiryRepo)),
		Sync: handler.NewSyncHandler(func() *syncer.Controller {
			return syncer.New(feeds, templateRepo, syncer.WithNotifier(hub))
		}),
		Public: handler.NewPublicHandler(settingsService, templateService, intake.Deps{
			Store:    inquiryRepo,
			Notifier: hub,
		}),
	}, &Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: repository.NewIdempotencyRepository(db),
	})
	t.Cleanup(stop)

	return &testAPI{t: t, db: db, router: router, jwt: jwtManager, stop: stop}
}

func defaultLimits() config.RateLimitConfig {
	return config.RateLimitConfig{Requests: 1000, Duration: 60, PublicRequests: 1000}
}

func (a *testAPI) token(tenantID uuid.UUID) string {
	tok, err := a.jwt.GenerateAccessToken(tenantID, "owner@example.com")
	require.NoError(a.t, err)
	return tok
}

func (a *testAPI) do(method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	var out T
	if len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, &out))
	}
	return out
}

func (a *testAPI) createTemplate(token string) entity.ServiceTemplate {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/v1/templates", token, map[string]any{
		"name": "Website",
		"items": []map[string]any{
			{"description": "Design", "unit": "式", "price_min": 10000, "price_max": 20000},
			{"description": "Hosting", "unit": "年", "price_min": 3000, "price_max": 5000},
		},
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[entity.ServiceTemplate](a.t, rec)
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t, defaultLimits())

	rec := api.do(http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	api := newTestAPI(t, defaultLimits())

	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/v1/settings", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/v1/settings", "garbage", nil).Code)
}

func TestSettingsRoundTrip(t *testing.T) {
	api := newTestAPI(t, defaultLimits())
	tenantID := uuid.New()
	tok := api.token(tenantID)

	rec := api.do(http.MethodGet, "/api/v1/settings", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	settings := decode[entity.CompanySettings](t, rec)
	assert.Equal(t, tenantID, settings.TenantID)
	assert.Empty(t, settings.Name)

	rec = api.do(http.MethodPut, "/api/v1/settings", tok, map[string]any{
		"name":         "Acme Studio",
		"website":      "https://acme.example",
		"websites":     []string{" https://blog.acme.example ", ""},
		"email_notify": map[string]string{"service_id": "s", "template_id": "t", "public_key": "k"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	settings = decode[entity.CompanySettings](t, rec)
	assert.Equal(t, "Acme Studio", settings.Name)
	assert.Equal(t, []string{"https://acme.example", "https://blog.acme.example"}, []string(settings.Websites))

	rec = api.do(http.MethodGet, "/api/v1/public/profile?uid="+tenantID.String(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Acme Studio")
	assert.NotContains(t, rec.Body.String(), "public_key")

	rec = api.do(http.MethodPut, "/api/v1/settings", tok, map[string]any{"email": "nope"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "email", env.Errors[0].Field)
}

func TestEditorSaveAndExport(t *testing.T) {
	api := newTestAPI(t, defaultLimits())
	tok := api.token(uuid.New())
	tmpl := api.createTemplate(tok)

	rec := api.do(http.MethodPost, "/api/v1/editor/save", tok, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = api.do(http.MethodPost, "/api/v1/editor/ops", tok, map[string]any{
		"ops": []map[string]any{
			{"op": "add_template", "template_id": tmpl.ID},
			{"op": "set_header", "header": map[string]any{"client_name": "王小明"}},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view := decode[editor.View](t, rec)
	assert.Len(t, view.Draft.Items, 2)
	assert.True(t, decimal.NewFromInt(19950).Equal(view.Totals.Total), view.Totals.Total.String())

	rec = api.do(http.MethodPost, "/api/v1/editor/save", tok, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	quote := decode[entity.Quote](t, rec)
	assert.True(t, decimal.NewFromInt(19950).Equal(quote.TotalAmount))
	assert.Equal(t, "王小明", quote.ClientName)

	rec = api.do(http.MethodGet, "/api/v1/quotes", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":1`)

	rec = api.do(http.MethodGet, "/api/v1/exports/quotes?format=csv", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "quotes.csv")
	assert.Contains(t, rec.Body.String(), "王小明")

	rec = api.do(http.MethodGet, "/api/v1/exports/quotes?format=pdf", tok, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEditorOpsAreAllOrNothing(t *testing.T) {
	api := newTestAPI(t, defaultLimits())
	tok := api.token(uuid.New())

	rec := api.do(http.MethodPost, "/api/v1/editor/ops", tok, map[string]any{
		"ops": []map[string]any{
			{"op": "add_manual_item"},
			{"op": "delete_item", "item_id": "missing"},
		},
	})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(http.MethodGet, "/api/v1/editor", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[editor.View](t, rec).Draft.Items)
}

func TestTenantsAreIsolated(t *testing.T) {
	api := newTestAPI(t, defaultLimits())
	owner := api.token(uuid.New())
	other := api.token(uuid.New())
	tmpl := api.createTemplate(owner)

	rec := api.do(http.MethodGet, "/api/v1/templates/"+tmpl.ID.String(), other, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(http.MethodDelete, "/api/v1/templates/"+tmpl.ID.String(), other, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPublicInquirySubmission(t *testing.T) {
	api := newTestAPI(t, defaultLimits())
	tenantID := uuid.New()
	tok := api.token(tenantID)
	tmpl := api.createTemplate(tok)
	path := "/api/v1/public/inquiries?uid=" + tenantID.String()

	rec := api.do(http.MethodGet, "/api/v1/public/catalog?uid="+tenantID.String(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), tmpl.ID.String())

	body := map[string]any{
		"selected": []uuid.UUID{tmpl.ID},
		"name":     "Alice",
		"phone":    "0912-345-678",
		"email":    "alice@example.com",
		"note":     "call me",
	}

	rec = api.do(http.MethodPost, path, "", body, "Idempotency-Key", "form-1")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	inquiry := decode[entity.Inquiry](t, rec)
	assert.Equal(t, tenantID, inquiry.TenantID)
	assert.Len(t, inquiry.Items, 2)
	assert.Equal(t, "19950", inquiry.TotalAmount.String())

	receipt := decode[struct {
		Totals pricing.Totals `json:"totals"`
	}](t, rec)
	assert.Equal(t, "19000", receipt.Totals.Subtotal.String())
	assert.Equal(t, "950", receipt.Totals.Tax.String())
	assert.True(t, receipt.Totals.Total.Equal(inquiry.TotalAmount))

	var stored entity.Inquiry
	require.NoError(t, api.db.Where("tenant_id = ?", tenantID).First(&stored).Error)
	assert.True(t, stored.TotalAmount.Equal(inquiry.TotalAmount), "stored %s", stored.TotalAmount)

	replay := api.do(http.MethodPost, path, "", body, "Idempotency-Key", "form-1")
	require.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "true", replay.Header().Get("X-Idempotency-Replayed"))

	var count int64
	require.NoError(t, api.db.Model(&entity.Inquiry{}).Where("tenant_id = ?", tenantID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	body["name"] = "Mallory"
	reused := api.do(http.MethodPost, path, "", body, "Idempotency-Key", "form-1")
	assert.Equal(t, http.StatusUnprocessableEntity, reused.Code)

	rec = api.do(http.MethodGet, "/api/v1/inquiries", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Alice")
}

func TestPublicInquiryValidation(t *testing.T) {
	api := newTestAPI(t, defaultLimits())
	tenantID := uuid.New()
	tmpl := api.createTemplate(api.token(tenantID))
	path := "/api/v1/public/inquiries?uid=" + tenantID.String()

	rec := api.do(http.MethodPost, path, "", map[string]any{
		"selected": []uuid.UUID{tmpl.ID},
		"name":     "Alice",
		"phone":    "0912345678",
		"email":    "not-an-email",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "email", env.Errors[0].Field)

	rec = api.do(http.MethodPost, path, "", map[string]any{"name": "Alice"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = api.do(http.MethodPost, "/api/v1/public/inquiries?uid=nope", "", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShareLinkDoesNotGrantWrites(t *testing.T) {
	api := newTestAPI(t, defaultLimits())
	tenantID := uuid.New()

	rec := api.do(http.MethodPost, "/api/v1/templates?uid="+tenantID.String(), "", map[string]any{"name": "x"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCORSPolicies(t *testing.T) {
	api := newTestAPI(t, defaultLimits())
	preflight := func(path string) *httptest.ResponseRecorder {
		return api.do(http.MethodOptions, path, "", nil,
			"Origin", "https://shop.example",
			"Access-Control-Request-Method", http.MethodPost)
	}

	rec := preflight("/api/v1/public/inquiries?uid=" + uuid.NewString())
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))

	rec = preflight("/api/v1/templates")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPublicRateLimit(t *testing.T) {
	api := newTestAPI(t, config.RateLimitConfig{Requests: 1000, Duration: 60, PublicRequests: 2})
	path := "/api/v1/public/catalog?uid=" + uuid.NewString()

	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, path, "", nil).Code)
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, path, "", nil).Code)
	rec := api.do(http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestSetupStopKeepsRoutesServing(t *testing.T) {
	api := newTestAPI(t, defaultLimits())

	api.stop()
	api.stop()

	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/health", "", nil).Code)
	path := "/api/v1/public/catalog?uid=" + uuid.NewString()
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, path, "", nil).Code)
}

func TestPublicStreamHidesCredentials(t *testing.T) {
	api := newTestAPI(t, defaultLimits())
	tenantID := uuid.New()
	rec := api.do(http.MethodPut, "/api/v1/settings", api.token(tenantID), map[string]any{
		"name":         "Acme Studio",
		"email_notify": map[string]string{"service_id": "s", "template_id": "t", "public_key": "k"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	srv := httptest.NewServer(api.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/public/stream?uid="+tenantID.String(), nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	data := firstEvent(t, bufio.NewScanner(resp.Body), "state")
	var state struct {
		Scope   entity.TenantScope   `json:"scope"`
		Profile entity.PublicProfile `json:"profile"`
	}
	require.NoError(t, json.Unmarshal([]byte(data), &state))
	assert.True(t, state.Scope.Public)
	assert.Equal(t, tenantID, state.Scope.TenantID)
	assert.NotContains(t, data, "public_key")
}

// firstEvent returns the data of the first server-sent event named name.
func firstEvent(t *testing.T, sc *bufio.Scanner, name string) string {
	t.Helper()
	matched := false
	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "event:"+name:
			matched = true
		case matched && strings.HasPrefix(line, "data:"):
			return strings.TrimPrefix(line, "data:")
		}
	}
	require.FailNow(t, "stream ended before event "+name, sc.Err())
	return ""
}
