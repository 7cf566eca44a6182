package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexora/account-api/internal/service"
)

// stubAccountService implements service.AccountService with canned
// responses per method.
type stubAccountService struct {
	createErr  error
	confirmErr error
	session    *service.Session
	loginErr   error
	addRoleErr error
	views      []service.AccountView
	listErr    error
	getView    *service.AccountView
	getErr     error
	updateErr  error
	deleteErr  error
	exists     bool
	existsErr  error

	lastCreate service.CreateAccountRequest
	lastEmail  string
}

func (s *stubAccountService) CreateAccount(ctx context.Context, req service.CreateAccountRequest) error {
	s.lastCreate = req
	return s.createErr
}

func (s *stubAccountService) ConfirmEmail(ctx context.Context, email, token string) error {
	s.lastEmail = email
	return s.confirmErr
}

func (s *stubAccountService) Login(ctx context.Context, email, password string) (*service.Session, error) {
	return s.session, s.loginErr
}

func (s *stubAccountService) AddToRole(ctx context.Context, accountID uuid.UUID, roleName string) error {
	return s.addRoleErr
}

func (s *stubAccountService) GetAccounts(ctx context.Context) ([]service.AccountView, error) {
	return s.views, s.listErr
}

func (s *stubAccountService) GetAccount(ctx context.Context, id uuid.UUID) (*service.AccountView, error) {
	return s.getView, s.getErr
}

func (s *stubAccountService) UpdateAccount(ctx context.Context, req service.UpdateAccountRequest) error {
	return s.updateErr
}

func (s *stubAccountService) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	return s.deleteErr
}

func (s *stubAccountService) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	s.lastEmail = email
	return s.exists, s.existsErr
}

func (s *stubAccountService) EnsureAdminAccount(ctx context.Context, email, password string) error {
	return nil
}

// testRouter mirrors the production route layout.
func testRouter(svc service.AccountService) chi.Router {
	h := NewAccountHandler(svc)
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", h.Login)
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", h.Create)
			r.Post("/confirm", h.Confirm)
			r.Get("/exists/{email}", h.Exists)
			r.Get("/", h.List)
			r.Get("/{id}", h.Get)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
			r.Post("/{id}/roles", h.AddRole)
		})
	})
	return r
}

func sampleView() service.AccountView {
	return service.AccountView{
		ID:             uuid.New(),
		Email:          "jamie.doe@example.com",
		FirstName:      "Jamie",
		LastName:       "Doe",
		EmailConfirmed: false,
		Role:           "user",
		CreatedAt:      time.Now().UTC(),
	}
}

func doJSON(t *testing.T, router chi.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateEndpoint(t *testing.T) {
	svc := &stubAccountService{}
	router := testRouter(svc)

	rec := doJSON(t, router, http.MethodPost, "/api/accounts", map[string]string{
		"email":      "jamie.doe@example.com",
		"password":   "Sup3rSecret",
		"first_name": "Jamie",
		"last_name":  "Doe",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, rec.Body.Bytes(), "registration returns no entity payload")

	assert.Equal(t, "jamie.doe@example.com", svc.lastCreate.Email)
	assert.Equal(t, "Sup3rSecret", svc.lastCreate.Password)
}

func TestCreateEndpointValidation(t *testing.T) {
	svc := &stubAccountService{}
	router := testRouter(svc)

	cases := []struct {
		name string
		body map[string]string
	}{
		{"missing email", map[string]string{"password": "Sup3rSecret"}},
		{"bad email", map[string]string{"email": "nope", "password": "Sup3rSecret"}},
		{"short password", map[string]string{"email": "a@b.com", "password": "x"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/api/accounts", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, svc.lastCreate.Email, "invalid payload must not reach the service")
		})
	}
}

func TestCreateEndpointMalformedBody(t *testing.T) {
	router := testRouter(&stubAccountService{})

	req := httptest.NewRequest(http.MethodPost, "/api/accounts", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateEndpointDuplicate(t *testing.T) {
	router := testRouter(&stubAccountService{createErr: service.ErrDuplicateAccount})

	rec := doJSON(t, router, http.MethodPost, "/api/accounts", map[string]string{
		"email":    "taken@example.com",
		"password": "Sup3rSecret",
	})

	require.Equal(t, http.StatusConflict, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Email already exists", resp["error"])
}

func TestCreateEndpointPartialProvisioning(t *testing.T) {
	router := testRouter(&stubAccountService{createErr: service.ErrPartialProvisioning})

	rec := doJSON(t, router, http.MethodPost, "/api/accounts", map[string]string{
		"email":    "jamie@example.com",
		"password": "Sup3rSecret",
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestConfirmEndpoint(t *testing.T) {
	svc := &stubAccountService{}
	router := testRouter(svc)

	rec := doJSON(t, router, http.MethodPost, "/api/accounts/confirm", map[string]string{
		"email": "jamie@example.com",
		"token": "abc123",
	})

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestConfirmEndpointBadToken(t *testing.T) {
	router := testRouter(&stubAccountService{confirmErr: service.ErrInvalidConfirmation})

	rec := doJSON(t, router, http.MethodPost, "/api/accounts/confirm", map[string]string{
		"email": "jamie@example.com",
		"token": "stale",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConfirmEndpointUnknownAccount(t *testing.T) {
	router := testRouter(&stubAccountService{confirmErr: service.ErrAccountNotFound})

	rec := doJSON(t, router, http.MethodPost, "/api/accounts/confirm", map[string]string{
		"email": "ghost@example.com",
		"token": "abc123",
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLoginEndpoint(t *testing.T) {
	expiry := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	router := testRouter(&stubAccountService{
		session: &service.Session{Token: "signed.jwt.token", ExpiresAt: expiry},
	})

	rec := doJSON(t, router, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "jamie@example.com",
		"password": "Sup3rSecret",
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "signed.jwt.token", resp.Token)
	assert.True(t, expiry.Equal(resp.ExpiresAt))
}

func TestLoginEndpointRejected(t *testing.T) {
	router := testRouter(&stubAccountService{loginErr: service.ErrInvalidCredentials})

	rec := doJSON(t, router, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "jamie@example.com",
		"password": "WrongPass1",
	})

	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid credentials", resp["error"])
}

func TestListEndpoint(t *testing.T) {
	router := testRouter(&stubAccountService{
		views: []service.AccountView{sampleView(), sampleView()},
	})

	rec := doJSON(t, router, http.MethodGet, "/api/accounts", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []AccountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp, 2)
}

func TestGetEndpoint(t *testing.T) {
	view := sampleView()
	router := testRouter(&stubAccountService{getView: &view})

	rec := doJSON(t, router, http.MethodGet, "/api/accounts/"+view.ID.String(), nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp AccountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, view.ID, resp.ID)
	assert.Equal(t, "user", resp.Role)
}

func TestGetEndpointNotFound(t *testing.T) {
	router := testRouter(&stubAccountService{getErr: service.ErrAccountNotFound})

	rec := doJSON(t, router, http.MethodGet, "/api/accounts/"+uuid.NewString(), nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetEndpointBadID(t *testing.T) {
	router := testRouter(&stubAccountService{})

	rec := doJSON(t, router, http.MethodGet, "/api/accounts/not-a-uuid", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExistsEndpoint(t *testing.T) {
	svc := &stubAccountService{exists: true}
	router := testRouter(svc)

	rec := doJSON(t, router, http.MethodGet, "/api/accounts/exists/jamie@example.com", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ExistsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Exists)
	assert.Equal(t, "jamie@example.com", svc.lastEmail)
}

func TestUpdateEndpoint(t *testing.T) {
	router := testRouter(&stubAccountService{})

	rec := doJSON(t, router, http.MethodPut, "/api/accounts/"+uuid.NewString(), map[string]string{
		"email":      "new@example.com",
		"first_name": "Jamie",
		"last_name":  "Doe",
	})

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.Bytes(), "update returns no entity payload")
}

func TestUpdateEndpointConflict(t *testing.T) {
	router := testRouter(&stubAccountService{updateErr: service.ErrDuplicateAccount})

	rec := doJSON(t, router, http.MethodPut, "/api/accounts/"+uuid.NewString(), map[string]string{
		"email": "taken@example.com",
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDeleteEndpoint(t *testing.T) {
	router := testRouter(&stubAccountService{})

	rec := doJSON(t, router, http.MethodDelete, "/api/accounts/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestDeleteEndpointNotFound(t *testing.T) {
	router := testRouter(&stubAccountService{deleteErr: service.ErrAccountNotFound})

	rec := doJSON(t, router, http.MethodDelete, "/api/accounts/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddRoleEndpoint(t *testing.T) {
	router := testRouter(&stubAccountService{})

	rec := doJSON(t, router, http.MethodPost, "/api/accounts/"+uuid.NewString()+"/roles", map[string]string{
		"role": "admin",
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAddRoleEndpointMissingRole(t *testing.T) {
	router := testRouter(&stubAccountService{})

	rec := doJSON(t, router, http.MethodPost, "/api/accounts/"+uuid.NewString()+"/roles", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
