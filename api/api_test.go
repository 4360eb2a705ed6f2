package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"github.com/jvre/memberd/account"
	"github.com/jvre/memberd/config"
	"github.com/jvre/memberd/database"
	"github.com/jvre/memberd/database/mock"
	"github.com/jvre/memberd/locale"
	"github.com/jvre/memberd/notify/email"
	"github.com/jvre/memberd/scheduler"
)

const testAPIKey = "test-api-key"

type sinkMailer struct {
	messages []email.Message
}

func (m *sinkMailer) Send(msg email.Message) error {
	m.messages = append(m.messages, msg)
	return nil
}

type APISuite struct {
	suite.Suite
	db     *mock.MockDB
	mailer *sinkMailer
	server *Server
}

func (s *APISuite) SetupSuite() {
	gin.SetMode(gin.TestMode)

	s.db = mock.NewMockDB()
	s.mailer = &sinkMailer{}

	cfg := &config.Config{
		Listen:     "127.0.0.1:0",
		ServerURL:  "http://localhost:3010",
		SessionKey: "test-session-key",
		APIKey:     testAPIKey,
		Locale:     "en",
	}
	svc := account.New(s.db, s.mailer, email.NewStore(""), locale.NewPrinter("en"), cfg.ServerURL)

	sched, err := scheduler.New()
	s.Require().NoError(err)
	s.Require().NoError(sched.AddCronJob("purge-unconfirmed", "Purge unconfirmed registrations",
		"0 3 * * *", func(context.Context) error { return nil }))

	server, err := New(cfg, s.db, svc, sched, false)
	s.Require().NoError(err)
	s.server = server
}

func (s *APISuite) SetupTest() {
	s.db.Reset()
	s.mailer.messages = nil
}

func (s *APISuite) request(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.server.Handler().ServeHTTP(w, req)
	return w
}

func (s *APISuite) decode(w *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func (s *APISuite) TestHealth() {
	w := s.request(http.MethodGet, "/healthz", "", nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *APISuite) TestRegister() {
	w := s.request(http.MethodPost, "/api/account/register",
		`{"username":"alice","email":"alice@example.com","password":"correct horse"}`, nil)
	s.Require().Equal(http.StatusCreated, w.Code)

	body := s.decode(w)
	s.Equal("alice", body["username"])
	s.EqualValues(database.StatusActive, body["status"])
	s.Equal(1, s.db.AccountCount())
	s.NotEmpty(w.Header().Get("X-Request-ID"))
}

func (s *APISuite) TestRegisterInvalidBody() {
	for _, body := range []string{
		"",
		"{",
		`{"username":"al","email":"alice@example.com","password":"correct horse"}`,
		`{"username":"alice","email":"not-an-email","password":"correct horse"}`,
		`{"username":"alice","email":"alice@example.com","password":"short"}`,
	} {
		w := s.request(http.MethodPost, "/api/account/register", body, nil)
		s.Equal(http.StatusBadRequest, w.Code, "body %q", body)
	}
	s.Zero(s.db.AccountCount())
}

func (s *APISuite) TestRegisterDuplicate() {
	payload := `{"username":"alice","email":"alice@example.com","password":"correct horse"}`
	w := s.request(http.MethodPost, "/api/account/register", payload, nil)
	s.Require().Equal(http.StatusCreated, w.Code)

	w = s.request(http.MethodPost, "/api/account/register", payload, nil)
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("This username already exists.", s.decode(w)["error"])
}

func (s *APISuite) TestRegisterDisallowedUsername() {
	s.Require().NoError(s.db.SetSetting(s.T().Context(), database.SettingDisallowedUsernames, "admin"))

	w := s.request(http.MethodPost, "/api/account/register",
		`{"username":"admin","email":"admin@example.com","password":"correct horse"}`, nil)
	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.Equal("This username is not allowed.", s.decode(w)["error"])
}

func (s *APISuite) TestConfirmRegister() {
	s.Require().NoError(s.db.SetSetting(s.T().Context(), database.SettingMemberVerification, "1"))

	w := s.request(http.MethodPost, "/api/account/register",
		`{"username":"alice","email":"alice@example.com","password":"correct horse"}`, nil)
	s.Require().Equal(http.StatusCreated, w.Code)

	accounts := s.db.Accounts()
	s.Require().Len(accounts, 1)
	s.Require().NotNil(accounts[0].ConfirmCode)

	w = s.request(http.MethodGet, "/account/confirm-register/alice/"+*accounts[0].ConfirmCode, "", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("Your account has been activated. You can now sign in.", s.decode(w)["message"])

	w = s.request(http.MethodGet, "/account/confirm-register/alice/wrong1", "", nil)
	s.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (s *APISuite) TestAdminRequiresAPIKey() {
	for _, headers := range []map[string]string{
		nil,
		{"X-API-Key": "wrong"},
	} {
		w := s.request(http.MethodGet, "/api/admin/settings", "", headers)
		s.Equal(http.StatusUnauthorized, w.Code)
	}
}

func (s *APISuite) TestAdminSettings() {
	auth := map[string]string{"X-API-Key": testAPIKey}

	w := s.request(http.MethodGet, "/api/admin/settings", "", auth)
	s.Require().Equal(http.StatusOK, w.Code)
	settings := s.decode(w)["settings"].(map[string]any)
	s.Equal("0", settings[database.SettingMemberVerification])

	w = s.request(http.MethodPut, "/api/admin/settings",
		`{"settings":{"member_verification":"2","member_admin_verify_emails":"admin@example.com"}}`, auth)
	s.Require().Equal(http.StatusOK, w.Code)
	s.EqualValues(2, s.decode(w)["updated"])

	w = s.request(http.MethodGet, "/api/admin/settings", "", auth)
	s.Require().Equal(http.StatusOK, w.Code)
	settings = s.decode(w)["settings"].(map[string]any)
	s.Equal("2", settings[database.SettingMemberVerification])
}

func (s *APISuite) TestAdminSettingsRejectsUnknownName() {
	auth := map[string]string{"X-API-Key": testAPIKey}

	w := s.request(http.MethodPut, "/api/admin/settings",
		`{"settings":{"no_such_setting":"1"}}`, auth)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(s.decode(w)["error"], "unknown setting")
}

func (s *APISuite) TestAdminPurge() {
	auth := map[string]string{"X-API-Key": testAPIKey}

	w := s.request(http.MethodPost, "/api/admin/purge", "", auth)
	s.Require().Equal(http.StatusOK, w.Code)
	s.EqualValues(0, s.decode(w)["deleted"])

	w = s.request(http.MethodPost, "/api/admin/purge", `{"older_than_days":-1}`, auth)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *APISuite) TestAdminJobs() {
	auth := map[string]string{"X-API-Key": testAPIKey}

	w := s.request(http.MethodGet, "/api/admin/jobs", "", auth)
	s.Require().Equal(http.StatusOK, w.Code)
	jobs := s.decode(w)["jobs"].([]any)
	s.Require().Len(jobs, 1)
	job := jobs[0].(map[string]any)
	s.Equal("purge-unconfirmed", job["id"])
	s.Equal("0 3 * * *", job["schedule"])

	w = s.request(http.MethodPost, "/api/admin/jobs/no-such-job/run", "", auth)
	s.Equal(http.StatusNotFound, w.Code)
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}
