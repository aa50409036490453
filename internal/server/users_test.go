package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"intakedesk/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func testUserService() *Service {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return &Service{logger: logger, config: &types.Config{}}
}

func TestCreateUserRequiresEmailAndPassword(t *testing.T) {
	s := testUserService()

	for _, body := range []string{
		`{"password":"motdepasse123","role":"STAFF"}`,
		`{"email":"   ","password":"motdepasse123","role":"STAFF"}`,
		`{"email":"staff@exemple.fr","role":"STAFF"}`,
	} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/admin/users", strings.NewReader(body))
		s.handleCreateUser(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Contains(t, rec.Body.String(), "Email et mot de passe requis", body)
	}
}

func TestCreateUserRejectsMalformedEmail(t *testing.T) {
	s := testUserService()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/users",
		strings.NewReader(`{"email":"pas-un-email","password":"motdepasse123","role":"STAFF"}`))
	s.handleCreateUser(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Format email invalide")
}

func TestUpdateUserRejectsEmptyEmail(t *testing.T) {
	s := testUserService()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/admin/users/u_1",
		strings.NewReader(`{"email":"   "}`))
	s.handleUpdateUser(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Format email invalide")
}

func TestUpdateUserRejectsShortPassword(t *testing.T) {
	s := testUserService()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/admin/users/u_1",
		strings.NewReader(`{"password":"court"}`))
	s.handleUpdateUser(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "au moins 8 caractères")
}
