package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fyp-management-api/controllers"
	"fyp-management-api/middleware"
	"fyp-management-api/models"
	"fyp-management-api/store"
)

const testSecret = "routes-test-secret"

func newTestRouter(t *testing.T) (*gin.Engine, *store.MemoryStore) {
	t.Helper()
	t.Setenv("JWT_SECRET", testSecret)
	gin.SetMode(gin.TestMode)

	st := store.NewMemoryStore()
	controllers.Init(st, nil)

	router := gin.New()
	SetupRoutes(router, st)
	return router, st
}

func seedUser(t *testing.T, st *store.MemoryStore, email, role string) *models.User {
	t.Helper()
	u := &models.User{
		Email:     email,
		Password:  "hashed",
		FirstName: "Route",
		LastName:  role,
		Role:      role,
	}
	require.NoError(t, st.CreateUser(u))
	return u
}

func seedMemberProject(t *testing.T, st *store.MemoryStore, student *models.User) *models.Project {
	t.Helper()
	proposal := &models.ProjectProposal{
		Title:       "Routed project",
		Status:      models.ProposalStatusApproved,
		StudentID:   student.UserID,
		SubmittedAt: time.Now(),
	}
	require.NoError(t, st.CreateProposal(proposal))

	p := &models.Project{
		ProposalID: proposal.ProposalID,
		Title:      proposal.Title,
		Status:     models.ProjectStatusActive,
		CreatedAt:  time.Now(),
	}
	require.NoError(t, st.CreateProject(p, []uint{student.UserID}))
	return p
}

func tokenFor(t *testing.T, u *models.User) string {
	t.Helper()
	claims := middleware.Claims{
		UserID: u.UserID,
		Email:  u.Email,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func doJSON(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestStudentCanReadAndSubmitEvaluations(t *testing.T) {
	router, st := newTestRouter(t)
	student := seedUser(t, st, "route-student@example.edu", models.RoleStudent)
	project := seedMemberProject(t, st, student)
	token := tokenFor(t, student)

	rec := doJSON(router, http.MethodGet, "/api/v1/evaluations", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(router, http.MethodPost, "/api/v1/evaluations", token, gin.H{
		"project_id": project.ProjectID,
		"scores":     []gin.H{{"name": "design", "score": 10}},
	})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestAnyAuthenticatedUserCanNotify(t *testing.T) {
	router, st := newTestRouter(t)
	student := seedUser(t, st, "notifier@example.edu", models.RoleStudent)
	peer := seedUser(t, st, "peer@example.edu", models.RoleStudent)
	token := tokenFor(t, student)

	rec := doJSON(router, http.MethodPost, "/api/v1/notifications", token, gin.H{
		"recipient_id": peer.UserID,
		"message":      "Draft is up for review",
	})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}
