package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gradetrack-api/internal/models"
	"github.com/noah-isme/gradetrack-api/internal/service"
	appErrors "github.com/noah-isme/gradetrack-api/pkg/errors"
	"github.com/noah-isme/gradetrack-api/pkg/logger"
	"github.com/noah-isme/gradetrack-api/pkg/response"
)

type stubValidator struct {
	claims *models.JWTClaims
	token  string
}

func (s *stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	s.token = token
	if s.claims == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return s.claims, nil
}

func protectedRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	chain := append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": c.GetString(logger.UserIDKey)})
	})
	r.GET("/protected", chain...)
	return r
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

func TestJWTRejectsMissingHeader(t *testing.T) {
	r := protectedRouter(JWT(&stubValidator{}))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, errorCode(t, rec))
}

func TestJWTRejectsMalformedHeader(t *testing.T) {
	r := protectedRouter(JWT(&stubValidator{claims: &models.JWTClaims{UserID: "u1"}}))
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTRejectsInvalidToken(t *testing.T) {
	r := protectedRouter(JWT(&stubValidator{}))
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTStoresClaims(t *testing.T) {
	validator := &stubValidator{claims: &models.JWTClaims{UserID: "u1", Role: models.RoleStudent}}
	r := protectedRouter(JWT(validator))
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "bearer  abc.def ")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc.def", validator.token)
	assert.JSONEq(t, `{"user":"u1"}`, rec.Body.String())
}

func TestRequireRoles(t *testing.T) {
	tests := []struct {
		name   string
		claims *models.JWTClaims
		status int
	}{
		{name: "no claims", status: http.StatusUnauthorized},
		{name: "wrong role", claims: &models.JWTClaims{UserID: "u1", Role: models.RoleStudent}, status: http.StatusForbidden},
		{name: "admin", claims: &models.JWTClaims{UserID: "a1", Role: models.RoleAdmin}, status: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setClaims := func(c *gin.Context) {
				if tt.claims != nil {
					c.Set(ContextUserKey, tt.claims)
				}
			}
			r := protectedRouter(setClaims, RequireRoles(models.RoleAdmin))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestRequireFeature(t *testing.T) {
	rec := httptest.NewRecorder()
	protectedRouter(RequireFeature("transcripts", false)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))
	assert.Equal(t, appErrors.ErrFeatureDisabled.Status, rec.Code)
	assert.Equal(t, appErrors.ErrFeatureDisabled.Code, errorCode(t, rec))

	rec = httptest.NewRecorder()
	protectedRouter(RequireFeature("transcripts", true)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsRecordsRequests(t *testing.T) {
	metrics := service.NewMetricsService()
	r := protectedRouter(Metrics(metrics))

	for i := 0; i < 3; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/protected", nil))
	}
	assert.Equal(t, uint64(3), metrics.Snapshot().RequestsTotal)
}

func TestMetricsNilServicePassesThrough(t *testing.T) {
	rec := httptest.NewRecorder()
	protectedRouter(Metrics(nil)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestResponseMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Nil(t, ExtractMeta(c))

	SetCacheHit(c, true)
	meta := ExtractMeta(c)
	assert.Equal(t, true, meta[response.MetaCacheHit])
	assert.NotContains(t, meta, response.MetaProcessingTime)
}

func TestWithResponseMetaStampsProcessingTime(t *testing.T) {
	var meta response.Meta
	r := protectedRouter()
	r.GET("/meta", WithResponseMeta(), func(c *gin.Context) {
		SetCacheHit(c, false)
		meta = ExtractMeta(c)
		c.Status(http.StatusOK)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/meta", nil))

	require.NotNil(t, meta)
	assert.Equal(t, false, meta[response.MetaCacheHit])
	assert.Contains(t, meta, response.MetaProcessingTime)
	assert.NotContains(t, meta, startedAtKey)
}
