package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/gradetrack-api/pkg/errors"
	"github.com/noah-isme/gradetrack-api/pkg/gradecalc"
)

func testContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, rec
}

func TestNoContentWritesStatus(t *testing.T) {
	c, rec := testContext()
	NoContent(c)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestMetaWithWarnings(t *testing.T) {
	var empty Meta
	assert.Nil(t, empty.WithWarnings(nil))

	warnings := []gradecalc.Warning{{Code: gradecalc.WarnWeightSum, Message: "weights sum to 90.00"}}
	meta := empty.WithWarnings(warnings)
	assert.Equal(t, warnings, meta[MetaWarnings])

	existing := Meta{MetaCacheHit: true}
	existing.WithWarnings(warnings)
	assert.Len(t, existing, 2)
}

func TestJSONOmitsEmptyMeta(t *testing.T) {
	c, rec := testContext()
	JSON(c, http.StatusOK, gin.H{"id": "c1"}, nil, Meta{})

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotContains(t, body, "meta")
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestErrorUsesErrorStatus(t *testing.T) {
	c, rec := testContext()
	Error(c, appErrors.ErrNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"NOT_FOUND"`)
}

func TestAttachment(t *testing.T) {
	c, rec := testContext()
	require.NoError(t, Attachment(c, "transcript.csv", "text/csv", strings.NewReader("course,grade\n")))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="transcript.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, "course,grade\n", rec.Body.String())
}
