package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/gradetrack-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil)
	ctx := context.Background()

	var dest map[string]string
	assert.ErrorIs(t, repo.Get(ctx, "grades:enrollment:1", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "grades:enrollment:1", map[string]string{"a": "b"}, time.Minute))
	assert.NoError(t, repo.Delete(ctx, "grades:enrollment:1"))
	assert.NoError(t, repo.Ping(ctx))
}
