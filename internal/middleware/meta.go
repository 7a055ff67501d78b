package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gradetrack-api/pkg/response"
)

const (
	responseMetaKey = "response_meta"
	startedAtKey    = "started_at"
)

// WithResponseMeta initialises response metadata storage on the request context.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(responseMetaKey, map[string]interface{}{startedAtKey: time.Now()})
		c.Next()
	}
}

// SetCacheHit records cache hit information for the current response.
func SetCacheHit(c *gin.Context, hit bool) {
	ensureMeta(c)[response.MetaCacheHit] = hit
}

// ExtractMeta returns the metadata collected for the response, stamping the
// elapsed processing time. It returns nil when nothing but the start time was recorded.
func ExtractMeta(c *gin.Context) response.Meta {
	meta := ensureMeta(c)
	started, hasStart := meta[startedAtKey].(time.Time)
	out := make(response.Meta, len(meta))
	for k, v := range meta {
		if k == startedAtKey {
			continue
		}
		out[k] = v
	}
	if len(out) == 0 {
		return nil
	}
	if hasStart {
		out[response.MetaProcessingTime] = time.Since(started).Milliseconds()
	}
	return out
}

func ensureMeta(c *gin.Context) map[string]interface{} {
	if meta, exists := c.Get(responseMetaKey); exists {
		if typed, ok := meta.(map[string]interface{}); ok {
			return typed
		}
	}
	meta := make(map[string]interface{})
	c.Set(responseMetaKey, meta)
	return meta
}
