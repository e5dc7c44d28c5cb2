package middleware

import (
	"compress/gzip"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// DecompressRequest inflates request bodies sent with Content-Encoding: gzip.
// Responses are compressed by gin-contrib/gzip in the router.
func DecompressRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !gzipEncoded(c.GetHeader("Content-Encoding")) || c.Request.Body == nil {
			c.Next()
			return
		}

		body := c.Request.Body
		zr, err := gzip.NewReader(body)
		if err != nil {
			_ = body.Close()
			abortWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "malformed gzip body")
			return
		}
		c.Request.Body = &gzipBody{Reader: zr, raw: body}
		c.Request.Header.Del("Content-Encoding")
		c.Request.Header.Del("Content-Length")
		c.Request.ContentLength = -1
		c.Next()
	}
}

func gzipEncoded(header string) bool {
	for _, enc := range strings.Split(header, ",") {
		if strings.EqualFold(strings.TrimSpace(enc), "gzip") {
			return true
		}
	}
	return false
}

type gzipBody struct {
	*gzip.Reader
	raw interface{ Close() error }
}

func (b *gzipBody) Close() error {
	zerr := b.Reader.Close()
	if err := b.raw.Close(); err != nil {
		return err
	}
	return zerr
}
