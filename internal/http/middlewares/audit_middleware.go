package middlewares

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/cartelera/billboard/internal/audit"
)

// captureCap bounds how much of the request and response bodies end up in an
// audit entry. Anything beyond it is truncated, not rejected.
const captureCap = 8 << 10

// AuditTrail records a successful invocation of the wrapped route. It
// captures the request body before the handler consumes it and the response
// body as it is written, then enqueues one entry on the recorder when the
// handler finished with a 2xx status. Failed requests are not audited, the
// trail answers "what changed", not "what was attempted".
func AuditTrail(rec *audit.Recorder, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var reqBody []byte

		if c.Request.Body != nil {
			reqBody, _ = io.ReadAll(io.LimitReader(c.Request.Body, captureCap))
			c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(reqBody), c.Request.Body))
		}

		cw := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = cw

		c.Next()

		status := c.Writer.Status()

		if status < 200 || status > 299 {
			return
		}

		var actor *string
		if id, ok := UserIDFromContext(c); ok && id != "" {
			actor = &id
		}

		detail := map[string]any{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"body":     redactedBody(reqBody),
			"response": rawOrString(cw.buf.Bytes()),
		}

		rec.Record(actor, action, detail, c.ClientIP())
	}
}

// captureWriter tees the response body into a bounded buffer while still
// writing through to the client.
type captureWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	if room := captureCap - w.buf.Len(); room > 0 {
		if len(b) <= room {
			w.buf.Write(b)
		} else {
			w.buf.Write(b[:room])
		}
	}

	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// credential fields never reach the audit table, regardless of nesting level
var redactedFields = map[string]struct{}{
	"password":        {},
	"currentPassword": {},
	"newPassword":     {},
}

// redactedBody parses the captured request body and blanks credential
// fields. A body that is not a JSON object is stored as an opaque string so
// the entry still reflects that something was sent.
func redactedBody(body []byte) any {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	var m map[string]any

	if err := json.Unmarshal(body, &m); err != nil {
		return string(body)
	}

	redactMap(m)

	return m
}

func redactMap(m map[string]any) {
	for k, v := range m {
		if _, ok := redactedFields[k]; ok {
			m[k] = "[REDACTED]"
			continue
		}

		if nested, ok := v.(map[string]any); ok {
			redactMap(nested)
		}
	}
}

func rawOrString(b []byte) any {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil
	}

	if json.Valid(b) {
		return json.RawMessage(append([]byte(nil), b...))
	}

	return string(b)
}
