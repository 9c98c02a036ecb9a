package middlewares

import "github.com/gin-gonic/gin"

const (
	ctxUserIDKey = "auth.userID"
	ctxEmailKey  = "auth.email"
	ctxRoleKey   = "auth.role"
	ctxNameKey   = "auth.name"

	CtxRequestID = "request_id"
)

// SetIdentity stashes a resolved identity on the context. RequireAuth calls
// it after verification; tests call it to simulate an authenticated request.
func SetIdentity(c *gin.Context, id, email, role, name string) {
	c.Set(ctxUserIDKey, id)
	c.Set(ctxEmailKey, email)
	c.Set(ctxRoleKey, role)
	c.Set(ctxNameKey, name)
}

// Helpers so handlers don't need to know the magic keys.

func UserIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxUserIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

func RoleFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxRoleKey)
	if !ok {
		return "", false
	}
	role, ok := v.(string)
	return role, ok
}

func EmailFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxEmailKey)
	if !ok {
		return "", false
	}
	email, ok := v.(string)
	return email, ok
}

func NameFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxNameKey)
	if !ok {
		return "", false
	}
	name, ok := v.(string)
	return name, ok
}
