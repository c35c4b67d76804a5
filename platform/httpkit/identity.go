package httpkit

import (
	"context"

	"sdr_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// Identity is the authenticated operator behind a protected request.
type Identity interface {
	// Subject returns the token subject (operator id or service name).
	Subject() string
	IsAuthenticated() bool
}

type identity struct {
	subject       string
	authenticated bool
}

func (i *identity) Subject() string { return i.subject }

func (i *identity) IsAuthenticated() bool { return i.authenticated }

// GetIdentity extracts the Identity from a Gin context.
// Returns an unauthenticated identity if AuthRequired did not run.
func GetIdentity(c *gin.Context) Identity {
	subject := c.GetString(ContextSubjectKey)
	if subject == "" {
		return &identity{authenticated: false}
	}
	return &identity{subject: subject, authenticated: true}
}

// ActorContext returns the request context tagged with the operator subject,
// so service logs written through logger.WithContext name who acted.
func ActorContext(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if id := GetIdentity(c); id.IsAuthenticated() {
		ctx = context.WithValue(ctx, logger.ActorKey, id.Subject())
	}
	return ctx
}
