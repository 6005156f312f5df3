package middleware

import (
	"github.com/gin-gonic/gin"

	"pharmabill/internal/infrastructure/storage/postgres"
)

// Database middleware attaches the process-wide transaction manager to
// every request context. Repositories resolve it from there, so it MUST
// run before any handler that touches the database.
func Database(txManager *postgres.TxManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := postgres.WithTxManager(c.Request.Context(), txManager)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
