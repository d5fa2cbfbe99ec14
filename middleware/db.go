package middleware

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/drosell271/aiquiz-manager/services"
)

// DBMiddleware inyecta el handle de base de datos en el contexto de la
// petición; los controladores lo recuperan con c.MustGet("db").
func DBMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("db", db)
		c.Next()
	}
}

// RAGMiddleware inyecta el motor RAG elegido en el arranque. Los
// controladores lo recuperan con c.MustGet("rag").
func RAGMiddleware(engine services.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("rag", engine)
		c.Next()
	}
}
