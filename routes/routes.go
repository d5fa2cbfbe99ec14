package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/drosell271/aiquiz-manager/controllers"
	"github.com/drosell271/aiquiz-manager/middleware"
	"github.com/drosell271/aiquiz-manager/services"
	"github.com/drosell271/aiquiz-manager/ws"
)

func SetupRouter(r *gin.Engine, db *gorm.DB, rag services.Engine) *gin.Engine {
	r.GET("/health", controllers.HealthCheck)

	api := r.Group("/api")
	api.Use(middleware.DBMiddleware(db), middleware.RAGMiddleware(rag))

	// Descarga pública con token de propósito único en la query
	api.GET("/files/:id/download", controllers.DownloadFile)

	manager := api.Group("/manager")

	auth := manager.Group("/auth")
	{
		auth.POST("/login", controllers.Login)
		auth.POST("/accept-invitation", controllers.AcceptInvitation)
		auth.POST("/recovery", controllers.Recovery)
		auth.POST("/reset-password", controllers.ResetPassword)
		auth.POST("/validate-reset-token", controllers.ValidateResetToken)
	}

	account := manager.Group("/account")
	{
		account.Use(middleware.AuthMiddleware())
		account.GET("", controllers.GetAccount)
		account.PUT("", controllers.UpdateAccount)
		account.PUT("/password", controllers.ChangePassword)
	}

	// Gestión de usuarios, solo admin
	users := manager.Group("/users")
	{
		users.Use(middleware.AuthMiddleware(), middleware.RequireRoles("admin"))
		users.POST("", controllers.InviteProfessor)
		users.GET("", controllers.GetUsers)
		users.POST("/:id/resend-invitation", controllers.ResendInvitation)
		users.DELETE("/:id", controllers.DeleteUser)
	}

	// Gestión de contenido: admin y profesor
	content := manager.Group("")
	{
		content.Use(middleware.AuthMiddleware(), middleware.RequireRoles("admin", "professor"))

		// Asignaturas
		content.POST("/subjects", controllers.CreateSubject)
		content.GET("/subjects", controllers.GetSubjects)
		content.GET("/subjects/:id", controllers.GetSubjectDetail)
		content.PUT("/subjects/:id", controllers.UpdateSubject)
		content.DELETE("/subjects/:id", controllers.DeleteSubject)
		content.PATCH("/subjects/:id/toggle-status", controllers.ToggleSubjectStatus)
		content.GET("/subjects/:id/topics", controllers.GetTopicsBySubject)
		content.GET("/subjects/:id/questionnaires", controllers.GetQuestionnairesBySubject)

		// Temas
		content.POST("/topics", controllers.CreateTopic)
		content.GET("/topics/:id", controllers.GetTopicDetail)
		content.PUT("/topics/:id", controllers.UpdateTopic)
		content.DELETE("/topics/:id", controllers.DeleteTopic)
		content.PATCH("/topics/:id/toggle-status", controllers.ToggleTopicStatus)

		// Subtemas
		content.POST("/subtopics", controllers.CreateSubtopic)
		content.GET("/subtopics/:id", controllers.GetSubtopicDetail)
		content.PUT("/subtopics/:id", controllers.UpdateSubtopic)
		content.DELETE("/subtopics/:id", controllers.DeleteSubtopic)

		// Preguntas
		content.POST("/subtopics/:id/questions", controllers.CreateQuestion)
		content.GET("/subtopics/:id/questions", controllers.GetQuestionsBySubtopic)
		content.POST("/subtopics/:id/questions/generate", controllers.GenerateQuestions)
		content.PUT("/questions/:id", controllers.UpdateQuestion)
		content.DELETE("/questions/:id", controllers.DeleteQuestion)

		// Cuestionarios
		content.POST("/questionnaires", controllers.CreateQuestionnaire)
		content.GET("/questionnaires/:id", controllers.GetQuestionnaireDetail)
		content.PUT("/questionnaires/:id", controllers.UpdateQuestionnaire)
		content.DELETE("/questionnaires/:id", controllers.DeleteQuestionnaire)
		content.GET("/questionnaires/:id/export", controllers.ExportQuestionnaire)

		// Ficheros y búsqueda semántica
		content.POST("/subtopics/:id/files", controllers.UploadFile)
		content.GET("/subtopics/:id/files", controllers.GetFilesBySubtopic)
		content.POST("/subtopics/:id/search", controllers.SearchSubtopic)
		content.GET("/files/:id/download-url", controllers.GetDownloadURL)
		content.DELETE("/files/:id", controllers.DeleteFile)
	}

	// Estado de procesado de ficheros en tiempo real
	r.GET("/ws/files/:id", ws.HandleFileWebSocket)
	r.GET("/ws/status", ws.HandleGlobalWebSocket)

	return r
}
