package main

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/drosell271/aiquiz-manager/config"
	"github.com/drosell271/aiquiz-manager/routes"
	"github.com/drosell271/aiquiz-manager/services"
)

func main() {
	// Cargar .env
	if err := godotenv.Load(); err != nil {
		log.Println("No se encontró el fichero .env")
	}

	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET es obligatorio")
	}

	db := config.InitDB(cfg)
	config.SeedAdmin(db)

	// El motor RAG se elige una sola vez en el arranque
	rag, err := services.NewEngine(cfg.RAGEngine, cfg.QdrantHost, cfg.QdrantPort)
	if err != nil {
		log.Fatal("No se pudo inicializar el motor RAG: ", err)
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.AppURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
	}))

	r = routes.SetupRouter(r, db, rag)

	log.Println("Servidor escuchando en el puerto " + cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("El servidor se detuvo: ", err)
	}
}
