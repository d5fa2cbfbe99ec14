package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/drosell271/aiquiz-manager/models"
)

// Config agrupa toda la configuración de entorno del servidor.
type Config struct {
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	JWTSecret       string
	JWTExpiresHours int

	SMTPHost     string
	SMTPPort     string
	SMTPEmail    string
	SMTPPassword string
	AppURL       string

	SupabaseURL string
	SupabaseKey string

	GeminiAPIKey string

	// Motor RAG: "qdrant" o "memory"
	RAGEngine  string
	QdrantHost string
	QdrantPort int
}

func Load() Config {
	cfg := Config{
		Port:            getEnv("PORT", "8080"),
		DBHost:          getEnv("DB_HOST", "localhost"),
		DBPort:          getEnv("DB_PORT", "5432"),
		DBUser:          getEnv("DB_USER", "postgres"),
		DBPassword:      getEnv("DB_PASSWORD", ""),
		DBName:          getEnv("DB_NAME", "aiquiz"),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		JWTExpiresHours: getEnvInt("JWT_EXPIRES_HOURS", 168), // 7 días por defecto
		SMTPHost:        getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:        getEnv("SMTP_PORT", "587"),
		SMTPEmail:       getEnv("SMTP_EMAIL", ""),
		SMTPPassword:    getEnv("SMTP_PASSWORD", ""),
		AppURL:          getEnv("APP_URL", "http://localhost:3000"),
		SupabaseURL:     getEnv("SUPABASE_URL", ""),
		SupabaseKey:     getEnv("SUPABASE_KEY", ""),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		RAGEngine:       getEnv("RAG_ENGINE", "memory"),
		QdrantHost:      getEnv("QDRANT_HOST", "localhost"),
		QdrantPort:      getEnvInt("QDRANT_PORT", 6334),
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// InitDB abre la conexión a PostgreSQL, configura el pool y migra los modelos.
// Devuelve el handle para inyectarlo en el router; no hay singleton global.
func InitDB(cfg Config) *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=Europe/Madrid",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatal("No se pudo conectar a la base de datos:", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("No se pudo obtener sql.DB de gorm:", err)
	}

	// Connection pooling
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := Migrate(db); err != nil {
		log.Fatal("Error en AutoMigrate: ", err)
	}
	log.Println("PostgreSQL conectado y migrado")

	return db
}

// Migrate aplica AutoMigrate sobre todos los modelos. Separado de InitDB para
// poder reutilizarlo con la base de datos en memoria de los tests.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Subject{},
		&models.Topic{},
		&models.Subtopic{},
		&models.Question{},
		&models.Choice{},
		&models.Questionnaire{},
		&models.File{},
	)
}
