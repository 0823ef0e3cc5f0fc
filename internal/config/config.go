package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config структура конфигурации
type Config struct {
	Port              string
	TelegramBotToken  string
	JWTSecret         string
	DatabaseURL       string
	DatabaseConfig    DatabaseConfig
	CloudinaryConfig  CloudinaryConfig
	AdsPageSize       int
	ProposalsPageSize int
	AppEnv            string
}

// DatabaseConfig содержит конфигурацию базы данных
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// CloudinaryConfig содержит конфигурацию для Cloudinary
type CloudinaryConfig struct {
	CloudName    string
	APIKey       string
	APISecret    string
	UploadPreset string
	UploadFolder string
}

// LoadConfig загружает переменные из .env
func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("⚠️ .env файл не найден, используем переменные окружения")
	}

	dbConfig := DatabaseConfig{
		Host:     getEnv("PGHOST", "localhost"),
		Port:     getEnv("PGPORT", "5432"),
		User:     getEnv("PGUSER", "obmenka_user"),
		Password: getEnv("PGPASSWORD", "obmenka_pass"),
		Name:     getEnv("PGDATABASE", "obmenka"),
		SSLMode:  getEnv("PGSSLMODE", "disable"),
	}

	// Формируем строку подключения к базе данных
	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbConfig.User, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name, dbConfig.SSLMode)

	cloudinaryConfig := CloudinaryConfig{
		CloudName:    getEnv("CLOUDINARY_CLOUD_NAME", ""),
		APIKey:       getEnv("CLOUDINARY_API_KEY", ""),
		APISecret:    getEnv("CLOUDINARY_API_SECRET", ""),
		UploadPreset: getEnv("CLOUDINARY_UPLOAD_PRESET", "obmenka_ads"),
		UploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "ads"),
	}

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		TelegramBotToken:  getEnv("TELEGRAM_BOT_TOKEN", ""),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		DatabaseURL:       dbURL,
		DatabaseConfig:    dbConfig,
		CloudinaryConfig:  cloudinaryConfig,
		AdsPageSize:       getEnvInt("ADS_PAGE_SIZE", 10),
		ProposalsPageSize: getEnvInt("PROPOSALS_PAGE_SIZE", 5),
		AppEnv:            getEnv("APP_ENV", "production"),
	}

	if cfg.TelegramBotToken == "" || cfg.JWTSecret == "" {
		log.Fatal("❌ Ошибка: Не заданы обязательные переменные окружения")
	}

	return cfg
}

// getEnv получает переменную окружения или использует дефолтное значение
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt получает целочисленную переменную окружения
func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
		log.Printf("⚠️ Неверное значение %s=%s, используем %d", key, value, defaultValue)
	}
	return defaultValue
}
