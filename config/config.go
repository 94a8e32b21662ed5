package config

import (
	"log"
	"os"
	"strconv"
)

const (
	defaultMatchThreshold       = 0.6
	defaultRecognitionQueueSize = 50
	defaultNumRecognitionWorkers = 1
	defaultMaxFrameSize         = 1280
)

type Config struct {
	// database path
	DatabasePath string

	// face matching settings
	// MatchThreshold is the maximum Euclidean distance at which a probe
	// face is accepted as a registered student
	MatchThreshold float64

	// incoming frames larger than this (longest side, px) are downscaled
	// before detection
	MaxFrameSize int

	// face detection model paths (DNN)
	FaceDNNNetConfigPath string
	FaceDNNNetModelPath  string

	// face embedding model path (ArcFace ONNX)
	FaceEmbedModelPath string
	FaceEmbedModelName string

	// recognition worker settings
	RecognitionQueueSize  int
	NumRecognitionWorkers int

	// auth
	JWTSecret     string
	AdminUsername string
	AdminPassword string
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func getEnvFloatOrDefault(envVar string, defaultVal float64) float64 {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.ParseFloat(valStr, 64)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %g. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func LoadConfig() (Config, error) {
	dbPath := getEnvOrDefault("DATABASE_PATH", "attendance.db")

	threshold := getEnvFloatOrDefault("MATCH_THRESHOLD", defaultMatchThreshold)
	maxFrameSize := getEnvIntOrDefault("MAX_FRAME_SIZE", defaultMaxFrameSize)

	faceDNNConfig := getEnvOrDefault("FACE_DNN_CONFIG_PATH", "./models/deploy.prototxt.txt")
	faceDNNModel := getEnvOrDefault("FACE_DNN_MODEL_PATH", "./models/res10_300x300_ssd_iter_140000_fp16.caffemodel")
	faceEmbedModel := getEnvOrDefault("FACE_EMBED_MODEL_PATH", "./models/arcface_r100.onnx")
	faceEmbedName := getEnvOrDefault("FACE_EMBED_MODEL_NAME", "arcface")

	queueSize := getEnvIntOrDefault("RECOGNITION_QUEUE_SIZE", defaultRecognitionQueueSize)
	numWorkers := getEnvIntOrDefault("NUM_RECOGNITION_WORKERS", defaultNumRecognitionWorkers)

	jwtSecret := getEnvOrDefault("JWT_SECRET", "dev-secret-key-change-in-production")
	adminUsername := getEnvOrDefault("ADMIN_USERNAME", "admin")
	adminPassword := getEnvOrDefault("ADMIN_PASSWORD", "admin")

	cfg := Config{
		DatabasePath:          dbPath,
		MatchThreshold:        threshold,
		MaxFrameSize:          maxFrameSize,
		FaceDNNNetConfigPath:  faceDNNConfig,
		FaceDNNNetModelPath:   faceDNNModel,
		FaceEmbedModelPath:    faceEmbedModel,
		FaceEmbedModelName:    faceEmbedName,
		RecognitionQueueSize:  queueSize,
		NumRecognitionWorkers: numWorkers,
		JWTSecret:             jwtSecret,
		AdminUsername:         adminUsername,
		AdminPassword:         adminPassword,
	}

	return cfg, nil
}
