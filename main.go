package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/attendsys/attendsysbackend/config"
	"github.com/attendsys/attendsysbackend/database"
	"github.com/attendsys/attendsysbackend/handlers"
	"github.com/attendsys/attendsysbackend/media"
	"github.com/attendsys/attendsysbackend/realtime"
	"github.com/attendsys/attendsysbackend/repository"
	"github.com/attendsys/attendsysbackend/services"
	"github.com/attendsys/attendsysbackend/workers"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	if dbDir := filepath.Dir(cfg.DatabasePath); dbDir != "." {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			log.Fatalf("FATAL: Failed to create database directory %s: %v", dbDir, err)
		}
	}

	db, err := database.InitGormDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database: %v", err)
	}
	if err := database.AutoMigrateModels(db); err != nil {
		log.Fatalf("FATAL: Failed to migrate database schema: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("FATAL: Failed to get underlying sql.DB: %v", err)
	}
	defer sqlDB.Close()

	studentRepo := repository.NewStudentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	userRepo := repository.NewUserRepository(db)

	if err := handlers.EnsureAdminUser(userRepo, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatalf("FATAL: Failed to ensure admin user: %v", err)
	}

	log.Println("Loading face detection and recognition models...")
	detector := media.NewDNNFaceDetector(cfg.FaceDNNNetConfigPath, cfg.FaceDNNNetModelPath)
	recognizer := media.NewFaceRecognitionModel(cfg.FaceEmbedModelPath, cfg.FaceEmbedModelName)
	extractor := media.NewExtractor(detector, recognizer)
	defer extractor.Close()
	if !extractor.Enabled() {
		log.Println("WARNING: Face extraction is disabled; enrollment and recognition endpoints will fail until models are configured")
	}

	log.Printf("Initializing extraction worker pool (Workers: %d, Queue Size: %d)...", cfg.NumRecognitionWorkers, cfg.RecognitionQueueSize)
	extractionPool := workers.NewExtractionPool(extractor, cfg.RecognitionQueueSize, cfg.NumRecognitionWorkers)
	defer extractionPool.Stop()

	enrollmentSvc := services.NewEnrollmentService(extractionPool, studentRepo, cfg.FaceEmbedModelName)
	recognitionSvc := services.NewRecognitionService(extractionPool, studentRepo, attendanceRepo, cfg.MatchThreshold)

	hub := realtime.NewHub()
	go hub.Run()

	log.Printf("Using database: %s", cfg.DatabasePath)
	log.Printf("Match threshold: %g", cfg.MatchThreshold)

	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"}, //TODO: configurable
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}

	corsHandler := cors.New(corsOptions)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsHandler.Handler)

	studentHandler := &handlers.StudentHandler{StudentRepo: studentRepo}
	courseHandler := &handlers.CourseHandler{CourseRepo: courseRepo}
	enrollmentHandler := &handlers.EnrollmentHandler{EnrollmentSvc: enrollmentSvc, MaxFrameSize: cfg.MaxFrameSize, Hub: hub}
	attendanceHandler := &handlers.AttendanceHandler{
		RecognitionSvc: recognitionSvc,
		CourseRepo:     courseRepo,
		AttendanceRepo: attendanceRepo,
		MaxFrameSize:   cfg.MaxFrameSize,
		Hub:            hub,
	}
	reportHandler := &handlers.ReportHandler{DB: sqlDB}
	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret)

	requireAuth := handlers.AuthMiddleware(userRepo, []byte(cfg.JWTSecret))

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/auth/me", authHandler.CurrentUser)
			r.Get("/stats", reportHandler.Dashboard)

			r.Route("/students", func(r chi.Router) {
				r.Post("/", studentHandler.CreateStudent)
				r.Get("/", studentHandler.ListStudents)
				r.Route("/{student_id}", func(r chi.Router) {
					r.Get("/", studentHandler.GetStudent)
					r.Put("/", studentHandler.UpdateStudent)
					r.Delete("/", studentHandler.DeleteStudent)
					r.Post("/face", enrollmentHandler.RegisterFace)
					r.Get("/report", reportHandler.StudentReport)
				})
			})

			r.Route("/courses", func(r chi.Router) {
				r.Post("/", courseHandler.CreateCourse)
				r.Get("/", courseHandler.ListCourses)
				r.Route("/{course_id}", func(r chi.Router) {
					r.Get("/", courseHandler.GetCourse)
					r.Put("/", courseHandler.UpdateCourse)
					r.Delete("/", courseHandler.DeleteCourse)
					r.Get("/attendance", attendanceHandler.ListAttendance)
					r.Put("/attendance", attendanceHandler.MarkAttendance)
					r.Get("/report", reportHandler.CourseReport)
				})
			})

			r.Post("/attendance/recognize", attendanceHandler.Recognize)
			r.Get("/reports/overall", reportHandler.OverallReport)
		})
	})

	r.Get("/ws", hub.ServeWS)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	serverAddr := ":" + port
	fmt.Printf("Server starting on http://localhost:%s\n", port)
	log.Printf("Server listening on %s", serverAddr)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}
