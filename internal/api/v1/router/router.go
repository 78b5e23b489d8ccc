package router

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"lms/internal/api/v1/handler"
	"lms/internal/config"
	"lms/internal/middleware"
	"lms/internal/pubsub"
	"lms/internal/repository"
	"lms/internal/service"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awsmiddleware "github.com/aws/smithy-go/middleware"
	"github.com/go-playground/validator/v10"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

func New(cfg *config.Config, logger zerolog.Logger) (http.Handler, *sql.DB, error) {
	logger.Info().Str("environment", cfg.Environment).Msg("Router initializing")

	// 1. Open DB connection (connection pooling)
	dsn := cfg.DBConnectionString
	// In a development environment, we want to ensure that SSL is disabled for
	// local testing. In production, the connection string should be provided
	// with the correct SSL settings.
	if cfg.Environment == "development" && !strings.Contains(dsn, "sslmode") {
		separator := " "
		if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
			if strings.Contains(dsn, "?") {
				separator = "&"
			} else {
				separator = "?"
			}
		}
		dsn += separator + "sslmode=disable"
	}
	// For non-development environments that use a transaction pooler like
	// pgbouncer, use the simple query protocol to avoid issues with
	// server-side prepared statements.
	if cfg.Environment != "development" && !strings.Contains(dsn, "prefer_simple_protocol") {
		separator := "&"
		if !strings.Contains(dsn, "?") {
			separator = "?"
		}
		dsn += separator + "prefer_simple_protocol=true"
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		logger.Fatal().Msgf("Failed to open DB connection: %v", err)
		return nil, nil, err
	}
	if err := db.Ping(); err != nil {
		logger.Fatal().Msgf("Failed to ping DB: %v", err)
		return nil, nil, err
	}
	logger.Info().Msg("Database connection successful")

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxIdleTime(5 * time.Minute)

	// 2. Initialize S3 client
	s3Config, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")),
		awsconfig.WithAPIOptions([]func(*awsmiddleware.Stack) error{removeDisableGzip()}),
	)
	if err != nil {
		logger.Fatal().Msgf("Failed to load S3 config: %v", err)
	}
	s3Client := s3.NewFromConfig(s3Config, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3URL)
		o.UsePathStyle = true
	})

	// 3. Initialize validator
	validate := validator.New(validator.WithRequiredStructEnabled())

	// 4. Initialize Pub/Sub publisher for media processing jobs
	publisher, err := pubsub.NewPublisher(context.Background(), cfg.GCPProjectID, cfg.MediaTopic)
	if err != nil {
		logger.Fatal().Msgf("Failed to create Pub/Sub publisher: %v", err)
		return nil, nil, err
	}

	// 5. Initialize repositories & services & handlers
	userRepo := repository.NewUserRepo(db)
	courseRepo := repository.NewCourseRepo(db, logger)
	sectionRepo := repository.NewSectionRepo(db)
	lessonRepo := repository.NewLessonRepo(db, logger)
	questionRepo := repository.NewQuestionRepo(db)
	attemptRepo := repository.NewAttemptRepo(db)
	enrollmentRepo := repository.NewEnrollmentRepo(db)

	tokenTTL := time.Duration(cfg.TokenTTLHours) * time.Hour
	uploadTTL := time.Duration(cfg.UploadURLTTLMin) * time.Minute

	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret, tokenTTL, logger)
	courseSvc := service.NewCourseService(courseRepo, sectionRepo, lessonRepo, s3Client, cfg.S3URL, cfg.S3Bucket, logger)
	sectionSvc := service.NewSectionService(sectionRepo, courseRepo, logger)
	lessonSvc := service.NewLessonService(lessonRepo, sectionRepo, s3Client, cfg.S3Bucket, uploadTTL, publisher, logger)
	quizSvc := service.NewQuizService(questionRepo, lessonRepo, logger)
	attemptSvc := service.NewAttemptService(questionRepo, attemptRepo, lessonRepo, logger)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, courseRepo, sectionRepo, lessonRepo, logger)

	authHandler := handler.NewAuthHandler(authSvc, validate)
	courseHandler := handler.NewCourseHandler(courseSvc, sectionSvc, enrollmentSvc, validate)
	sectionHandler := handler.NewSectionHandler(sectionSvc, lessonSvc, validate)
	lessonHandler := handler.NewLessonHandler(lessonSvc, enrollmentSvc, quizSvc, attemptSvc, validate)
	questionHandler := handler.NewQuestionHandler(quizSvc, attemptSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)

	// 6. Initialize middleware
	authMiddleware := middleware.AuthMiddleware(cfg.JWTSecret)

	// 7. Create ServeMux router with API v1 mounted under /v1
	apiV1Mux := http.NewServeMux()
	authHandler.RegisterRoutes(apiV1Mux)
	courseHandler.RegisterRoutes(apiV1Mux, authMiddleware)
	sectionHandler.RegisterRoutes(apiV1Mux, authMiddleware)
	lessonHandler.RegisterRoutes(apiV1Mux, authMiddleware)
	questionHandler.RegisterRoutes(apiV1Mux, authMiddleware)
	enrollmentHandler.RegisterRoutes(apiV1Mux, authMiddleware)

	mux := http.NewServeMux()
	mux.Handle("/v1/", http.StripPrefix("/v1", apiV1Mux))

	// 8. Apply CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	return middleware.LoggerMiddleware(c.Handler(mux)), db, nil
}

// removeDisableGzip is a workaround for S3 signature errors with some S3-compatible services.
// See: https://github.com/supabase/storage/issues/577
func removeDisableGzip() func(*awsmiddleware.Stack) error {
	return func(stack *awsmiddleware.Stack) error {
		if _, ok := stack.Finalize.Get("DisableAcceptEncodingGzip"); ok {
			_, err := stack.Finalize.Remove("DisableAcceptEncodingGzip")
			return err
		}
		return nil
	}
}
