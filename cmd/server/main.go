package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/talentbridge/profile-matcher/internal/config"
	"github.com/talentbridge/profile-matcher/internal/domain/fiber/handler"
	"github.com/talentbridge/profile-matcher/internal/logger"
	"github.com/talentbridge/profile-matcher/internal/matching"
	"github.com/talentbridge/profile-matcher/internal/middleware"
	"github.com/talentbridge/profile-matcher/internal/model"
	"github.com/talentbridge/profile-matcher/internal/repository"
	"github.com/talentbridge/profile-matcher/internal/service"
	"github.com/talentbridge/profile-matcher/internal/usecase"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	ctx := context.Background()
	if err := godotenv.Load(); err != nil {
		log.Println("Could not load .env file")
	}

	appConfig := config.LoadAppConfig()
	matchConfig := config.LoadMatchingConfig()

	zlog, err := logger.New(appConfig.Env == "production", appConfig.Debug)
	if err != nil {
		log.Fatal(err)
	}
	defer zlog.Sync()

	app := fiber.New(fiber.Config{
		AppName: appConfig.Name,
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			message := err.Error()
			if message == "" {
				message = "Internal Server Error"
			}
			return ctx.Status(code).JSON(fiber.Map{"error": message})
		},
	})
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: appConfig.Env != "production",
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(pprof.New(pprof.Config{
		Next: func(c *fiber.Ctx) bool {
			return appConfig.Env == "production"
		},
	}))
	app.Use(healthcheck.New())
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.RateLimiter(50, 1*time.Minute))

	db := ConnectDB()

	jdRepo := repository.NewJDRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	matchRepo := repository.NewMatchRepository(db)

	gemini, err := service.NewGeminiService(ctx, zlog)
	if err != nil {
		// the lexical strategy works without Gemini, so keep going
		zlog.Warn("gemini service unavailable", zap.Error(err))
		gemini = nil
	}

	matcher := buildMatcher(zlog, matchConfig, gemini)

	// a typed nil must not leak into the interface field
	var geminiSvc service.GeminiServiceInterface
	if gemini != nil {
		geminiSvc = gemini
	}
	uc := usecase.NewMatchUsecase(jdRepo, profileRepo, matchRepo, geminiSvc, matcher, zlog)
	matchHandler := handler.NewMatchHandler(uc)
	matchHandler.RegisterRoutes(app)

	zlog.Info("server starting",
		zap.String("port", appConfig.Port),
		zap.String("strategy", matchConfig.Strategy),
		zap.Int("threshold", matchConfig.Threshold),
	)
	if err := app.Listen(appConfig.Port); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}

func buildMatcher(zlog *zap.Logger, matchConfig *config.MatchingConfig, gemini *service.GeminiService) *matching.Matcher {
	var encoder matching.Encoder
	if gemini != nil {
		encoder = gemini
	}

	explainerOpts := []matching.ExplainerOption{}
	if matchConfig.NarrativeEnabled {
		var generator matching.NarrativeGenerator
		switch matchConfig.NarrativeProvider {
		case "openrouter":
			generator = service.NewOpenRouterService()
		default:
			if gemini != nil {
				generator = gemini
			}
		}
		if generator != nil {
			explainerOpts = append(explainerOpts,
				matching.WithNarrativeGenerator(generator, matchConfig.PromptInstruction))
		} else {
			zlog.Warn("narrative enabled but no provider available, using statistical summaries")
		}
	}
	explainer := matching.NewExplainer(encoder, zlog, explainerOpts...)

	return matching.NewMatcher(encoder, explainer, zlog,
		matching.WithStrategy(matching.Strategy(matchConfig.Strategy)),
		matching.WithThreshold(matchConfig.Threshold),
		matching.WithTopN(matchConfig.TopN),
		matching.WithGenerativeNarrative(matchConfig.NarrativeEnabled),
	)
}

func ConnectDB() *gorm.DB {
	dbConfig := config.LoadDBConfig()
	appConfig := config.LoadAppConfig()

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		dbConfig.Host,
		dbConfig.User,
		dbConfig.Password,
		dbConfig.Name,
		dbConfig.Port,
		dbConfig.SSLMode,
		dbConfig.TimeZone,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	pgDB, err := db.DB()
	if err != nil {
		log.Fatalf("Could not get database instance: %v", err)
	}
	if appConfig.Env != "production" {
		pgDB.SetMaxIdleConns(5)
		pgDB.SetMaxOpenConns(10)
		pgDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		pgDB.SetMaxIdleConns(20)
		pgDB.SetMaxOpenConns(200)
		pgDB.SetConnMaxLifetime(time.Hour)
	}

	if err := db.AutoMigrate(&model.JD{}, &model.Profile{}, &model.MatchResult{}); err != nil {
		log.Fatal("migration failed: ", err)
	}
	return db
}
