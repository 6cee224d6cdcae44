package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"

	"kanban/internal/auth"
	"kanban/internal/config"
	"kanban/internal/database"
	"kanban/internal/handlers"
	"kanban/internal/middleware"
	"kanban/internal/platform/session"
	"kanban/internal/platform/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.AccessTokenTTL(), cfg.RefreshTokenTTL())

	var guard auth.Guard
	if cfg.LockoutRedisURL != "" {
		opts, err := redis.ParseURL(cfg.LockoutRedisURL)
		if err != nil {
			log.Fatal(err)
		}
		guard = auth.NewRedisGuard(redis.NewClient(opts), cfg.MaxFailedLogins, cfg.LockoutDuration())
	} else {
		guard = auth.NewMemoryGuard(cfg.MaxFailedLogins, cfg.LockoutDuration())
	}

	sessions := session.NewService(user.NewService(db), issuer, guard, cfg.PasswordMinLength)

	app := fiber.New()

	app.Use(compress.New())
	app.Use(helmet.New())
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(healthcheck.New())
	app.Use(cors.New())

	app.Use(func(c *fiber.Ctx) error {
		c.Locals("config", cfg)
		c.Locals("db", db)
		c.Locals("issuer", issuer)
		c.Locals("sessions", sessions)
		return c.Next()
	})

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "API running"})
	})

	authGroup := app.Group("/auth")
	authGroup.Post("/register", handlers.Register)
	authGroup.Post("/login", handlers.Login)
	authGroup.Post("/refresh", handlers.RefreshToken)
	authGroup.Post("/logout", handlers.Logout)

	app.Get("/users/me", middleware.AuthMiddleware, handlers.GetCurrentUser)
	app.Get("/users", handlers.ListUsers)

	app.Post("/boards", handlers.CreateBoard)
	app.Get("/boards", handlers.ListBoards)
	app.Get("/boards/:id/groups", handlers.ListGroupsByBoard)
	app.Get("/boards/:id/tasks", handlers.ListTasksByBoard)
	app.Patch("/boards/:id", handlers.UpdateBoard)
	app.Delete("/boards/:id", handlers.DeleteBoard)

	app.Post("/groups", handlers.CreateGroup)
	app.Get("/groups/:id/tasks", handlers.ListTasksByGroup)
	app.Patch("/groups/:id", handlers.UpdateGroup)
	app.Delete("/groups/:id", handlers.DeleteGroup)

	app.Post("/tasks", handlers.CreateTask)
	app.Patch("/tasks/:id", handlers.UpdateTask)
	app.Post("/tasks/:id/move", handlers.MoveTask)
	app.Delete("/tasks/:id", handlers.DeleteTask)

	if cfg.HasStorage() {
		app.Post("/tasks/:id/attachments", middleware.AuthMiddleware, handlers.UploadAttachment)
		app.Get("/tasks/:id/attachments", middleware.AuthMiddleware, handlers.ListAttachments)
		app.Delete("/attachments/:id", middleware.AuthMiddleware, handlers.DeleteAttachment)
	}

	app.Use(func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNotFound)
	})

	log.Fatal(app.Listen(fmt.Sprintf(":%d", cfg.ServerPort)))
}
