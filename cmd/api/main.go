package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/Windi-Fikriyansyah/skillhub_be/internal/config"
	"github.com/Windi-Fikriyansyah/skillhub_be/internal/db"
	"github.com/Windi-Fikriyansyah/skillhub_be/internal/handlers"
	"github.com/Windi-Fikriyansyah/skillhub_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/skillhub_be/internal/realtime"
	"github.com/Windi-Fikriyansyah/skillhub_be/internal/repository"
	"github.com/Windi-Fikriyansyah/skillhub_be/internal/services/assistant"
	"github.com/Windi-Fikriyansyah/skillhub_be/internal/services/chat"
	"github.com/Windi-Fikriyansyah/skillhub_be/internal/services/marketplace"
	"github.com/Windi-Fikriyansyah/skillhub_be/internal/services/notify"
	"github.com/Windi-Fikriyansyah/skillhub_be/internal/services/stats"
	"github.com/Windi-Fikriyansyah/skillhub_be/internal/services/tasks"
	"github.com/Windi-Fikriyansyah/skillhub_be/internal/storage"
	"github.com/Windi-Fikriyansyah/skillhub_be/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := config.NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.WithError(err).Fatal("connect database")
	}
	if err := db.Migrate(gdb); err != nil {
		log.WithError(err).Fatal("migrate database")
	}

	hub := realtime.NewHub(log)
	go hub.Run()

	rdb := realtime.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, log)
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.WithError(err).Warn("redis unavailable, pushes stay on this instance")
		_ = rdb.Close()
		rdb = nil
	} else {
		bridge := &realtime.RedisBridge{RDB: rdb, Hub: hub, Log: log}
		go bridge.Run(ctx)
	}

	pool := worker.NewDispatcher(cfg.WorkerCount, cfg.WorkerQueue, log)
	pool.Run()

	store := newStorage(cfg, log)

	model, err := assistant.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.WithError(err).Warn("language model disabled")
	}

	// repositories
	userRepo := repository.NewUserRepository(gdb)
	profileRepo := repository.NewProfileRepository(gdb)
	chatRepo := repository.NewChatRepository(gdb)
	taskRepo := repository.NewTaskRepository(gdb)
	notifRepo := repository.NewNotificationRepository(gdb)
	statsRepo := repository.NewStatsRepository(gdb)
	marketRepo := repository.NewMarketplaceRepository(gdb)
	aiRepo := repository.NewAIRepository(gdb)

	// services
	fanout := notify.NewFanout(rdb, hub, log)
	notifySvc := notify.NewService(notifRepo, fanout, log)
	gateway := chat.NewGateway(chatRepo, hub, fanout, log)
	statsSvc := stats.NewService(statsRepo, notifySvc, log)
	statsQueue := stats.NewQueue(pool, statsSvc, log)
	taskSvc := tasks.NewService(taskRepo, gateway, statsQueue, log)
	aiSvc := assistant.NewService(model, aiRepo, log)
	marketSvc := marketplace.NewService(marketplace.Deps{
		Repo:    marketRepo,
		Notify:  notifySvc,
		Chat:    gateway,
		Stats:   statsQueue,
		Pool:    pool,
		Mailer:  marketplace.LogMailer{From: cfg.MailFrom, Log: log},
		Badges:  statsSvc,
		History: aiSvc,
		Log:     log,
	})

	statsSvc.StartRankWorker(ctx, time.Duration(cfg.RankIntervalMin)*time.Minute)

	// handlers
	authH := &handlers.AuthHandler{
		Users:     userRepo,
		Logins:    statsSvc,
		JWTSecret: cfg.JWTSecret,
		Expires:   cfg.JWTExpiresMin,
		Log:       log,
	}
	googleH := &handlers.GoogleOAuthHandler{
		AuthHandler:     authH,
		GoogleClientID:  cfg.GoogleClientID,
		GoogleSecret:    cfg.GoogleSecret,
		GoogleRedirect:  cfg.GoogleRedirect,
		FrontendBaseURL: cfg.FrontendBaseURL,
	}
	chatH := handlers.NewChatHandler(gateway, hub, log)
	notifH := &handlers.NotificationHandler{Notify: notifySvc, Log: log}
	jobH := &handlers.JobHandler{Market: marketSvc, Store: store, Log: log}
	taskH := &handlers.TaskHandler{Tasks: taskSvc, Store: store, Log: log}
	dashH := &handlers.DashboardHandler{Market: marketSvc, Stats: statsSvc, Log: log}
	aiH := &handlers.AssistantHandler{AI: aiSvc, Store: store, Log: log}
	profileH := &handlers.ProfileHandler{Profiles: profileRepo, Store: store, Stats: statsQueue, Log: log}

	app := fiber.New(fiber.Config{
		BodyLimit: 12 << 20,
	})
	app.Use(middleware.RequestLogger(log))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "Content-Length, X-Request-ID",
		AllowCredentials: true,
	}))

	if _, local := store.(*storage.Local); local {
		app.Static("/uploads", cfg.UploadDir)
	}

	authMW := []fiber.Handler{middleware.JWTFromCookie(cfg.JWTSecret), middleware.AttachJWTLocals()}
	recruiterOnly := middleware.RequireRoles("recruiter")
	freelancerOnly := middleware.RequireRoles("freelancer")

	api := app.Group("/api")

	// public
	api.Post("/auth/register", authH.Register)
	api.Post("/auth/login", authH.Login)
	api.Post("/auth/logout", authH.Logout)
	api.Get("/auth/google/start", googleH.GoogleStart)
	api.Get("/auth/google/callback", googleH.GoogleCallback)

	protected := api.Group("/", authMW...)

	protected.Get("/me", authH.Me)
	protected.Get("/jobs", jobH.ListJobs)
	protected.Get("/ranks", dashH.Ranks)
	protected.Get("/projects/:id/tasks", taskH.ProjectTasks)

	protected.Get("/chat/rooms", chatH.GetRooms)
	protected.Get("/chat/rooms/:id/messages", chatH.GetMessages)
	protected.Patch("/chat/rooms/:id/read", chatH.MarkAsRead)

	protected.Get("/notifications", notifH.List)
	protected.Patch("/notifications/read-all", notifH.MarkAllRead)
	protected.Patch("/notifications/:id/read", notifH.MarkRead)
	protected.Delete("/notifications/:id", notifH.Delete)
	protected.Delete("/notifications", notifH.Clear)

	protected.Post("/assistant/ask", aiH.Ask)
	protected.Post("/assistant/resume", aiH.Resume)
	protected.Get("/assistant/history", aiH.History)

	// freelancer only
	protected.Post("/jobs/:id/apply", freelancerOnly, jobH.Apply)
	protected.Get("/freelancer/applications", freelancerOnly, jobH.MyApplications)
	protected.Get("/freelancer/dashboard", freelancerOnly, dashH.Freelancer)
	protected.Post("/freelancer/tasks/:id", freelancerOnly, taskH.FreelancerUpdate)
	protected.Get("/freelancer/rooms/:id/projects", freelancerOnly, taskH.RoomProjects)
	protected.Get("/freelancer/profile", freelancerOnly, profileH.GetFreelancer)
	protected.Patch("/freelancer/profile", freelancerOnly, profileH.UpdateFreelancer)
	protected.Post("/freelancer/profile/photo", freelancerOnly, profileH.UploadPhoto)
	protected.Post("/freelancer/profile/resume", freelancerOnly, profileH.UploadResume)

	// recruiter only
	protected.Post("/recruiter/jobs", recruiterOnly, jobH.PostJob)
	protected.Get("/recruiter/jobs/:id/applications", recruiterOnly, jobH.JobApplications)
	protected.Patch("/recruiter/applications/:id/status", recruiterOnly, jobH.UpdateApplicationStatus)
	protected.Post("/recruiter/projects/:id/tasks", recruiterOnly, taskH.CreateTask)
	protected.Post("/recruiter/tasks/:id/approve", recruiterOnly, taskH.Approve)
	protected.Post("/recruiter/tasks/:id/disapprove", recruiterOnly, taskH.Disapprove)
	protected.Get("/recruiter/profile", recruiterOnly, profileH.GetRecruiter)
	protected.Patch("/recruiter/profile", recruiterOnly, profileH.UpdateRecruiter)

	// websockets authenticate before the upgrade
	wsAuth := middleware.JWTFromCookie(cfg.JWTSecret)
	wsLocals := middleware.AttachJWTLocals()
	app.Get("/ws/chat/:room_id", handlers.UpgradeOnly, wsAuth, wsLocals, websocket.New(chatH.RoomSocket))
	app.Get("/ws/notifications", handlers.UpgradeOnly, wsAuth, wsLocals, websocket.New(chatH.NotificationSocket))

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.WithError(err).Warn("http shutdown")
		}
	}()

	log.WithField("port", cfg.AppPort).Info("api listening")
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.WithError(err).Error("http server stopped")
	}

	pool.Stop()
	hub.Stop()
	if rdb != nil {
		_ = rdb.Close()
	}
}

func newStorage(cfg config.Config, log logrus.FieldLogger) storage.Storage {
	if cfg.UseSupabase() {
		s, err := storage.NewSupabase(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseBucket)
		if err == nil {
			log.WithField("bucket", cfg.SupabaseBucket).Info("uploads go to supabase storage")
			return s
		}
		log.WithError(err).Warn("supabase storage unavailable, using local uploads")
	}
	return storage.NewLocal(cfg.UploadDir, cfg.AppBaseURL)
}
