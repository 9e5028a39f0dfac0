package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	api "github.com/examind-labs/examind/internal/api/http"
	auth "github.com/examind-labs/examind/internal/auth/middleware"
	"github.com/examind-labs/examind/internal/config"
	"github.com/examind-labs/examind/internal/db"
	"github.com/examind-labs/examind/internal/exam"
	"github.com/examind-labs/examind/internal/rbac"
	syncx "github.com/examind-labs/examind/internal/sync"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	log := logrus.New()
	if cfg.Mode == config.ModeProd {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- DB ---
	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	dbh, err := db.Open(openCtx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.WithError(err).Fatal("db open failed")
	}
	if err := db.EnsureAdmin(openCtx, dbh, cfg.AdminUser, cfg.AdminPassHash); err != nil {
		log.WithError(err).Fatal("seed admin")
	}

	events := syncx.NewEventRepo(dbh)
	store := exam.NewSQLStore(dbh, exam.WithEventLog(events))
	authSvc := auth.NewAuthService(cfg.AuthSecret, cfg.TokenTTL)
	checker := rbac.NewChecker(nil)
	parents := api.NewParentDirectory(dbh)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh))

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		// Question bank (teacher/admin)
		pr.With(rbac.Require("question:create")).
			Post("/questions", api.CreateQuestionHandler(store))
		pr.With(rbac.Require("question:update")).
			Put("/questions/{questionID}", api.UpdateQuestionHandler(store))
		pr.With(rbac.Require("question:delete")).
			Delete("/questions/{questionID}", api.DeleteQuestionHandler(store))
		pr.With(rbac.Require("question:list")).
			Get("/questions", api.ListQuestionsHandler(store))
		pr.With(rbac.Require("question:list")).
			Get("/questions/{questionID}", api.GetQuestionHandler(store))

		// Exams
		pr.With(rbac.Require("exam:create")).
			Post("/exams", api.CreateExamHandler(store))
		pr.With(rbac.Require("exam:update")).
			Put("/exams/{examID}", api.UpdateExamHandler(store))
		pr.With(rbac.Require("exam:update")).
			Post("/exams/{examID}/questions", api.AttachQuestionsHandler(store))
		pr.With(rbac.Require("exam:update")).
			Post("/exams/{examID}/publish", api.PublishExamHandler(store))
		pr.With(rbac.Require("exam:view")).
			Get("/exams", api.ListExamsHandler(store))
		pr.With(rbac.Require("exam:view")).
			Get("/exams/{examID}", api.GetExamHandler(store))
		pr.With(rbac.Require("exam:stats")).
			Get("/exams/{examID}/stats", api.ExamStatsHandler(store))
		pr.With(rbac.Require("submission:grade")).
			Get("/exams/{examID}/pending-grading", api.PendingGradingHandler(store))

		// Student attempt flow
		pr.With(rbac.Require("submission:start")).
			Post("/submissions/start", api.StartSubmissionHandler(store))
		pr.With(rbac.Require("submission:answer")).
			Post("/submissions/{submissionID}/answers", api.RecordAnswerHandler(store))
		pr.With(rbac.Require("submission:submit")).
			Post("/submissions/{submissionID}/submit", api.SubmitHandler(store))
		pr.With(rbac.RequireAny("submission:view-own", "submission:view-all")).
			Get("/submissions/{submissionID}", api.GetSubmissionHandler(store, checker, parents))
		pr.With(rbac.RequireAny("submission:view-own", "submission:view-all")).
			Get("/submissions", api.ListSubmissionsHandler(store, checker, parents))

		// Manual grading (teacher/admin)
		pr.With(rbac.Require("submission:grade")).
			Put("/submissions/{submissionID}/grade", api.GradeAnswerHandler(store))

		// Users
		pr.With(rbac.Require("users:bulk_upsert")).
			Post("/users/bulk", api.BulkUpsertUsersHandler(dbh))
		pr.With(rbac.Require("users:list")).
			Get("/users", api.ListUsersHandler(dbh))
		pr.With(rbac.Require("user:change_password")).
			Post("/users/change-password", api.ChangePasswordHandler(dbh))

		// Audit log (admin via wildcard)
		pr.With(rbac.Require("events:list")).
			Get("/events", api.EventsHandler(events))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbh.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	// Auto-submit attempts whose time limit ran out.
	if cfg.EnableSweeper {
		go exam.NewSweeper(store, log, cfg.SweepInterval).Run(ctx)
	}

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	go func() {
		<-ctx.Done()
		shCtx, shCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shCancel()
		_ = srv.Shutdown(shCtx)
	}()

	log.WithFields(logrus.Fields{
		"addr": cfg.HTTPAddr,
		"mode": cfg.Mode,
		"db":   cfg.DBDriver,
	}).Info("gateway listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server exited")
	}
}
