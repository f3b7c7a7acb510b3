package handlers

import (
	"net/http"

	"todoList/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

type RouterConfig struct {
	RateLimit      int
	AllowedOrigins []string
}

func Routes(cfg RouterConfig, tasks *TaskHandler, authHandler *AuthHandler, sessions middleware.TokenResolver) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	if cfg.RateLimit > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimit))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-Device-Location"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", tasks.HealthCheck)
	r.Post("/auth/login", authHandler.Login)
	r.Get("/users", authHandler.Users)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(sessions))

		r.Post("/auth/logout", authHandler.Logout)

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", tasks.ListTasks)
			r.Post("/", tasks.CreateTask)
			r.Put("/", tasks.ReplaceTasks)
			r.Get("/stats", tasks.Stats)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", tasks.GetTask)
				r.Put("/", tasks.EditTask)
				r.Delete("/", tasks.DeleteTask)
				r.Post("/toggle", tasks.ToggleTask)
				r.Get("/photo", tasks.GetPhoto)
			})
		})
	})

	return r
}
