// Package server assembles the gin engine and the route table.
package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/academic-scheduler/internal/handlers"
	"github.com/harentsoaR/academic-scheduler/internal/middleware"
	"github.com/harentsoaR/academic-scheduler/internal/models"
	"github.com/harentsoaR/academic-scheduler/internal/upload"
)

type Options struct {
	AllowedOrigins []string
	UploadDir      string
	LoginPerMinute int

	Tokens  middleware.TokenValidator
	Revoked middleware.RevocationChecker
	Metrics *middleware.Metrics
}

func NewRouter(h *handlers.Handler, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger("/healthz", "/metrics"))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware())
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", h.Healthz)
	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}
	if opts.UploadDir != "" {
		r.Static(upload.PublicPrefix, opts.UploadDir)
	}

	auth := middleware.AuthMiddleware(opts.Tokens, opts.Revoked)
	admin := middleware.RequireRole(models.RoleAdmin)

	api := r.Group("/api")

	authRoutes := api.Group("/auth")
	{
		loginLimit := opts.LoginPerMinute
		if loginLimit <= 0 {
			loginLimit = 20
		}
		authRoutes.POST("/login", middleware.NewTokenBucket(loginLimit, loginLimit).Middleware(), h.Login)
		authRoutes.POST("/change-password", auth, h.ChangePassword)
		authRoutes.POST("/logout", auth, h.Logout)
		authRoutes.GET("/me", auth, h.Me)
	}

	protected := api.Group("")
	protected.Use(auth)

	userRoutes := protected.Group("/user")
	{
		userRoutes.GET("", admin, h.ListUsers)
		userRoutes.GET("/:id", h.GetUser)
		userRoutes.POST("", admin, h.CreateUser)
		userRoutes.PUT("/:id", admin, h.UpdateUser)
		userRoutes.DELETE("/:id", admin, h.DeleteUser)
		userRoutes.POST("/:id/reset-password", admin, h.ResetPassword)
		userRoutes.POST("/:id/profile-picture", h.UploadProfilePicture)
	}
	protected.GET("/student/get/all", h.ListStudents)

	venueRoutes := protected.Group("/venue")
	{
		venueRoutes.GET("", h.ListVenues)
		venueRoutes.GET("/:id", h.GetVenue)
		venueRoutes.POST("", admin, h.CreateVenue)
		venueRoutes.PUT("/:id", admin, h.UpdateVenue)
		venueRoutes.DELETE("/:id", admin, h.DeleteVenue)

		booker := middleware.RequireRole(models.RoleAdmin, models.RoleLecturer)
		venueRoutes.POST("/:id/bookings", booker, h.AddBooking)
		venueRoutes.DELETE("/:id/bookings/:bookingId", booker, h.RemoveBooking)
	}

	groupRoutes := protected.Group("/group")
	{
		groupRoutes.GET("", h.ListGroups)
		groupRoutes.GET("/:id", h.GetGroup)
		groupRoutes.POST("", admin, h.CreateGroup)
		groupRoutes.PUT("/:id", admin, h.UpdateGroup)
		groupRoutes.DELETE("/:id", admin, h.DeleteGroup)
		groupRoutes.POST("/:id/students", admin, h.AddStudent)
		groupRoutes.DELETE("/:id/students/:studentId", admin, h.RemoveStudent)
	}

	subjectRoutes := protected.Group("/subject")
	{
		crud(subjectRoutes, admin, resource{
			list:   h.ListSubjects,
			get:    h.GetSubject,
			create: h.CreateSubject,
			update: h.UpdateSubject,
			delete: h.DeleteSubject,
		})
	}

	timetableRoutes := protected.Group("/timetable")
	{
		crud(timetableRoutes, admin, resource{
			list:   h.ListTimetables,
			get:    h.GetTimetable,
			create: h.CreateTimetable,
			update: h.UpdateTimetable,
			delete: h.DeleteTimetable,
		})
		timetableRoutes.POST("/:id/slots", admin, h.AddSlot)
		timetableRoutes.PUT("/:id/slots/:slotId", admin, h.UpdateSlot)
		timetableRoutes.DELETE("/:id/slots/:slotId", admin, h.DeleteSlot)
		timetableRoutes.PATCH("/:id/publish", admin, h.PublishTimetable)
	}

	return r
}

type resource struct {
	list, get, create, update, delete gin.HandlerFunc
}

// crud registers the REST routes plus the verb-style paths older clients call
// (/get/all, /get/:id, /create, /update/:id, /delete/:id).
func crud(g *gin.RouterGroup, admin gin.HandlerFunc, res resource) {
	g.GET("", res.list)
	g.GET("/:id", res.get)
	g.POST("", admin, res.create)
	g.PUT("/:id", admin, res.update)
	g.DELETE("/:id", admin, res.delete)

	g.GET("/get/all", res.list)
	g.GET("/get/:id", res.get)
	g.POST("/create", admin, res.create)
	g.PUT("/update/:id", admin, res.update)
	g.DELETE("/delete/:id", admin, res.delete)
}
