package handlers

import (
	"io/fs"
	"net/http"
	"time"

	_ "blogsite/docs"
	"blogsite/internal/logger"
	"blogsite/internal/service"
	"blogsite/internal/session"

	"github.com/gin-gonic/gin"
	ginrender "github.com/gin-gonic/gin/render"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Options carries the wiring that differs between environments.
type Options struct {
	// Templates renders HTML pages by name (see render.NewHTML).
	Templates ginrender.HTMLRender
	// Assets is served under /assets; nil disables it.
	Assets fs.FS
	// UploadDir is served under UploadURLPath when uploads are stored locally.
	UploadDir     string
	UploadURLPath string
	// MaxUploadBytes caps a /ckupload/ request body; 0 means no limit.
	MaxUploadBytes int64
	FeedInterval   time.Duration
	FeedSize       int
}

// Handler wires HTTP layer to services, sessions and logging.
type Handler struct {
	services *service.Service
	sessions *session.Manager
	log      *logger.Logger
	opts     Options
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, sessions *session.Manager, log *logger.Logger, opts Options) *Handler {
	if opts.FeedInterval <= 0 {
		opts.FeedInterval = defaultInterval
	}
	if opts.FeedSize <= 0 {
		opts.FeedSize = defaultFeedSize
	}
	useFormFieldNames()
	return &Handler{services: services, sessions: sessions, log: log, opts: opts}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestLogger)
	if h.opts.Templates != nil {
		router.HTMLRender = h.opts.Templates
	}

	if h.opts.Assets != nil {
		router.StaticFS("/assets", http.FS(h.opts.Assets))
	}
	if h.opts.UploadDir != "" && h.opts.UploadURLPath != "" {
		router.Static(h.opts.UploadURLPath, h.opts.UploadDir)
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", h.health)

	h.registerAPIRoutes(router)
	router.GET("/ws/feed", h.wsFeed)

	// everything below reads and writes the session cookie
	site := router.Group("/", h.loadSession)
	{
		h.registerPublicRoutes(site)
		h.registerAuthRoutes(site)
		h.registerBlogRoutes(site)
	}
	router.NoRoute(h.loadSession, h.notFound)

	return router
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.GET("/posts", h.apiListPosts)
		api.GET("/posts/:id", h.apiGetPost)
	}
}

func (h *Handler) registerPublicRoutes(r *gin.RouterGroup) {
	r.GET("/", h.index)
	r.GET("/about", h.about)
	r.GET("/post/:id", h.showPost)
	r.POST("/ckupload/", h.ckUpload)
}

func (h *Handler) registerAuthRoutes(r *gin.RouterGroup) {
	r.GET("/register", h.registerPage)
	r.POST("/register", h.verifyCSRF, h.register)
	r.GET("/login", h.loginPage)
	r.POST("/login", h.login)
	r.GET("/logout", h.logout)
}

func (h *Handler) registerBlogRoutes(r *gin.RouterGroup) {
	blog := r.Group("/", h.requireLogin)
	{
		blog.GET("/dashboard", h.dashboard)
		blog.GET("/add_blog", h.addBlogPage)
		blog.POST("/add_blog", h.verifyCSRF, h.createBlog)
		blog.POST("/save_blog", h.verifyCSRF, h.createBlog)
		blog.GET("/edit_blog/:id", h.editBlogPage)
		blog.POST("/edit_blog/:id", h.verifyCSRF, h.updateBlog)
		blog.GET("/delete_blog/:id", h.verifyCSRF, h.deleteBlog)
		blog.POST("/delete_blog/:id", h.verifyCSRF, h.deleteBlog)
	}
}
