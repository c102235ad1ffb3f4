package handlers

import (
	"EmergencyAssist/internal/services"
	"EmergencyAssist/internal/storage"
	"EmergencyAssist/pkg/config"
	"EmergencyAssist/pkg/i18n"
	"EmergencyAssist/pkg/sse"

	"github.com/gin-gonic/gin"
)

// Options 构造 Handlers 所需的依赖
type Options struct {
	Store      storage.Storage
	Assistant  *services.Assistant
	Translator *services.Translator
	// Search 为 nil 时检索接口返回 503
	Search *services.ProtocolSearch
	I18n   *i18n.I18nSupport
	// Events 为 nil 时不注册会话事件流
	Events *sse.Hub
	// Idempotency 挂在创建类接口上，可为空
	Idempotency gin.HandlerFunc
	// Prefix 为空时使用 config.GlobalConfig.APIPrefix
	Prefix string
	// StorageName 健康检查中展示的存储类型
	StorageName string
}

type Handlers struct {
	store       storage.Storage
	assistant   *services.Assistant
	translator  *services.Translator
	search      *services.ProtocolSearch
	i18n        *i18n.I18nSupport
	events      *sse.Hub
	idempotency gin.HandlerFunc
	prefix      string
	storageName string
}

func NewHandlers(opts Options) *Handlers {
	prefix := opts.Prefix
	if prefix == "" && config.GlobalConfig != nil {
		prefix = config.GlobalConfig.APIPrefix
	}
	if prefix == "" {
		prefix = "/api"
	}
	if opts.Assistant == nil {
		opts.Assistant = services.NewAssistant(nil, opts.Store, nil)
	}
	if opts.Translator == nil {
		opts.Translator = services.NewTranslator(nil, nil, 0, nil)
	}
	return &Handlers{
		store:       opts.Store,
		assistant:   opts.Assistant,
		translator:  opts.Translator,
		search:      opts.Search,
		i18n:        opts.I18n,
		events:      opts.Events,
		idempotency: opts.Idempotency,
		prefix:      prefix,
		storageName: opts.StorageName,
	}
}

func (h *Handlers) Register(engine *gin.Engine) {
	r := engine.Group(h.prefix)

	// Register System Module Routes
	h.registerSystemRoutes(r)

	// Register Business Module Routes
	h.registerUserRoutes(r)
	h.registerProtocolRoutes(r)
	h.registerContactRoutes(r)
	h.registerSessionRoutes(r)
	h.registerAIRoutes(r)
}

// create 创建类接口在处理函数前挂上幂等中间件
func (h *Handlers) create(handler gin.HandlerFunc) []gin.HandlerFunc {
	if h.idempotency == nil {
		return []gin.HandlerFunc{handler}
	}
	return []gin.HandlerFunc{h.idempotency, handler}
}

func (h *Handlers) registerSystemRoutes(r *gin.RouterGroup) {
	system := r.Group("/system")
	{
		system.GET("/health", h.HealthCheck)
	}
}

// User Module
func (h *Handlers) registerUserRoutes(r *gin.RouterGroup) {
	users := r.Group("/users")
	{
		users.GET("/:id", h.handleGetUser)
		users.POST("", h.create(h.handleCreateUser)...)
		users.PUT("/:id", h.handleUpdateUser)
	}
}

func (h *Handlers) registerProtocolRoutes(r *gin.RouterGroup) {
	protocols := r.Group("/emergency-protocols")
	{
		protocols.GET("", h.handleListProtocols)
		// search 需要在 :type 之前注册
		protocols.GET("/search", h.handleSearchProtocols)
		protocols.GET("/:type", h.handleGetProtocol)
		protocols.POST("", h.create(h.handleCreateProtocol)...)
	}
}

func (h *Handlers) registerContactRoutes(r *gin.RouterGroup) {
	contacts := r.Group("/emergency-contacts")
	{
		contacts.GET("", h.handleListContacts)
		contacts.GET("/type/:type", h.handleListContactsByType)
		contacts.POST("", h.create(h.handleCreateContact)...)
	}
}

func (h *Handlers) registerSessionRoutes(r *gin.RouterGroup) {
	sessions := r.Group("/user-sessions")
	{
		sessions.POST("", h.create(h.handleCreateSession)...)
		sessions.GET("/:id", h.handleGetSession)
		sessions.GET("/user/:userId", h.handleListUserSessions)
		sessions.PUT("/:id", h.handleUpdateSession)
		sessions.POST("/:id/actions", h.handleAppendAction)
		sessions.POST("/:id/end", h.handleEndSession)
		if h.events != nil {
			sessions.GET("/:id/events", h.handleSessionEvents)
		}
	}
}

func (h *Handlers) registerAIRoutes(r *gin.RouterGroup) {
	ai := r.Group("/ai")
	{
		ai.POST("/analyze-scene", h.handleAnalyzeScene)
		ai.POST("/translate", h.handlePlaceholderTranslate)
		ai.POST("/detect-emotion", h.handleDetectEmotion)
	}
	gemini := r.Group("/gemini")
	{
		gemini.POST("/chat", h.handleChat)
		gemini.POST("/analyze-emergency", h.handleAnalyzeEmergency)
		gemini.POST("/translate", h.handleTranslate)
	}
}
