package router

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"finance-ledger/internal/config"
	"finance-ledger/internal/handler"
	"finance-ledger/internal/middleware"
	"finance-ledger/internal/store"
	"finance-ledger/internal/util"
	"finance-ledger/web"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures the Gin engine: pages, static assets and the JSON API.
func SetupRouter(cfg *config.Config, db *gorm.DB, log *slog.Logger) (*gin.Engine, error) {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	if err := util.RegisterValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(middleware.RequestLogger(log), recovery(log))
	if len(cfg.CORS.AllowOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	r.NoRoute(func(c *gin.Context) {
		util.Error(c, http.StatusNotFound, util.MsgNotFound)
	})

	// templates and static files from the embedded FS
	tmpl, err := template.ParseFS(web.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)
	static, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("static fs: %w", err)
	}
	r.StaticFS("/static", http.FS(static))

	pages := handler.NewPageHandler(cfg.Server.BasePath)
	r.GET("/settings", pages.Settings)
	r.GET("/healthz", handler.Health(db))

	// ====== API ======
	st := store.New(db)
	api := r.Group(cfg.Server.BasePath)

	authHandler := handler.NewAuthHandler(st.Users, log, cfg.JWT.Secret, cfg.JWT.Issuer,
		cfg.JWT.ExpireHours, cfg.Security.BcryptCost)
	api.POST("/auth/register", middleware.ValidateJSON[handler.RegisterInput](), authHandler.Register)
	api.POST("/auth/login", middleware.ValidateJSON[handler.LoginInput](), authHandler.Login)

	protected := api.Group("")
	protected.Use(
		middleware.AuthMiddleware(db, middleware.AuthOptions{
			Secret:         cfg.JWT.Secret,
			Issuer:         cfg.JWT.Issuer,
			RequireSession: cfg.JWT.RequireSession,
		}, log),
		middleware.AuditMiddleware(db, cfg.Security.EncryptionKey, log),
	)

	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/me", authHandler.GetMe)
	protected.POST("/profile", middleware.ValidateJSON[handler.UpdateProfileInput](), authHandler.UpdateProfile)
	protected.POST("/profile/password", middleware.ValidateJSON[handler.ChangePasswordInput](), authHandler.ChangePassword)

	resource[handler.AccountInput, handler.AccountUpdateInput](protected, "/accounts", handler.NewAccountHandler(st, log))
	resource[handler.CategoryInput, handler.CategoryUpdateInput](protected, "/categories", handler.NewCategoryHandler(st, log))
	resource[handler.WalletInput, handler.WalletUpdateInput](protected, "/wallets", handler.NewWalletHandler(st, log))

	txHandler := handler.NewTransactionHandler(st, log)
	protected.GET("/transactions", middleware.ValidateQuery[handler.TransactionQuery](), txHandler.List)
	protected.POST("/transactions/bulk-create", middleware.ValidateJSON[[]handler.TransactionInput](), txHandler.BulkCreate)
	resourceWithoutList[handler.TransactionInput, handler.TransactionInput](protected, "/transactions", txHandler)

	summaryHandler := handler.NewSummaryHandler(st, log)
	protected.GET("/summary", middleware.ValidateQuery[handler.SummaryQuery](), summaryHandler.Get)

	exportHandler := handler.NewExportHandler(st, log)
	protected.GET("/export/csv", middleware.ValidateQuery[handler.TransactionQuery](), exportHandler.ExportCSV)
	protected.GET("/export/xlsx", middleware.ValidateQuery[handler.TransactionQuery](), exportHandler.ExportXLSX)

	backupHandler := handler.NewBackupHandler(st, log, cfg.Security.EncryptionKey, cfg.Backup.Dir)
	withID := middleware.ValidateURI[handler.IDParam]()
	protected.POST("/backups", backupHandler.CreateBackup)
	protected.GET("/backups", backupHandler.ListBackups)
	protected.GET("/backups/:id/download", withID, backupHandler.DownloadBackup)
	protected.POST("/backups/:id/restore", withID, backupHandler.RestoreBackup)
	protected.DELETE("/backups/:id", withID, backupHandler.DeleteBackup)

	logHandler := handler.NewLogHandler(st, log, cfg.Security.EncryptionKey)
	protected.GET("/logs", middleware.ValidateQuery[handler.LogQuery](), logHandler.ListLogs)

	return r, nil
}

// crudHandler is the operation set every resource exposes.
type crudHandler interface {
	List(*gin.Context)
	Get(*gin.Context)
	Create(*gin.Context)
	Update(*gin.Context)
	Delete(*gin.Context)
	BulkDelete(*gin.Context)
}

// resource mounts the standard routes of one entity, each behind the
// validator of its input.
func resource[C, U any](g *gin.RouterGroup, path string, h crudHandler) {
	g.GET(path, h.List)
	resourceWithoutList[C, U](g, path, h)
}

func resourceWithoutList[C, U any](g *gin.RouterGroup, path string, h crudHandler) {
	withID := middleware.ValidateURI[handler.IDParam]()
	g.POST(path, middleware.ValidateJSON[C](), h.Create)
	g.POST(path+"/bulk-delete", middleware.ValidateJSON[handler.BulkDeleteInput](), h.BulkDelete)
	g.GET(path+"/:id", withID, h.Get)
	g.PATCH(path+"/:id", withID, middleware.ValidateJSON[U](), h.Update)
	g.DELETE(path+"/:id", withID, h.Delete)
}

// recovery turns a panic into the generic 500 body and logs the stack.
func recovery(log *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		log.Error("panic recovered",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"panic", recovered,
			"stack", string(debug.Stack()),
		)
		util.Error(c, http.StatusInternalServerError, util.MsgInternal)
		c.Abort()
	})
}
