package main

import (
	"context"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/designweb/gallery/internal/auth"
	"github.com/designweb/gallery/internal/bookmarks"
	"github.com/designweb/gallery/internal/config"
	"github.com/designweb/gallery/internal/content"
	"github.com/designweb/gallery/internal/db"
	"github.com/designweb/gallery/internal/handler"
	"github.com/designweb/gallery/internal/logger"
	"github.com/designweb/gallery/internal/store"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
			defer func() { _ = log.Sync() }()

			database, err := db.New(cfg.DB.Driver, cfg.DB.DSN)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			if err := db.Migrate(database, cfg.DB.Driver); err != nil {
				return err
			}

			sessionManager := auth.NewSessionManager(database, cfg.DB.Driver, cfg.SessionLifetime, cfg.InsecureCookies)

			ctx := context.Background()
			oidcProvider, err := auth.NewProvider(ctx, cfg)
			if err != nil {
				return err
			}

			userStore := store.NewUserStore(database)
			folderStore := store.NewFolderStore(database)
			bookmarkStore := store.NewBookmarkStore(database)

			var cache content.Cache
			if cfg.Redis.Addr != "" {
				redisCache, err := content.NewRedisCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
				if err != nil {
					return err
				}
				cache = redisCache
				log.Info("content cache: redis", logger.String("addr", cfg.Redis.Addr))
			} else {
				cache = content.NewMemoryCache()
				log.Info("content cache: in-memory")
			}

			contentClient := content.NewClient(content.Options{
				BaseURL:    cfg.Content.BaseURL,
				ProjectID:  cfg.Content.ProjectID,
				Dataset:    cfg.Content.Dataset,
				APIVersion: cfg.Content.APIVersion,
				Token:      cfg.Content.Token,
				CacheTTL:   cfg.Content.CacheTTL,
				Cache:      cache,
				Log:        log,
			})

			notifier := handler.NewFlashNotifier(sessionManager)
			bookmarkManager := bookmarks.NewManager(folderStore, bookmarkStore, notifier, log)

			authHandlers := auth.NewHandlers(oidcProvider, sessionManager, userStore, bookmarkManager, cfg.InsecureCookies)
			authMiddleware := auth.NewMiddleware(sessionManager, userStore)

			router := handler.NewRouter(handler.Deps{
				SessionManager: sessionManager,
				AuthHandlers:   authHandlers,
				AuthMiddleware: authMiddleware,
				Content:        contentClient,
				Bookmarks:      bookmarkManager,
				FolderStore:    folderStore,
				BookmarkStore:  bookmarkStore,
			})

			log.Info("listening", logger.String("addr", cfg.HTTP.Addr))
			return http.ListenAndServe(cfg.HTTP.Addr, router)
		},
	}
}
