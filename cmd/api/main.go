package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"github.com/joho/godotenv"
	"github.com/shinyyama/pharmacy-admin-backend/internal/config"
	"github.com/shinyyama/pharmacy-admin-backend/internal/db"
	"github.com/shinyyama/pharmacy-admin-backend/internal/files"
	"github.com/shinyyama/pharmacy-admin-backend/internal/identity"
	"github.com/shinyyama/pharmacy-admin-backend/internal/model"
	"github.com/shinyyama/pharmacy-admin-backend/internal/server"
	"github.com/shinyyama/pharmacy-admin-backend/internal/session"
	"google.golang.org/api/option"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()
	fb, err := db.ConnectFirebase(ctx, cfg)
	if err != nil {
		log.Fatalf("firebase init error: %v", err)
	}
	defer fb.Close()

	if cfg.FirebaseWebAPIKey == "" {
		log.Printf("FIREBASE_WEB_API_KEY is not set; password login is disabled")
	}
	idp := identity.NewFirebase(fb.Auth, cfg.FirebaseWebAPIKey, &http.Client{Timeout: 10 * time.Second})

	var sessions session.Store
	if cfg.RedisURL != "" {
		rs, err := session.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis connect error: %v", err)
		}
		defer rs.Close()
		sessions = rs
		log.Printf("sessions: redis")
	} else {
		sessions = session.NewMemoryStore()
		log.Printf("sessions: in-memory (REDIS_URL not set)")
	}

	var resolver files.Resolver = files.Passthrough{}
	if cfg.StorageBucket != "" {
		var opts []option.ClientOption
		if cfg.FirebaseCredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.FirebaseCredentialsFile))
		}
		sc, err := storage.NewClient(ctx, opts...)
		if err != nil {
			log.Fatalf("storage client error: %v", err)
		}
		defer sc.Close()
		resolver = files.NewStore(sc, cfg.StorageBucket, cfg.SignedURLTTL)
	}

	srv := server.New(cfg, server.Deps{
		Firestore: fb.Firestore,
		Identity:  idp,
		Sessions:  sessions,
		Files:     resolver,
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)

	go func() {
		log.Printf("starting server on %s", addr)
		errCh <- srv.Start(addr)
	}()

	if cfg.ActivityLogEnabled() {
		go func() {
			conn, err := db.Connect(cfg)
			if err != nil {
				log.Printf("db connect error: %v", err)
				return
			}
			if err := conn.AutoMigrate(&model.Activity{}); err != nil {
				log.Printf("auto migrate error: %v", err)
				return
			}
			srv.SetDB(conn)
			log.Printf("activity log ready")
		}()
	} else {
		log.Printf("activity log disabled (DB_* not set)")
	}

	if err := <-errCh; err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
