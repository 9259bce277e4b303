package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/lmittmann/tint"

	"goorm-board/internal/config"
	"goorm-board/internal/engine"
	"goorm-board/internal/engine/actors"
	"goorm-board/internal/events"
	"goorm-board/internal/session"
	"goorm-board/internal/transport"
	"goorm-board/internal/utils"
)

// A headless demo session: wires the interaction engine against the
// configured board API, walks through the main flows once, and prints
// what a renderer would see.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level}))
	slog.SetDefault(logger)

	metrics := utils.NewMetricsCollector()
	hub := events.NewHub(logger)
	client := transport.NewClient(cfg.API.BaseURL, cfg.API.RequestTimeout)
	sess := session.New(client, client)

	system := actor.NewActorSystem()
	eng := engine.NewEngine(system, client, cfg, metrics, hub, logger)

	// Print toast-style notifications the way a renderer would.
	toasts, unsubscribe := hub.Subscribe()
	defer unsubscribe()
	go func() {
		for ev := range toasts {
			logger.Warn("notification", "kind", ev.Kind, "entityId", ev.EntityID, "message", ev.Message)
		}
	}()

	if username, password := os.Getenv("BOARD_USERNAME"), os.Getenv("BOARD_PASSWORD"); username != "" {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.API.RequestTimeout)
		user, err := sess.Login(ctx, username, password)
		cancel()
		if err != nil {
			logger.Error("login failed, continuing as guest", "error", err)
		} else {
			logger.Info("logged in", "username", user.Username, "role", user.Role)
		}
	}

	timeout := cfg.API.RequestTimeout + time.Second

	listResult, err := eng.Ask(eng.GetPostActor(), &actors.ListPostsMsg{
		Refresh: true,
	}, timeout)
	if err != nil {
		logger.Error("post list failed", "error", err)
		os.Exit(1)
	}
	if appErr, ok := listResult.(*utils.AppError); ok {
		logger.Error("post list failed", "code", appErr.Code, "error", appErr)
		os.Exit(1)
	}

	list := listResult.(*actors.ListSnapshot)
	logger.Info("post list", "count", len(list.Posts), "totalItems", list.Pagination.TotalItems)
	for _, p := range list.Posts {
		marker := " "
		if list.Pinned[p.ID] {
			marker = "*"
		}
		fmt.Printf("%s [%s/%s] #%d %s (likes=%d views=%d)\n",
			marker, p.Section, p.Category, p.ID, p.Title, p.Likes, p.Views)
	}
	if len(list.Posts) == 0 {
		logger.Info("nothing to interact with, exiting")
		return
	}

	// Open the first post: a view counts every time, then toggle a like
	// twice in a row to show the gate swallowing the duplicate.
	target := list.Posts[0].ID
	eng.Ask(eng.GetPostActor(), &actors.ViewPostMsg{PostID: target}, timeout)

	first, _ := eng.Ask(eng.GetPostActor(), &actors.LikePostMsg{PostID: target}, timeout)
	second, _ := eng.Ask(eng.GetPostActor(), &actors.LikePostMsg{PostID: target}, timeout)
	if snap, ok := first.(*actors.PostSnapshot); ok {
		logger.Info("like applied", "postId", target, "likes", snap.Post.Likes, "liked", snap.Liked)
	}
	if appErr, ok := second.(*utils.AppError); ok {
		logger.Info("duplicate like rejected", "code", appErr.Code)
	}

	threadResult, err := eng.Ask(eng.GetCommentActor(), &actors.LoadCommentsMsg{PostID: target}, timeout)
	if err == nil {
		if thread, ok := threadResult.(*actors.ThreadSnapshot); ok {
			logger.Info("comment thread", "postId", target,
				"topLevel", len(thread.Thread), "page", thread.Page, "totalPages", thread.Pagination.TotalPages)
		}
	}

	// Let outstanding confirmations land before reporting.
	time.Sleep(cfg.Interaction.Settle + 100*time.Millisecond)
	logger.Info("session metrics",
		"requests", metrics.RequestCount(),
		"errors", metrics.ErrorCount(),
		"likeLatency", metrics.AverageLatency("like_post"),
		"dedupRejected", metrics.DedupRejections("like_post"),
	)
}
