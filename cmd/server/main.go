// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package main is the entry point for the botcore media-index bot.
//
// botcore indexes media files posted to monitored channels and serves
// them back to requesting principals over a chat platform, gated by a
// daily retrieval quota, a mandatory-channel subscription check, and
// admin/owner overrides. It has no HTTP surface of its own: an external
// Prometheus scraper reads the registry internal/metrics exposes, and
// command parsing/dispatch against the chat platform is out of scope
// here (see internal/platform's package doc) — this binary wires the
// domain engines and the suture supervisor tree that keeps the
// background ingestion, delivery, and maintenance loops running.
//
// # Startup sequence
//
//  1. Configuration: load settings via the koanf-based layered loader
//     (env vars > YAML file > struct defaults).
//  2. Logging: initialize the zerolog wrapper with the configured level/
//     format.
//  3. Document store + cache: connect to the mongo-driver collection set
//     and the Redis-backed cache store.
//  4. Chat platform client: obtain the platform.Client implementation.
//     This repo ships no concrete client — it is an external
//     collaborator per this package's scope — so newPlatformClient
//     returns an error until the embedding deployment supplies one.
//  5. Domain engines: construct access, mediaindex, query, delivery,
//     ingestion, broadcast, deletion, maintenance, subscription,
//     connection, filter, botsettings, and recommend, wired to the
//     shared store/cache/client handles.
//  6. Authorization: construct the Casbin-backed Gatekeeper and sync its
//     admin role from the configured owner/admin ID lists.
//  7. Supervisor tree: register the ingestion worker, deletion worker,
//     and maintenance loop as supervised services and serve until a
//     shutdown signal arrives.
//
// # Signal handling
//
// The process shuts down gracefully on SIGINT and SIGTERM: the
// supervisor tree context is cancelled, each layer is given its
// configured shutdown timeout to stop, and the store/cache connections
// are closed last.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/filevault/botcore/internal/access"
	"github.com/filevault/botcore/internal/apperr"
	"github.com/filevault/botcore/internal/authz"
	"github.com/filevault/botcore/internal/botsettings"
	"github.com/filevault/botcore/internal/broadcast"
	"github.com/filevault/botcore/internal/cachestore"
	"github.com/filevault/botcore/internal/config"
	"github.com/filevault/botcore/internal/connection"
	"github.com/filevault/botcore/internal/deletion"
	"github.com/filevault/botcore/internal/delivery"
	"github.com/filevault/botcore/internal/delivery/autodelete"
	"github.com/filevault/botcore/internal/filter"
	"github.com/filevault/botcore/internal/ingestion"
	"github.com/filevault/botcore/internal/logging"
	"github.com/filevault/botcore/internal/maintenance"
	"github.com/filevault/botcore/internal/mediaindex"
	"github.com/filevault/botcore/internal/models"
	"github.com/filevault/botcore/internal/platform"
	"github.com/filevault/botcore/internal/query"
	"github.com/filevault/botcore/internal/ratelimit"
	"github.com/filevault/botcore/internal/recommend"
	"github.com/filevault/botcore/internal/store"
	"github.com/filevault/botcore/internal/subscription"
	"github.com/filevault/botcore/internal/supervisor"
)

// app bundles every wired component main needs to run and stop cleanly.
type app struct {
	db    *store.MongoDatabase
	cache cachestore.Store

	access      *access.Engine
	index       *mediaindex.Index
	query       *query.Engine
	delivery    *delivery.Engine
	broadcast   *broadcast.Service
	connection  *connection.Engine
	filter      *filter.Engine
	botsettings *botsettings.Engine
	recommend   *recommend.Recorder
	subscribe   *subscription.Gate
	gatekeeper  *authz.Gatekeeper

	ingestQueue *ingestion.Queue
	deleteQueue *deletion.Queue
	bulkDeleter *deletion.BulkDeleter
	maintenance *maintenance.Engine

	tree *supervisor.SupervisorTree
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Msg("starting botcore supervisor tree")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := newPlatformClient(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to obtain chat platform client")
	}

	a, err := newApp(ctx, cfg, client)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize application")
	}
	defer a.close(context.Background())

	if err := a.tree.Serve(ctx); err != nil && ctx.Err() == nil {
		logging.Error().Err(err).Msg("supervisor tree exited with error")
		os.Exit(1)
	}

	logging.Info().Msg("botcore shut down cleanly")
}

// newPlatformClient obtains the chat platform SDK client. Per this repo's
// scope (see internal/platform's package doc), no concrete
// implementation ships here — platform.Client is an external
// collaborator the embedding deployment is responsible for supplying,
// the same way the Redis/Mongo endpoints in config are.
func newPlatformClient(cfg *config.Config) (platform.Client, error) {
	if cfg.Platform.BotToken == "" {
		return nil, apperr.New(apperr.InvalidInput, "platform.bot_token is required")
	}
	return nil, apperr.New(apperr.SystemError, "no chat platform client configured: platform.Client has no concrete implementation in this repo")
}

// newApp wires every domain engine against the document store, cache,
// and chat platform client, builds the Casbin Gatekeeper, and registers
// the ingestion, deletion, and maintenance workers under a three-layer
// supervisor tree.
func newApp(ctx context.Context, cfg *config.Config, client platform.Client) (*app, error) {
	db, err := store.Connect(ctx, cfg.Store.URI, cfg.Store.Database)
	if err != nil {
		return nil, err
	}

	cache := cachestore.NewRedisStore(cfg.Cache.URI, "", 0, logging.Logger())

	filesColl := db.Collection(cfg.Store.FilesCollection)
	principalsColl := db.Collection("principals")
	connectionsColl := db.Collection("connections")
	settingsColl := db.Collection("bot_settings")

	accessEngine := access.New(principalsColl, cache)
	index := mediaindex.New(filesColl, cache)
	queryEngine := query.New(index, cache)
	connEngine := connection.New(connectionsColl, cache)
	filterEngine := filter.New(db, cache)
	settingsEngine := botsettings.New(settingsColl, cache)
	recommender := recommend.New(cache)

	enforcer, err := authz.NewEnforcer(ctx, nil)
	if err != nil {
		return nil, err
	}
	auditLogger := authz.NewAuditLogger(authz.DefaultAuditLoggerConfig())
	gatekeeper := authz.NewGatekeeper(enforcer, auditLogger)
	if err := gatekeeper.SyncAdmins(effectiveAdmins(cfg.Owners)); err != nil {
		return nil, err
	}

	// Admin/owner and auth-listed principals bypass both the quota engine
	// (dispatched at the command-handling layer before calling
	// access.CanRetrieve/ReserveQuotaAtomic) and the subscription gate
	// below, per SPEC §4.11.
	bypass := func(principalID int64) bool {
		if gatekeeper.IsAdmin(principalID) {
			return true
		}
		for _, id := range cfg.Owners.AuthUsers {
			if id == principalID {
				return true
			}
		}
		return false
	}
	subscribeGate := subscription.New(platformMembershipChecker(client), bypass)

	breakers := ratelimit.NewBreakers(map[string]ratelimit.BreakerConfig{
		"platform_send": {
			Name:             "platform_send",
			MaxRequests:      1,
			FailureThreshold: 5,
		},
	})
	sems := ratelimit.NewSemaphores(map[string]int{
		"platform_send": cfg.Platform.Workers,
	})

	autodeleteSched := autodelete.New(client, logging.WithComponent("autodelete"))
	deliveryEngine := delivery.New(delivery.Config{
		Client:     client,
		Index:      index,
		Access:     accessEngine,
		Breakers:   breakers,
		Semaphores: sems,
		Autodelete: autodeleteSched,
		Caption: delivery.CaptionConfig{
			CustomCaption: cfg.Caption.FileCaptionTemplate,
			BatchCaption:  cfg.Caption.BatchCaptionTemplate,
		},
		AutoDeleteMinutes: int(cfg.Delivery.AutoDeleteAfter.Minutes()),
	})

	broadcastSvc := broadcast.New(client, principalsColl)

	ingestQueue := ingestion.NewQueue(logging.WithComponent("ingestion"))
	ingestWorker := ingestion.NewWorker(ingestQueue, client, index, extractMediaFile, logging.WithComponent("ingestion"))

	deleteQueue := deletion.NewQueue(logging.WithComponent("deletion"))
	bulkDeleter := deletion.NewBulkDeleter(index, cache)
	deleteWorker := deletion.NewWorker(deleteQueue, index, logDeletionSummary, logging.WithComponent("deletion"))

	maintenanceEngine := maintenance.New(principalsColl, settingsColl, index, db, cache, cfg.Quota.PremiumDuration)

	slogger := logging.NewSlogLogger()
	tree, err := supervisor.NewSupervisorTree(slogger, supervisor.DefaultTreeConfig())
	if err != nil {
		return nil, err
	}
	tree.AddIngestionService(ingestWorker)
	tree.AddDeliveryService(deleteWorker)
	tree.AddMaintenanceService(maintenanceEngine)

	return &app{
		db:          db,
		cache:       cache,
		access:      accessEngine,
		index:       index,
		query:       queryEngine,
		delivery:    deliveryEngine,
		broadcast:   broadcastSvc,
		connection:  connEngine,
		filter:      filterEngine,
		botsettings: settingsEngine,
		recommend:   recommender,
		subscribe:   subscribeGate,
		gatekeeper:  gatekeeper,
		ingestQueue: ingestQueue,
		deleteQueue: deleteQueue,
		bulkDeleter: bulkDeleter,
		maintenance: maintenanceEngine,
		tree:        tree,
	}, nil
}

// platformMembershipChecker adapts a platform.Client's GetChatMember into
// a subscription.MembershipChecker.
func platformMembershipChecker(client platform.Client) subscription.MembershipChecker {
	return func(ctx context.Context, chatID, principalID int64) (platform.Member, error) {
		return client.GetChatMember(ctx, chatID, principalID)
	}
}

// extractMediaFile is the ingestion.Extractor used by the ingestion
// worker; concrete document-to-MediaFile field mapping depends on the
// platform.Client implementation that produces platform.Message, so the
// embedding deployment supplies its own extractor alongside its client.
var extractMediaFile ingestion.Extractor = func(platform.Message) (models.MediaFile, bool) {
	return models.MediaFile{}, false
}

// logDeletionSummary logs the outcome of one deletion batch.
func logDeletionSummary(result deletion.BatchResult) {
	logging.Info().
		Int("deleted", result.Deleted).
		Int("not_found", result.NotFound).
		Int("errors", result.Errors).
		Msg("deletion batch processed")
}

// effectiveAdmins returns the deduplicated set of principal IDs that
// should hold the "admin" Casbin role: the configured owner plus every
// configured admin, per bot.py's "owner is always also an admin".
func effectiveAdmins(owners config.OwnersConfig) []int64 {
	seen := make(map[int64]struct{}, len(owners.Admins)+1)
	out := make([]int64, 0, len(owners.Admins)+1)
	add := func(id int64) {
		if id == 0 {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	add(owners.OwnerID)
	for _, id := range owners.Admins {
		add(id)
	}
	return out
}

func (a *app) close(ctx context.Context) {
	if a.gatekeeper != nil {
		a.gatekeeper.Close()
	}
	if a.cache != nil {
		_ = a.cache.Close(ctx)
	}
	if a.db != nil {
		_ = a.db.Close(ctx)
	}
}
