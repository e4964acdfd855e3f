package server

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"userhub/internal/config"
	"userhub/internal/logger"
	"userhub/pkg/timer"
)

func TestNewServerClosesClientsOnInitFailure(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	require.NoError(t, rdb.Ping(ctx).Err())

	// Connect is lazy; nothing listens on this port.
	mc, err := mongo.Connect(ctx, options.Client().
		ApplyURI("mongodb://127.0.0.1:1").
		SetServerSelectionTimeout(100*time.Millisecond))
	require.NoError(t, err)

	cfg := config.New()
	cfg.Channels.Created = ""
	core, _ := observer.New(zapcore.DebugLevel)
	log := logger.NewWithCore(core)

	s, err := newServer(cfg, log, mc, rdb, timer.NewStopwatch(log))
	require.Error(t, err)
	assert.Nil(t, s)
	assert.Contains(t, err.Error(), "failed to init services")

	assert.ErrorIs(t, rdb.Ping(ctx).Err(), goredis.ErrClosed)
	assert.ErrorIs(t, mc.Disconnect(ctx), mongo.ErrClientDisconnected)
}
