package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/VML-Technologies/VML.Perito-sub005/internal/app/api/server"
	"github.com/VML-Technologies/VML.Perito-sub005/internal/app/service/apitoken"
	"github.com/VML-Technologies/VML.Perito-sub005/internal/app/service/ratelimit"
	"github.com/VML-Technologies/VML.Perito-sub005/internal/app/service/statechange"
	"github.com/VML-Technologies/VML.Perito-sub005/internal/app/service/statistics"
	webhookhandler "github.com/VML-Technologies/VML.Perito-sub005/internal/app/service/webhook_handler"
	webhooklog "github.com/VML-Technologies/VML.Perito-sub005/internal/app/service/webhook_log"
	"github.com/VML-Technologies/VML.Perito-sub005/internal/platform/db"
	"github.com/VML-Technologies/VML.Perito-sub005/pkg/config"
	"github.com/VML-Technologies/VML.Perito-sub005/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	server.Module,
	ratelimit.Module,
	apitoken.Module,
	statechange.Module,
	statistics.Module,
	webhooklog.Module,
	webhookhandler.Module,
)
