//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"github.com/Sirvic1321/microfinance-chatbot/internal/bootstrap"
	"github.com/Sirvic1321/microfinance-chatbot/internal/domain/matcher"
	"github.com/Sirvic1321/microfinance-chatbot/internal/infra/config"
	httpiface "github.com/Sirvic1321/microfinance-chatbot/internal/interface/http"
	"github.com/Sirvic1321/microfinance-chatbot/pkg/logger"
)

func initializeApp(ctx context.Context) (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideCorpusSource,
		provideEncoder,
		provideRecorder,
		provideTrendStore,
		provideEngine,
		provideThresholds,
		provideDefaultTopN,
		wire.Bind(new(matcher.Service), new(*matcher.Engine)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
