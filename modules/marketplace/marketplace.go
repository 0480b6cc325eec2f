package marketplace

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/do/v2"
	"github.com/tradeforge-xyz/marketplace-engine/common"
	"github.com/tradeforge-xyz/marketplace-engine/common/errs"
	"github.com/tradeforge-xyz/marketplace-engine/core/datasources"
	"github.com/tradeforge-xyz/marketplace-engine/core/indexer"
	"github.com/tradeforge-xyz/marketplace-engine/internal/config"
	"github.com/tradeforge-xyz/marketplace-engine/internal/postgres"
	"github.com/tradeforge-xyz/marketplace-engine/modules/marketplace/adapters"
	"github.com/tradeforge-xyz/marketplace-engine/modules/marketplace/api/httphandler"
	"github.com/tradeforge-xyz/marketplace-engine/modules/marketplace/datagateway"
	memoryrepo "github.com/tradeforge-xyz/marketplace-engine/modules/marketplace/repository/memory"
	postgresrepo "github.com/tradeforge-xyz/marketplace-engine/modules/marketplace/repository/postgres"
	"github.com/tradeforge-xyz/marketplace-engine/modules/marketplace/usecase"
	"github.com/tradeforge-xyz/marketplace-engine/pkg/ledgerclient"
	"github.com/tradeforge-xyz/marketplace-engine/pkg/logger"
	"github.com/tradeforge-xyz/marketplace-engine/pkg/reportingclient"
)

const (
	Version   = "v0.3.0"
	DBVersion = 1
)

func New(injector do.Injector) (indexer.IndexerWorker, error) {
	ctx := do.MustInvoke[context.Context](injector)
	conf := do.MustInvoke[config.Config](injector)
	marketplaceConf := conf.Modules.Marketplace

	ledgerClient := do.MustInvoke[*ledgerclient.Client](injector)
	datasource := datasources.NewLedgerNode(ledgerClient)

	var (
		marketplaceDg datagateway.MarketplaceDataGateway
		cleanupFuncs  []func(context.Context) error
	)
	switch marketplaceConf.Database {
	case "postgres":
		pg, err := postgres.NewPool(ctx, marketplaceConf.Postgres)
		if err != nil {
			return nil, errors.Wrap(err, "can't create postgres connection pool")
		}
		cleanupFuncs = append(cleanupFuncs, func(ctx context.Context) error {
			pg.Close()
			return nil
		})
		marketplaceDg = postgresrepo.NewRepository(pg)
	case "memory":
		marketplaceDg = memoryrepo.NewRepository()
	default:
		return nil, errors.Wrapf(errs.Unsupported, "unsupported database %q", marketplaceConf.Database)
	}

	custodian, err := common.AddressFromString(marketplaceConf.Custodian)
	if err != nil {
		return nil, errors.Wrap(err, "invalid custodian address")
	}
	feeAdmin := common.Address{}
	if marketplaceConf.FeeAdmin != "" {
		feeAdmin, err = common.AddressFromString(marketplaceConf.FeeAdmin)
		if err != nil {
			return nil, errors.Wrap(err, "invalid fee admin address")
		}
	}

	var reportingClient *reportingclient.ReportingClient
	if !conf.Reporting.Disabled {
		reportingClient, err = reportingclient.New(conf.Reporting)
		if err != nil {
			return nil, errors.Wrap(err, "can't create reporting client")
		}
	}

	processor := NewProcessor(
		marketplaceDg,
		adapters.NewLedgerAssetRegistry(ledgerClient),
		adapters.NewLedgerPaymentLedger(ledgerClient),
		adapters.NewLedgerSettlementExecutor(ledgerClient),
		datasource,
		conf.Network,
		custodian,
		feeAdmin,
		marketplaceConf.FirstBlockHeight,
		reportingClient,
		cleanupFuncs,
	)
	if err := processor.VerifyStates(ctx); err != nil {
		return nil, errors.WithStack(err)
	}

	httpServer := do.MustInvoke[*fiber.App](injector)
	marketplaceHandler := httphandler.New(conf.Network, usecase.New(marketplaceDg))
	if err := marketplaceHandler.Mount(httpServer); err != nil {
		return nil, errors.Wrap(err, "can't mount marketplace API")
	}
	logger.InfoContext(ctx, "Mounted marketplace HTTP handler")

	worker := indexer.New(processor, datasource)
	logger.InfoContext(ctx, "Marketplace module started")
	return worker, nil
}
