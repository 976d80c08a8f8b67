package service

import (
	"context"
	"fmt"

	"github.com/okian/clientes/internal/adapters/repository"
	"github.com/okian/clientes/internal/adapters/repository/dynamostore"
	"github.com/okian/clientes/internal/adapters/repository/mongostore"
	"github.com/okian/clientes/internal/adapters/repository/redisstore"
	"github.com/okian/clientes/internal/adapters/source"
	"github.com/okian/clientes/internal/config"
	"github.com/okian/clientes/pkg/logger"
)

// Build creates a Service from configuration, connecting the selected store
// backend and the import source.
func Build(ctx context.Context, cfg *config.Config, log logger.Logger, extra ...Option) (*Service, error) {
	store, closer, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	opts := []Option{
		WithLogger(log),
		WithStore(repository.Instrument(store, cfg.StoreBackend)),
		WithSource(source.New(cfg.ImportEndpoint, source.WithTimeout(cfg.ImportTimeout))),
		WithMaxScanPages(cfg.ListMaxPages),
		WithCloser(closer),
	}
	return New(append(opts, extra...)...), nil
}

func openStore(ctx context.Context, cfg *config.Config, log logger.Logger) (repository.Store, func(context.Context) error, error) {
	switch cfg.StoreBackend {
	case config.BackendDynamoDB:
		client, err := dynamostore.NewClient(ctx, cfg.AWSRegion, cfg.DynamoDBEndpoint)
		if err != nil {
			return nil, nil, err
		}
		if cfg.DynamoDBEndpoint != "" {
			if err := dynamostore.EnsureTable(ctx, client, cfg.TableName); err != nil {
				return nil, nil, err
			}
		}
		log.Info(ctx, "using dynamodb store",
			logger.String("table", cfg.TableName),
			logger.String("region", cfg.AWSRegion),
			logger.String("endpoint", cfg.DynamoDBEndpoint),
		)
		return dynamostore.New(client, cfg.TableName, dynamostore.WithPageSize(cfg.ScanPageSize)), nil, nil

	case config.BackendRedis:
		client, err := redisstore.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		log.Info(ctx, "using redis store", logger.String("addr", cfg.RedisAddr), logger.String("prefix", cfg.TableName))
		closer := func(context.Context) error { return client.Close() }
		return redisstore.New(client, cfg.TableName, redisstore.WithScanCount(cfg.ScanPageSize)), closer, nil

	case config.BackendMongo:
		client, err := mongostore.NewClient(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		log.Info(ctx, "using mongo store",
			logger.String("database", cfg.MongoDatabase),
			logger.String("collection", cfg.TableName),
		)
		coll := client.Database(cfg.MongoDatabase).Collection(cfg.TableName)
		return mongostore.New(coll, mongostore.WithPageSize(cfg.ScanPageSize)), client.Disconnect, nil

	case config.BackendMemory:
		log.Info(ctx, "using in-memory store")
		return repository.NewMemoryStore(repository.WithPageSize(cfg.ScanPageSize)), nil, nil
	}
	return nil, nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.StoreBackend)
}
