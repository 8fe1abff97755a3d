package backend

import (
	"context"
	"fmt"

	"nivasa/internal/amqp"
	"nivasa/internal/log"
	"nivasa/internal/sheets"
	gsheet "nivasa/internal/sheets/google"
	sheetsmem "nivasa/internal/sheets/memory"
	"nivasa/internal/storage"
	"nivasa/internal/store"
	"nivasa/internal/store/memory"
)

// Publisher is the event side of the AMQP client.
type Publisher interface {
	PublishEntityChanged(ctx context.Context, msg *amqp.EntityChangedMessage) error
	Close() error
}

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		st  store.Store
		err error
	)
	switch config.Type {
	case SQLiteBackend:
		st, err = f.createSQLiteStore(config)
	case MemoryBackend:
		st = memory.New()
		f.logger.Info("Initialized memory backend")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	exporter, err := f.createExporter(ctx, config)
	if err != nil {
		st.Close()
		return nil, err
	}

	res := &BackendResult{
		Store:     st,
		Publisher: f.createPublisher(config),
		Exporter:  exporter,
	}
	res.Cleanup = func() error {
		var errs []error
		if res.Publisher != nil {
			if err := res.Publisher.Close(); err != nil {
				errs = append(errs, fmt.Errorf("amqp: %w", err))
			}
		}
		if err := st.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
		if len(errs) > 0 {
			return fmt.Errorf("cleanup backend: %v", errs)
		}
		return nil
	}
	return res, nil
}

func (f *DefaultFactory) createSQLiteStore(config Config) (store.Store, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return repo, nil
}

// createPublisher connects to AMQP when configured. A broker that is down
// at startup only disables events.
func (f *DefaultFactory) createPublisher(config Config) Publisher {
	if config.AMQPURL == "" {
		return nil
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without events", log.FieldError, err)
		return nil
	}
	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client
}

// createExporter returns the Google Sheets sink when a spreadsheet is
// configured and an in-memory sink otherwise.
func (f *DefaultFactory) createExporter(ctx context.Context, config Config) (sheets.ExpenseExporter, error) {
	if config.GoogleSpreadsheetID == "" {
		return sheetsmem.New(), nil
	}
	cli, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		SheetName:       config.GoogleSheetName,
		CredentialsJSON: config.GoogleServiceAccountJSON,
		CredentialsFile: config.GoogleServiceAccountFile,
	}, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	f.logger.Info("Initialized Google Sheets export", "sheet", config.GoogleSheetName)
	return cli, nil
}
