package firestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/firestore"
	"github.com/angelmondragon/orderform-backend/pkg/config"
	"github.com/angelmondragon/orderform-backend/pkg/logger"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// EmulatorHostEnv is read by the Firestore SDK to target a local emulator.
const EmulatorHostEnv = "FIRESTORE_EMULATOR_HOST"

const countersCollection = "counters"

var errProjectIDRequired = errors.New("gcp project id is required")

// Client wraps the Firestore SDK client and the collections orders live in.
type Client struct {
	client *firestore.Client
	cfg    config.FirestoreConfig
}

// New opens a Firestore client for the configured project and database.
func New(ctx context.Context, gcp config.GCPConfig, cfg config.FirestoreConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(gcp.ProjectID) == "" {
		return nil, errProjectIDRequired
	}
	if host := strings.TrimSpace(cfg.EmulatorHost); host != "" {
		if err := os.Setenv(EmulatorHostEnv, host); err != nil {
			return nil, fmt.Errorf("setting %s: %w", EmulatorHostEnv, err)
		}
	}

	opts := []option.ClientOption{}
	if creds := strings.TrimSpace(gcp.CredentialsJSON); creds != "" && os.Getenv(EmulatorHostEnv) == "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
	}

	databaseID := strings.TrimSpace(cfg.DatabaseID)
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	fsClient, err := firestore.NewClientWithDatabase(ctx, gcp.ProjectID, databaseID, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"database":   databaseID,
			"collection": cfg.OrdersCollection,
			"emulator":   os.Getenv(EmulatorHostEnv) != "",
		}), "firestore client initialized")
	}

	return &Client{client: fsClient, cfg: cfg}, nil
}

// Raw returns the SDK client for transactions and queries.
func (c *Client) Raw() *firestore.Client {
	return c.client
}

// OrdersCollection returns the configured orders collection name.
func (c *Client) OrdersCollection() string {
	if name := strings.TrimSpace(c.cfg.OrdersCollection); name != "" {
		return name
	}
	return "orders"
}

// CountersCollection returns the collection holding sequence counters.
func (c *Client) CountersCollection() string {
	return countersCollection
}

// Ping reads at most one order document to prove the backend answers.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errors.New("firestore client not initialized")
	}
	iter := c.client.Collection(c.OrdersCollection()).Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return err
	}
	return nil
}

// Close releases the client connections.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
