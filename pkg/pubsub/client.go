// Package pubsub wraps the Pub/Sub v2 client used by the outbox publisher.
package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"go.uber.org/multierr"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

var (
	errProjectIDRequired = errors.New("gcp project id is required")
	errNoTopics          = errors.New("pubsub topic name is required")
	errNotInitialized    = errors.New("pubsub client not initialized")
)

// Client hands out one publisher per topic and checks that every topic the
// storefront emits to exists.
type Client struct {
	client   *pubsub.Client
	project  string
	topics   []string
	ordering bool

	mu    sync.Mutex
	cache map[string]*pubsub.Publisher
}

// NewClient dials Pub/Sub and fails when a configured topic is missing.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	project := strings.TrimSpace(gcp.ProjectID)
	if project == "" {
		return nil, errProjectIDRequired
	}
	topics := topicNames(cfg)
	if len(topics) == 0 {
		return nil, errNoTopics
	}

	var opts []option.ClientOption
	if creds := strings.TrimSpace(gcp.CredentialsJSON); creds != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
	}
	raw, err := pubsub.NewClient(ctx, project, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	c := &Client{
		client:   raw,
		project:  project,
		topics:   topics,
		ordering: cfg.MessageOrdering,
		cache:    make(map[string]*pubsub.Publisher, len(topics)),
	}
	if err := c.checkTopics(ctx); err != nil {
		_ = raw.Close()
		return nil, err
	}

	if logg != nil {
		lctx := logg.WithFields(ctx, map[string]any{
			"project":  project,
			"topics":   topics,
			"ordering": c.ordering,
		})
		logg.Info(lctx, "pubsub client initialized")
	}
	return c, nil
}

// Topics lists the configured topic ids.
func (c *Client) Topics() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.topics))
	copy(out, c.topics)
	return out
}

// Publisher returns the cached publisher for a topic id or full resource name.
// Message ordering is enabled on the handle when the client was configured for it.
func (c *Client) Publisher(name string) *pubsub.Publisher {
	if c == nil || c.client == nil {
		return nil
	}
	resource := topicResourceName(c.project, name)
	if resource == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if pub, ok := c.cache[resource]; ok {
		return pub
	}
	pub := c.client.Publisher(resource)
	pub.EnableMessageOrdering = c.ordering
	c.cache[resource] = pub
	return pub
}

// Ping re-checks every configured topic.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errNotInitialized
	}
	return c.checkTopics(ctx)
}

// Close stops cached publishers, flushing pending messages, then closes the client.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	c.mu.Lock()
	for resource, pub := range c.cache {
		pub.Stop()
		delete(c.cache, resource)
	}
	c.mu.Unlock()
	return c.client.Close()
}

// checkTopics reports every missing topic at once rather than the first.
func (c *Client) checkTopics(ctx context.Context) error {
	var errs error
	for _, name := range c.topics {
		errs = multierr.Append(errs, c.checkTopic(ctx, name))
	}
	return errs
}

func (c *Client) checkTopic(ctx context.Context, name string) error {
	resource := topicResourceName(c.project, name)
	if resource == "" {
		return fmt.Errorf("topic %q not configured", name)
	}
	_, err := c.client.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: resource})
	switch {
	case err == nil:
		return nil
	case status.Code(err) == codes.NotFound:
		return fmt.Errorf("topic %q does not exist", name)
	default:
		return fmt.Errorf("checking topic %q: %w", name, err)
	}
}

func topicNames(cfg config.PubSubConfig) []string {
	var names []string
	seen := map[string]bool{}
	for _, raw := range []string{cfg.OrdersTopic, cfg.WholesaleTopic} {
		name := strings.TrimSpace(raw)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// topicResourceName expands a bare topic id to projects/<p>/topics/<id>.
// Full resource names pass through unchanged.
func topicResourceName(project, name string) string {
	id := strings.TrimSpace(name)
	if id == "" {
		return ""
	}
	if strings.HasPrefix(id, "projects/") && strings.Contains(id, "/topics/") {
		return id
	}
	project = strings.TrimSpace(project)
	if project == "" {
		return ""
	}
	return "projects/" + project + "/topics/" + id
}
