package pubsub

import (
	"context"
	"testing"

	"github.com/angelmondragon/storefront-backend/pkg/config"
)

func TestTopicResourceName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		project string
		name    string
		want    string
	}{
		{"shop-prod", "storefront-order-events", "projects/shop-prod/topics/storefront-order-events"},
		{"shop-prod", " projects/other/topics/x ", "projects/other/topics/x"},
		{"shop-prod", "", ""},
		{"", "orders", ""},
	}
	for _, tc := range cases {
		if got := topicResourceName(tc.project, tc.name); got != tc.want {
			t.Fatalf("topicResourceName(%q, %q) = %q, want %q", tc.project, tc.name, got, tc.want)
		}
	}
}

func TestTopicNamesSkipsBlank(t *testing.T) {
	t.Parallel()

	names := topicNames(config.PubSubConfig{OrdersTopic: "orders", WholesaleTopic: "  "})
	if len(names) != 1 || names[0] != "orders" {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestTopicNamesDeduplicates(t *testing.T) {
	t.Parallel()

	names := topicNames(config.PubSubConfig{OrdersTopic: "events", WholesaleTopic: " events "})
	if len(names) != 1 || names[0] != "events" {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestNewClientValidatesConfig(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(context.Background(), config.GCPConfig{}, config.PubSubConfig{OrdersTopic: "orders"}, nil); err != errProjectIDRequired {
		t.Fatalf("expected errProjectIDRequired, got %v", err)
	}
	if _, err := NewClient(context.Background(), config.GCPConfig{ProjectID: "shop"}, config.PubSubConfig{}, nil); err != errNoTopics {
		t.Fatalf("expected errNoTopics, got %v", err)
	}
}

func TestNilClientIsSafe(t *testing.T) {
	t.Parallel()

	var c *Client
	if c.Publisher("orders") != nil {
		t.Fatalf("expected nil publisher")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := c.Ping(context.Background()); err != errNotInitialized {
		t.Fatalf("expected errNotInitialized, got %v", err)
	}
	if c.Topics() != nil {
		t.Fatalf("expected no topics")
	}
}
