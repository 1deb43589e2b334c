package main

import (
	"context"

	gcppubsub "cloud.google.com/go/pubsub/v2"
)

type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(context.Context) (string, error)
}

type orderingResumer interface {
	ResumePublish(orderingKey string)
}

// gcpPublisher adapts *gcppubsub.Publisher to publisher so tests can fake it.
type gcpPublisher struct {
	pub *gcppubsub.Publisher
}

func wrapGCPPublisher(p *gcppubsub.Publisher) publisher {
	if p == nil {
		return nil
	}
	return gcpPublisher{pub: p}
}

func (p gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	return gcpResult{res: p.pub.Publish(ctx, msg)}
}

func (p gcpPublisher) ResumePublish(orderingKey string) {
	p.pub.ResumePublish(orderingKey)
}

type gcpResult struct {
	res *gcppubsub.PublishResult
}

func (r gcpResult) Get(ctx context.Context) (string, error) {
	if r.res == nil {
		return "", errNilPublishResult
	}
	return r.res.Get(ctx)
}
