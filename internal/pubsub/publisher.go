// Package pubsub hands uploaded lesson media to the external processing
// pipeline. The pipeline consumes one topic; each message is a MediaJob.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"
)

// MediaJob describes one uploaded object for the media pipeline: which lesson
// it belongs to, where it landed in storage, and the lesson type so the
// pipeline picks the right transcode/conversion step.
type MediaJob struct {
	LessonID    int64  `json:"lesson_id"`
	StoragePath string `json:"storage_path"`
	ContentType string `json:"content_type"`
}

// Publisher queues media jobs for processing.
type Publisher interface {
	PublishMediaJob(ctx context.Context, job MediaJob) (string, error)
}

// MediaJobPublisher publishes jobs to a Google Pub/Sub topic.
type MediaJobPublisher struct {
	client *pubsub.Client
	topic  string
}

// NewPublisher creates a MediaJobPublisher bound to one project and topic.
func NewPublisher(ctx context.Context, projectID, topic string) (*MediaJobPublisher, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create Pub/Sub client: %w", err)
	}
	return &MediaJobPublisher{client: client, topic: topic}, nil
}

// PublishMediaJob sends the job to the pipeline topic and returns the message ID.
func (p *MediaJobPublisher) PublishMediaJob(ctx context.Context, job MediaJob) (string, error) {
	data, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("encode media job: %w", err)
	}
	result := p.client.Topic(p.topic).Publish(ctx, &pubsub.Message{Data: data})
	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish media job for lesson %d: %w", job.LessonID, err)
	}
	return id, nil
}
