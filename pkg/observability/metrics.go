package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// Metrics publishes application metrics to CloudWatch
type Metrics struct {
	namespace string
	client    *cloudwatch.Client
	logger    *zap.Logger
}

// NewMetrics creates a new metrics instance. A nil client disables publishing,
// which is the development default.
func NewMetrics(namespace string, client *cloudwatch.Client, logger *zap.Logger) *Metrics {
	return &Metrics{
		namespace: namespace,
		client:    client,
		logger:    logger,
	}
}

// RecordMessageSent records a sent chat message
func (m *Metrics) RecordMessageSent(ctx context.Context, err error) {
	m.putCount(ctx, "MessagesSent", statusDimension(err))
}

// RecordConnectionRequest records a team connection request attempt
func (m *Metrics) RecordConnectionRequest(ctx context.Context, outcome string) {
	m.putCount(ctx, "ConnectionRequests", types.Dimension{
		Name:  aws.String("Outcome"),
		Value: aws.String(outcome),
	})
}

// RecordSubscription records subscription lifecycle changes; delta is +1 on
// subscribe and -1 on unsubscribe.
func (m *Metrics) RecordSubscription(ctx context.Context, stream string, delta float64) {
	if m.client == nil {
		return
	}

	m.put(ctx, types.MetricDatum{
		MetricName: aws.String("SubscriptionChurn"),
		Dimensions: []types.Dimension{
			{
				Name:  aws.String("Stream"),
				Value: aws.String(stream),
			},
		},
		Value:     aws.Float64(delta),
		Unit:      types.StandardUnitCount,
		Timestamp: aws.Time(time.Now()),
	})
}

func (m *Metrics) putCount(ctx context.Context, name string, dims ...types.Dimension) {
	if m.client == nil {
		return
	}

	m.put(ctx, types.MetricDatum{
		MetricName: aws.String(name),
		Dimensions: dims,
		Value:      aws.Float64(1),
		Unit:       types.StandardUnitCount,
		Timestamp:  aws.Time(time.Now()),
	})
}

func (m *Metrics) put(ctx context.Context, datum types.MetricDatum) {
	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: []types.MetricDatum{datum},
	})
	if err != nil && m.logger != nil {
		// Metrics are best effort; never fail the caller
		m.logger.Warn("Failed to publish metric",
			zap.String("metric", aws.ToString(datum.MetricName)),
			zap.Error(err),
		)
	}
}

func statusDimension(err error) types.Dimension {
	status := "success"
	if err != nil {
		status = "failure"
	}
	return types.Dimension{
		Name:  aws.String("Status"),
		Value: aws.String(status),
	}
}
