package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/rs/zerolog"
)

const (
	MetricStatusTransition = "OrderStatusTransition"
	MetricRevenueSettled   = "RevenueMonthSettled"
	MetricSettleRejected   = "RevenueSettleRejected"
)

// Metrics counts domain events.
type Metrics interface {
	Count(ctx context.Context, name string, dimensions map[string]string)
}

// PutMetricDataAPI is the subset of the CloudWatch client used for counters.
type PutMetricDataAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

type cloudWatchMetrics struct {
	client    PutMetricDataAPI
	namespace string
	now       func() time.Time
	logger    zerolog.Logger
}

// NewCloudWatchMetrics emits one PutMetricData call per counted event. Failures are
// logged and never returned to the caller.
func NewCloudWatchMetrics(client PutMetricDataAPI, namespace string, logger zerolog.Logger) Metrics {
	return &cloudWatchMetrics{
		client:    client,
		namespace: namespace,
		now:       time.Now,
		logger:    logger.With().Str("component", "cloudwatch-metrics").Logger(),
	}
}

func (m *cloudWatchMetrics) Count(ctx context.Context, name string, dimensions map[string]string) {
	dims := make([]cwtypes.Dimension, 0, len(dimensions))
	for k, v := range dimensions {
		if v == "" {
			continue
		}
		dims = append(dims, cwtypes.Dimension{Name: aws.String(k), Value: aws.String(v)})
	}

	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []cwtypes.MetricDatum{{
			MetricName: aws.String(name),
			Dimensions: dims,
			Timestamp:  aws.Time(m.now()),
			Unit:       cwtypes.StandardUnitCount,
			Value:      aws.Float64(1),
		}},
	})
	if err != nil {
		m.logger.Warn().Err(fmt.Errorf("failed to put metric %s: %w", name, err)).Msg("metric dropped")
	}
}

type nopMetrics struct{}

// NewNopMetrics returns a Metrics that records nothing.
func NewNopMetrics() Metrics {
	return nopMetrics{}
}

func (nopMetrics) Count(context.Context, string, map[string]string) {}
