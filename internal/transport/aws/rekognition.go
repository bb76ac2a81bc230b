package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/kailas-cloud/photodex/internal/domain"
	"github.com/kailas-cloud/photodex/internal/domain/label"
)

// DetectLabelsAPI is the subset of the Rekognition client used here.
type DetectLabelsAPI interface {
	DetectLabels(
		ctx context.Context, in *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options),
	) (*rekognition.DetectLabelsOutput, error)
}

// Detector returns visual labels for images stored in S3.
type Detector struct {
	client        DetectLabelsAPI
	maxLabels     int32
	minConfidence float32
}

// NewDetector creates a detector. maxLabels <= 0 uses label.MaxDetected.
func NewDetector(client DetectLabelsAPI, maxLabels int, minConfidence float32) *Detector {
	if maxLabels <= 0 {
		maxLabels = label.MaxDetected
	}
	return &Detector{client: client, maxLabels: int32(maxLabels), minConfidence: minConfidence} //nolint:gosec // bounded by config
}

// DetectLabels returns labels in detection order.
func (d *Detector) DetectLabels(ctx context.Context, bucket, key string) ([]label.Detected, error) {
	in := &rekognition.DetectLabelsInput{
		Image: &types.Image{
			S3Object: &types.S3Object{Bucket: aws.String(bucket), Name: aws.String(key)},
		},
		MaxLabels: aws.Int32(d.maxLabels),
	}
	if d.minConfidence > 0 {
		in.MinConfidence = aws.Float32(d.minConfidence)
	}

	out, err := d.client.DetectLabels(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("detect labels %s/%s: %w: %w", bucket, key, domain.ErrDetectionFailed, err)
	}

	detected := make([]label.Detected, 0, len(out.Labels))
	for _, l := range out.Labels {
		detected = append(detected, label.Detected{
			Name:       aws.ToString(l.Name),
			Confidence: aws.ToFloat32(l.Confidence),
		})
	}
	return detected, nil
}
