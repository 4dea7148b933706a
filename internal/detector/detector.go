// Package detector runs object detection over a pre-trained model loaded
// through OpenCV's DNN module. One Detector owns a pool of loaded networks
// and an immutable label table; after construction nothing is mutated, so a
// single Detector is safe to share across requests.
package detector

import (
	"context"
	"image"

	"github.com/sirupsen/logrus"

	apperrors "go-object-recognizer/internal/errors"
	"go-object-recognizer/internal/logger"
	"go-object-recognizer/pkg/models"
)

// DetectionOptions controls result filtering for a single call.
type DetectionOptions struct {
	// Threshold is the minimum confidence score, inclusive.
	Threshold float64
	// MaxObjects caps the number of returned objects, keeping the
	// highest-scoring ones.
	MaxObjects int
}

// DefaultOptions returns the standard filtering options.
func DefaultOptions() DetectionOptions {
	return DetectionOptions{
		Threshold:  0.5,
		MaxObjects: 10,
	}
}

// ObjectDetector is the inference interface consumed by the service layer.
type ObjectDetector interface {
	Detect(ctx context.Context, img image.Image, opts DetectionOptions) ([]models.RecognizedObject, error)
	Close() error
}

// Config holds the construction-time parameters of a Detector.
type Config struct {
	// ModelPath points at the model weights file. ConfigPath optionally
	// points at the graph description some formats require.
	ModelPath  string
	ConfigPath string
	// Device is "auto", "cpu" or "cuda".
	Device string
	// PoolSize is the number of network instances to load.
	PoolSize int
	// Labels overrides the built-in COCO table when non-nil.
	Labels []string
}

type objectDetector struct {
	pool   *netPool
	labels []string
}

// New loads the model and builds the network pool. This is the one expensive
// startup step; it must complete before the detector serves any request, and
// a failure here means the service cannot become ready.
func New(cfg Config) (ObjectDetector, error) {
	labels := cfg.Labels
	if labels == nil {
		labels = COCOLabels()
	}

	size := cfg.PoolSize
	if size < 1 {
		size = 1
	}

	pool, err := newNetPool(size, cfg.ModelPath, cfg.ConfigPath, cfg.Device)
	if err != nil {
		return nil, apperrors.NewModelLoadError("failed to load detection model", err)
	}

	logger.WithFields(logrus.Fields{
		"model":     cfg.ModelPath,
		"pool_size": size,
		"labels":    len(labels),
	}).Info("Detection model loaded")

	return &objectDetector{
		pool:   pool,
		labels: labels,
	}, nil
}

// Detect runs one forward pass and returns the filtered, ranked objects.
// Every call re-runs inference; there is no caching or deduplication. A
// failed call leaves the detector usable for subsequent calls.
func (d *objectDetector) Detect(ctx context.Context, img image.Image, opts DetectionOptions) ([]models.RecognizedObject, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewInferenceError("request cancelled before inference", err)
	}

	net := d.pool.get()
	defer d.pool.put(net)

	dets, err := net.forward(img)
	if err != nil {
		return nil, apperrors.NewInferenceError("model execution failed", err)
	}

	objects := postprocess(dets, d.labels, opts.Threshold, opts.MaxObjects)

	logger.WithFields(logrus.Fields{
		"raw_detections": len(dets),
		"objects":        len(objects),
		"threshold":      opts.Threshold,
	}).Debug("Detection completed")

	return objects, nil
}

// Close releases every loaded network. The detector must not be used after.
func (d *objectDetector) Close() error {
	d.pool.Close()
	return nil
}
