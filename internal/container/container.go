package container

import (
	"context"
	"fmt"
	"net/http"

	"go-object-recognizer/internal/config"
	"go-object-recognizer/internal/detector"
	"go-object-recognizer/internal/service"
	"go-object-recognizer/internal/storage"
	"go-object-recognizer/internal/transport"
)

// Container holds all application dependencies. Construction performs the
// one-time model load, so a returned Container is ready to serve.
type Container struct {
	config   *config.Config
	detector detector.ObjectDetector
	service  service.RecognitionService
	handler  http.Handler
}

// NewContainer creates a new dependency injection container.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	modelPath, configPath, err := resolveWeights(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve model weights: %w", err)
	}

	labels, err := resolveLabels(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load labels: %w", err)
	}

	// Build dependency graph
	det, err := detector.New(detector.Config{
		ModelPath:  modelPath,
		ConfigPath: configPath,
		Device:     cfg.Device,
		PoolSize:   cfg.PoolSize,
		Labels:     labels,
	})
	if err != nil {
		return nil, err
	}

	recognitionService := service.NewRecognitionService(det)
	handler := transport.NewHandler(recognitionService, cfg)

	return &Container{
		config:   cfg,
		detector: det,
		service:  recognitionService,
		handler:  handler,
	}, nil
}

// resolveWeights returns local paths for the model files, downloading them
// into the cache dir when only URLs are configured.
func resolveWeights(ctx context.Context, cfg *config.Config) (modelPath, configPath string, err error) {
	modelPath = cfg.ModelPath
	configPath = cfg.ModelConfigPath

	if modelPath != "" {
		return modelPath, configPath, nil
	}

	var source storage.WeightsSource
	if cfg.UseAzureWeights() {
		source, err = storage.NewAzureWeightsSource(cfg.AzureStorageAccount, cfg.AzureStorageKey)
		if err != nil {
			return "", "", err
		}
	} else {
		source = storage.NewHTTPWeightsSource()
	}

	modelPath, err = storage.EnsureLocal(ctx, source, cfg.ModelURL, cfg.ModelCacheDir)
	if err != nil {
		return "", "", err
	}

	if configPath == "" && cfg.ModelConfigURL != "" {
		configPath, err = storage.EnsureLocal(ctx, source, cfg.ModelConfigURL, cfg.ModelCacheDir)
		if err != nil {
			return "", "", err
		}
	}

	return modelPath, configPath, nil
}

// resolveLabels loads the label table override, or nil for the built-in one.
func resolveLabels(cfg *config.Config) ([]string, error) {
	if cfg.LabelsPath == "" {
		return nil, nil
	}
	return detector.LoadLabels(cfg.LabelsPath)
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Close releases the loaded model.
func (c *Container) Close() error {
	return c.detector.Close()
}
