package service

import (
	"context"
	"strings"

	"go-object-recognizer/internal/detector"
	apperrors "go-object-recognizer/internal/errors"
	"go-object-recognizer/internal/imaging"
	"go-object-recognizer/pkg/models"
)

// RecognitionService orchestrates one recognition request: decode the image
// payload, run detection, shape the response.
type RecognitionService interface {
	Recognize(ctx context.Context, imageData string, opts detector.DetectionOptions) (*models.RecognitionResponse, error)
}

type recognitionService struct {
	detector detector.ObjectDetector
}

// NewRecognitionService creates a recognition service backed by the given detector.
func NewRecognitionService(d detector.ObjectDetector) RecognitionService {
	return &recognitionService{
		detector: d,
	}
}

// Recognize validates and decodes the base64 image payload, then runs a
// single inference pass. Errors keep their taxonomy type so the transport
// layer can map them to status codes. An image with no detections is a
// success with an empty object list, not an error.
func (s *recognitionService) Recognize(ctx context.Context, imageData string, opts detector.DetectionOptions) (*models.RecognitionResponse, error) {
	if strings.TrimSpace(imageData) == "" {
		return nil, apperrors.NewValidationError("No image data provided", nil)
	}

	img, err := imaging.DecodeBase64(imageData)
	if err != nil {
		return nil, err
	}

	objects, err := s.detector.Detect(ctx, img, opts)
	if err != nil {
		return nil, err
	}
	if objects == nil {
		objects = []models.RecognizedObject{}
	}

	return &models.RecognitionResponse{Objects: objects}, nil
}
