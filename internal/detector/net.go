package detector

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"go-object-recognizer/internal/logger"
)

// detectionRowSize is the number of values per detection row in the model
// output: [batchId, classId, score, left, top, right, bottom].
const detectionRowSize = 7

// inferenceNet wraps a single loaded DNN. A forward pass mutates internal
// buffers, so one inferenceNet must never run two passes concurrently; the
// pool enforces that.
type inferenceNet struct {
	net gocv.Net
}

// loadNet reads the model weights (and optional graph config) from disk and
// applies the compute device selection.
func loadNet(modelPath, configPath, device string) (*inferenceNet, error) {
	net := gocv.ReadNet(modelPath, configPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load network from %s", modelPath)
	}

	if err := applyDevice(&net, device); err != nil {
		net.Close()
		return nil, err
	}

	return &inferenceNet{net: net}, nil
}

// applyDevice selects the compute backend and target. "auto" prefers CUDA and
// falls back to CPU when the build has no CUDA support.
func applyDevice(net *gocv.Net, device string) error {
	switch device {
	case "cuda", "auto":
		errBackend := net.SetPreferableBackend(gocv.NetBackendCUDA)
		errTarget := net.SetPreferableTarget(gocv.NetTargetCUDA)
		if errBackend == nil && errTarget == nil {
			logger.WithField("device", "cuda").Info("Compute device selected")
			return nil
		}
		if device == "cuda" {
			return fmt.Errorf("CUDA backend unavailable (backend: %v, target: %v)", errBackend, errTarget)
		}
		logger.Warn("CUDA backend unavailable, falling back to CPU")
		fallthrough
	case "cpu":
		if err := net.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
			return fmt.Errorf("failed to set CPU backend: %w", err)
		}
		if err := net.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
			return fmt.Errorf("failed to set CPU target: %w", err)
		}
		logger.WithField("device", "cpu").Info("Compute device selected")
		return nil
	default:
		return fmt.Errorf("unknown device %q", device)
	}
}

// forward converts the image to the model's input tensor, runs one pass and
// parses the raw detection rows. Box coordinates come back normalized and are
// scaled to pixel space here.
func (n *inferenceNet) forward(img image.Image) ([]rawDetection, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("tensor conversion failed: %w", err)
	}
	defer mat.Close()

	if mat.Empty() {
		return nil, fmt.Errorf("converted image is empty")
	}

	width := mat.Cols()
	height := mat.Rows()

	// The model accepts variable-size input, so the blob keeps the original
	// dimensions: scale 1.0, no mean subtraction, no crop.
	blob := gocv.BlobFromImage(mat, 1.0, image.Pt(width, height), gocv.NewScalar(0, 0, 0, 0), false, false)
	defer blob.Close()

	n.net.SetInput(blob, "")

	output := n.net.Forward("")
	defer output.Close()

	if output.Empty() {
		return []rawDetection{}, nil
	}
	if output.Total()%detectionRowSize != 0 {
		return nil, fmt.Errorf("unexpected output shape: %d values", output.Total())
	}

	rows := output.Total() / detectionRowSize
	reshaped := output.Reshape(1, rows)
	defer reshaped.Close()

	dets := make([]rawDetection, 0, rows)
	for i := 0; i < rows; i++ {
		classID := int(reshaped.GetFloatAt(i, 1))
		score := float64(reshaped.GetFloatAt(i, 2))
		left := int(reshaped.GetFloatAt(i, 3) * float32(width))
		top := int(reshaped.GetFloatAt(i, 4) * float32(height))
		right := int(reshaped.GetFloatAt(i, 5) * float32(width))
		bottom := int(reshaped.GetFloatAt(i, 6) * float32(height))

		dets = append(dets, rawDetection{
			ClassID: classID,
			Score:   score,
			Box:     image.Rect(left, top, right, bottom),
		})
	}

	return dets, nil
}

// Close releases the underlying network.
func (n *inferenceNet) Close() error {
	return n.net.Close()
}
