package detector

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

const (
	// BackgroundLabel marks class index 0 and is never surfaced.
	BackgroundLabel = "__background__"
	// PlaceholderLabel marks reserved class indices and is never surfaced.
	PlaceholderLabel = "N/A"
)

// cocoLabels is the 91-entry COCO label table used by the default detection
// model. Index 0 is the background class and several indices are reserved
// placeholders.
var cocoLabels = []string{
	BackgroundLabel, "person", "bicycle", "car", "motorcycle", "airplane", "bus",
	"train", "truck", "boat", "traffic light", "fire hydrant", "N/A", "stop sign",
	"parking meter", "bench", "bird", "cat", "dog", "horse", "sheep", "cow",
	"elephant", "bear", "zebra", "giraffe", "N/A", "backpack", "umbrella", "N/A", "N/A",
	"handbag", "tie", "suitcase", "frisbee", "skis", "snowboard", "sports ball",
	"kite", "baseball bat", "baseball glove", "skateboard", "surfboard", "tennis racket",
	"bottle", "N/A", "wine glass", "cup", "fork", "knife", "spoon", "bowl",
	"banana", "apple", "sandwich", "orange", "broccoli", "carrot", "hot dog", "pizza",
	"donut", "cake", "chair", "couch", "potted plant", "bed", "N/A", "dining table",
	"N/A", "N/A", "toilet", "N/A", "tv", "laptop", "mouse", "remote", "keyboard", "cell phone",
	"microwave", "oven", "toaster", "sink", "refrigerator", "N/A", "book",
	"clock", "vase", "scissors", "teddy bear", "hair drier", "toothbrush",
}

// COCOLabels returns a copy of the built-in COCO label table.
func COCOLabels() []string {
	labels := make([]string, len(cocoLabels))
	copy(labels, cocoLabels)
	return labels
}

// LoadLabels reads a label table from the given text file, one label per line.
// Line order defines the class index.
func LoadLabels(file string) ([]string, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)

	var labels []string
	for scanner.Scan() {
		labels = append(labels, strings.TrimSpace(scanner.Text()))
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	return labels, nil
}
