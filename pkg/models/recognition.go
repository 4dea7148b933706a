package models

// RecognizedObject is a single detected object surfaced to the caller.
type RecognizedObject struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// RecognitionResponse is the success payload of the recognize endpoint.
// Objects is never nil so an empty result serializes as [] rather than null.
type RecognitionResponse struct {
	Objects []RecognizedObject `json:"objects"`
}

// RecognitionRequest is the inbound payload of the recognize endpoint.
// Image is either raw base64 or a data URL (data:image/<fmt>;base64,<data>).
// Threshold and MaxObjects are optional overrides of the configured defaults.
type RecognitionRequest struct {
	Image      string   `json:"image"`
	Threshold  *float64 `json:"threshold,omitempty"`
	MaxObjects *int     `json:"max_objects,omitempty"`
}
