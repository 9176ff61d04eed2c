package model

// ImageSize is the spatial size the model expects, in pixels.
type ImageSize struct {
	Height int
	Width  int
}

// Tensor is a dense float32 input batch in NHWC layout.
type Tensor struct {
	Shape []int64
	Data  []float32
}

// Labels are the strings reported for each class.
type Labels struct {
	Cat string
	Dog string
}

var DefaultLabels = Labels{Cat: "Cat", Dog: "Dog"}

type Probabilities struct {
	Cat float64 `json:"cat"`
	Dog float64 `json:"dog"`
}

type PredictionResult struct {
	Prediction    string        `json:"prediction"`
	Confidence    float64       `json:"confidence"`
	Probabilities Probabilities `json:"probabilities"`
}
