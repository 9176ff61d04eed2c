package model

import (
	"fmt"
	"math"
)

// Sigmoid maps a logit to a probability. It works in float32 like the model
// output, so logits within about 3e-8 of zero give exactly 0.5.
func Sigmoid(x float32) float32 {
	return 1 / (1 + float32(math.Exp(-float64(x))))
}

// Decide turns the "is dog" logit at index 0 of the model output into a
// labeled prediction. Dog wins only when strictly more probable, so a logit of
// exactly 0 resolves to Cat.
func Decide(logits []float32, labels Labels) (*PredictionResult, error) {
	if len(logits) == 0 {
		return nil, fmt.Errorf("%w: empty output", ErrInference)
	}
	logit := logits[0]
	if math.IsNaN(float64(logit)) {
		return nil, fmt.Errorf("%w: output logit is NaN", ErrInference)
	}

	dog := Sigmoid(logit)
	pDog, pCat := float64(dog), float64(1-dog)

	label, confidence := labels.Cat, pCat
	if pDog > pCat {
		label, confidence = labels.Dog, pDog
	}

	return &PredictionResult{
		Prediction: label,
		Confidence: confidence,
		Probabilities: Probabilities{
			Cat: pCat,
			Dog: pDog,
		},
	}, nil
}
