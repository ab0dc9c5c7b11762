package ports

// Model is the contract for the pre-trained binary classifier consumed by the
// detection engine.
//
// Implementations load a model artifact once at startup and must be safe for
// concurrent reads; the engine never mutates or reloads the model.
type Model interface {
	// PredictProba returns the probability of the positive (phishing) class
	// for a feature vector given in the canonical feature order.
	PredictProba(features []float64) (float64, error)
}
