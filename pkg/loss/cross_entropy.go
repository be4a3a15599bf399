package loss

import (
	"fmt"
	"math"
)

// Criterion maps a logit matrix and integer class labels to a scalar loss.
// Rows may have different widths (paired negatives can differ per query).
type Criterion func(logits [][]float64, labels []int) (float64, error)

// CrossEntropy returns a softmax cross-entropy criterion with the given
// label smoothing (0 disables smoothing). The loss is averaged over rows.
func CrossEntropy(labelSmoothing float64) Criterion {
	return func(logits [][]float64, labels []int) (float64, error) {
		if len(logits) == 0 {
			return 0, fmt.Errorf("cross entropy needs at least one row of logits")
		}
		if len(labels) != len(logits) {
			return 0, fmt.Errorf("got %d labels for %d rows of logits", len(labels), len(logits))
		}

		var total float64
		for i, row := range logits {
			if len(row) == 0 {
				return 0, fmt.Errorf("row %d of logits is empty", i)
			}
			label := labels[i]
			if label < 0 || label >= len(row) {
				return 0, fmt.Errorf("label %d out of range for row %d with %d classes", label, i, len(row))
			}

			logProbs := logSoftmax(row)
			nll := -logProbs[label]
			if labelSmoothing > 0 {
				var sum float64
				for _, lp := range logProbs {
					sum += -lp
				}
				smooth := sum / float64(len(row))
				nll = (1-labelSmoothing)*nll + labelSmoothing*smooth
			}
			total += nll
		}
		return total / float64(len(logits)), nil
	}
}

// logSoftmax computes log(softmax(row)) with max subtraction for stability.
func logSoftmax(row []float64) []float64 {
	maxVal := row[0]
	for _, x := range row[1:] {
		if x > maxVal {
			maxVal = x
		}
	}
	var sum float64
	for _, x := range row {
		sum += math.Exp(x - maxVal)
	}
	logSum := maxVal + math.Log(sum)

	out := make([]float64, len(row))
	for i, x := range row {
		out[i] = x - logSum
	}
	return out
}
