package reranker

import (
	"errors"
	"fmt"
	"math"
)

// Metric selects the token-level similarity used by late-interaction scoring.
type Metric string

const (
	// MetricCosine sums, over query tokens, the maximum cosine similarity
	// against any document token.
	MetricCosine Metric = "cosine"

	// MetricL2 sums, over query tokens, the maximum negative squared
	// Euclidean distance against any document token (least distance,
	// negated so larger is better). Scores are always <= 0.
	MetricL2 Metric = "l2"
)

// ErrInvalidMetric is returned for metrics other than cosine or l2.
var ErrInvalidMetric = errors.New(`similarity metric must be "cosine" or "l2"`)

// Validate checks that the metric is one of the supported values.
func (m Metric) Validate() error {
	switch m {
	case MetricCosine, MetricL2:
		return nil
	default:
		return fmt.Errorf("%w, got %q", ErrInvalidMetric, string(m))
	}
}

// MaxSim computes the late-interaction score between a query and a document,
// both given as per-token embedding matrices. Each query token picks its
// single best-matching document token; the per-token maxima are summed into
// the document score. An empty document scores 0.
func MaxSim(query, doc [][]float32, metric Metric) (float64, error) {
	if err := Metric.Validate(metric); err != nil {
		return 0, err
	}
	if len(query) == 0 || len(doc) == 0 {
		return 0, nil
	}
	dim := len(query[0])
	for _, row := range query {
		if len(row) != dim {
			return 0, fmt.Errorf("query embedding rows have inconsistent dimensions: %d vs %d", len(row), dim)
		}
	}
	for _, row := range doc {
		if len(row) != dim {
			return 0, fmt.Errorf("document embedding dimension %d does not match query dimension %d", len(row), dim)
		}
	}

	switch metric {
	case MetricCosine:
		return maxSimCosine(query, doc), nil
	default:
		return maxSimL2(query, doc), nil
	}
}

// MaxSimBatch scores aligned slices of query and document matrices.
func MaxSimBatch(queries, docs [][][]float32, metric Metric) ([]float64, error) {
	if len(queries) != len(docs) {
		return nil, fmt.Errorf("got %d query matrices but %d document matrices", len(queries), len(docs))
	}
	scores := make([]float64, len(queries))
	for i := range queries {
		s, err := MaxSim(queries[i], docs[i], metric)
		if err != nil {
			return nil, err
		}
		scores[i] = s
	}
	return scores, nil
}

func maxSimCosine(query, doc [][]float32) float64 {
	docNorms := make([]float64, len(doc))
	for j, d := range doc {
		docNorms[j] = vectorNorm(d)
	}

	var total float64
	for _, q := range query {
		qNorm := vectorNorm(q)
		best := math.Inf(-1)
		for j, d := range doc {
			var dot float64
			for k := range q {
				dot += float64(q[k]) * float64(d[k])
			}
			sim := 0.0
			if qNorm > 0 && docNorms[j] > 0 {
				sim = dot / (qNorm * docNorms[j])
			}
			if sim > best {
				best = sim
			}
		}
		total += best
	}
	return total
}

func maxSimL2(query, doc [][]float32) float64 {
	var total float64
	for _, q := range query {
		best := math.Inf(-1)
		for _, d := range doc {
			var dist float64
			for k := range q {
				diff := float64(q[k]) - float64(d[k])
				dist += diff * diff
			}
			if neg := -dist; neg > best {
				best = neg
			}
		}
		total += best
	}
	return total
}

func vectorNorm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
