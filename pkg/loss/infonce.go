// Package loss implements the InfoNCE contrastive objective used to train
// retrieval encoders: one positive is classified against in-batch or
// explicit negatives over temperature-scaled cosine similarities.
package loss

import (
	"errors"
	"fmt"
	"math"
)

// NegativeMode selects how explicit negatives relate to queries.
type NegativeMode string

const (
	// NegativeUnpaired treats the negatives as one shared pool compared
	// against every query.
	NegativeUnpaired NegativeMode = "unpaired"

	// NegativePaired gives each query its own negative set, matched by
	// position.
	NegativePaired NegativeMode = "paired"
)

// ErrInvalidNegativeMode is returned for modes other than unpaired or paired.
var ErrInvalidNegativeMode = errors.New(`negative mode must be "unpaired" or "paired"`)

const defaultTemperature = 0.05

// InfoNCE computes the contrastive objective. The criterion and negative
// mode are fixed at construction; nothing is resolved lazily at compute
// time.
type InfoNCE struct {
	criterion   Criterion
	temperature float64
	mode        NegativeMode
}

// Option configures an InfoNCE instance.
type Option func(*InfoNCE) error

// WithTemperature sets the similarity divisor. Must be strictly positive;
// smaller values sharpen the distribution and harden the gradients.
func WithTemperature(t float64) Option {
	return func(l *InfoNCE) error {
		if t <= 0 {
			return fmt.Errorf("temperature must be positive, got %v", t)
		}
		l.temperature = t
		return nil
	}
}

// WithNegativeMode sets how explicit negatives are interpreted.
func WithNegativeMode(mode NegativeMode) Option {
	return func(l *InfoNCE) error {
		switch mode {
		case NegativeUnpaired, NegativePaired:
			l.mode = mode
			return nil
		default:
			return fmt.Errorf("%w, got %q", ErrInvalidNegativeMode, string(mode))
		}
	}
}

// WithCriterion substitutes the classification loss applied to the logits.
func WithCriterion(c Criterion) Option {
	return func(l *InfoNCE) error {
		if c == nil {
			return fmt.Errorf("criterion must not be nil")
		}
		l.criterion = c
		return nil
	}
}

// New creates an InfoNCE loss. Defaults: label-smoothed (0.05) cross
// entropy, temperature 0.05, unpaired negatives.
func New(opts ...Option) (*InfoNCE, error) {
	l := &InfoNCE{
		criterion:   CrossEntropy(0.05),
		temperature: defaultTemperature,
		mode:        NegativeUnpaired,
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Compute returns the scalar loss for a batch of query and positive
// embeddings, both [N][D].
//
// With no negatives the N x N query-positive similarity matrix is treated
// as a classification problem where row i's correct class is column i
// (in-batch negatives); the criterion is applied in both directions and
// averaged, which prevents directional bias.
//
// With explicit negatives, index 0 of every row holds the matched
// positive's logit and the remaining columns the negative logits; every
// row is labeled class 0. Unpaired mode takes exactly one shared negative
// matrix; paired mode takes one negative matrix per query.
//
// All embeddings are unit-normalized before similarities are taken.
func (l *InfoNCE) Compute(query, positive [][]float32, negatives ...[][]float32) (float64, error) {
	if len(query) == 0 {
		return 0, fmt.Errorf("query embeddings are empty")
	}
	if len(query) != len(positive) {
		return 0, fmt.Errorf("got %d query embeddings but %d positives", len(query), len(positive))
	}

	q, err := normalizeRows(query)
	if err != nil {
		return 0, fmt.Errorf("bad query embeddings: %w", err)
	}
	p, err := normalizeRows(positive)
	if err != nil {
		return 0, fmt.Errorf("bad positive embeddings: %w", err)
	}
	if len(q[0]) != len(p[0]) {
		return 0, fmt.Errorf("query dimension %d does not match positive dimension %d", len(q[0]), len(p[0]))
	}

	if len(negatives) == 0 {
		return l.inBatch(q, p)
	}
	return l.withNegatives(q, p, negatives)
}

func (l *InfoNCE) inBatch(q, p [][]float64) (float64, error) {
	n := len(q)
	logits := make([][]float64, n)
	transposed := make([][]float64, n)
	for i := range transposed {
		transposed[i] = make([]float64, n)
	}
	labels := make([]int, n)
	for i := 0; i < n; i++ {
		row := make([]float64, n)
		for j := 0; j < n; j++ {
			sim := dot(q[i], p[j]) / l.temperature
			row[j] = sim
			transposed[j][i] = sim
		}
		logits[i] = row
		labels[i] = i
	}

	forward, err := l.criterion(logits, labels)
	if err != nil {
		return 0, err
	}
	backward, err := l.criterion(transposed, labels)
	if err != nil {
		return 0, err
	}
	return (forward + backward) / 2, nil
}

func (l *InfoNCE) withNegatives(q, p [][]float64, negatives [][][]float32) (float64, error) {
	n := len(q)
	dim := len(q[0])

	var perQuery [][][]float64
	switch l.mode {
	case NegativeUnpaired:
		if len(negatives) != 1 {
			return 0, fmt.Errorf("unpaired mode takes one shared negative matrix, got %d", len(negatives))
		}
		shared, err := normalizeRows(negatives[0])
		if err != nil {
			return 0, fmt.Errorf("bad negative embeddings: %w", err)
		}
		if len(shared) > 0 && len(shared[0]) != dim {
			return 0, fmt.Errorf("negative dimension %d does not match query dimension %d", len(shared[0]), dim)
		}
		perQuery = make([][][]float64, n)
		for i := range perQuery {
			perQuery[i] = shared
		}

	case NegativePaired:
		if len(negatives) != n {
			return 0, fmt.Errorf("paired mode takes one negative matrix per query: got %d for %d queries", len(negatives), n)
		}
		perQuery = make([][][]float64, n)
		for i, negs := range negatives {
			rows, err := normalizeRows(negs)
			if err != nil {
				return 0, fmt.Errorf("bad negatives for query %d: %w", i, err)
			}
			if len(rows) > 0 && len(rows[0]) != dim {
				return 0, fmt.Errorf("negatives for query %d have dimension %d, want %d", i, len(rows[0]), dim)
			}
			perQuery[i] = rows
		}

	default:
		return 0, fmt.Errorf("%w, got %q", ErrInvalidNegativeMode, string(l.mode))
	}

	logits := make([][]float64, n)
	labels := make([]int, n)
	for i := 0; i < n; i++ {
		row := make([]float64, 0, 1+len(perQuery[i]))
		row = append(row, dot(q[i], p[i])/l.temperature)
		for _, neg := range perQuery[i] {
			row = append(row, dot(q[i], neg)/l.temperature)
		}
		logits[i] = row
		labels[i] = 0
	}
	return l.criterion(logits, labels)
}

// normalizeRows converts to float64 and scales each row to unit length.
// Zero rows are kept as-is.
func normalizeRows(rows [][]float32) ([][]float64, error) {
	if len(rows) == 0 {
		return [][]float64{}, nil
	}
	dim := len(rows[0])
	out := make([][]float64, len(rows))
	for i, row := range rows {
		if len(row) != dim {
			return nil, fmt.Errorf("row %d has dimension %d, want %d", i, len(row), dim)
		}
		converted := make([]float64, len(row))
		var sum float64
		for j, x := range row {
			converted[j] = float64(x)
			sum += float64(x) * float64(x)
		}
		if norm := math.Sqrt(sum); norm > 0 {
			for j := range converted {
				converted[j] /= norm
			}
		}
		out[i] = converted
	}
	return out, nil
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
