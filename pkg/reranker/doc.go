/*
Package reranker scores and reorders candidate documents for a query.

Two encoder-backed strategies are provided behind one Client interface,
selected by provider key at construction:

  - cross-encoder: every query+document chunk is scored jointly through a
    sequence-classification head (one pooled logit per chunk).
  - colbert: query and document are encoded separately into per-token
    matrices and scored with MaxSim late interaction, under a cosine or
    negative-L2 metric.

Documents longer than the encoder budget are split into overlapping token
windows (see pkg/splitter); per-window scores are merged back into one
score per document by taking the maximum.

Usage:

	client, err := reranker.NewClient(reranker.ClientConfig{
		Provider:   reranker.ProviderColBERT,
		Config:     reranker.DefaultConfig(reranker.ProviderColBERT),
		Tokenizer:  tok,
		TokenEncoder: enc,
		Metric:     reranker.MetricCosine,
	})

	result, err := client.Rerank(ctx, "what is late interaction?", documents, nil)

An embedding-similarity provider (bi-encoder cosine over pkg/embedder) and
a deterministic mock provider are included for fallback and testing.
*/
package reranker
