// Package retrievals provides neural text retrieval building blocks for Go:
// document reranking with cross-encoders and ColBERT-style late interaction,
// chunked scoring of long documents, and the InfoNCE contrastive objective
// used to train retrieval encoders.
//
// # Basic Usage
//
// Create a reranker client with the required collaborators:
//
//	// Tokenizer and inference backend
//	tok := tokenizer.NewWhitespace()
//	enc := encoder.NewInferenceClient("http://localhost:8501", "BAAI/bge-reranker-base")
//
//	// Create a cross-encoder reranker
//	client, err := reranker.NewClient(reranker.ClientConfig{
//		Provider:   reranker.ProviderCrossEncoder,
//		Config:     reranker.DefaultConfig(reranker.ProviderCrossEncoder),
//		Tokenizer:  tok,
//		Classifier: enc,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
// # Reranking
//
// Rerank returns documents in descending relevance order. Documents longer
// than the model's window are split into overlapping chunks and a document
// scores as its best chunk:
//
//	result, err := client.Rerank(ctx, "what is deep learning", docs, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	for i, doc := range result.Documents {
//		fmt.Printf("%d. %.4f %s\n", i+1, result.Scores[i], doc)
//	}
//
// # Scoring Pairs
//
// ComputeScore scores explicit query-document pairs without ranking:
//
//	scores, err := client.ComputeScore(ctx, []reranker.Pair{
//		{Query: "what is deep learning", Document: "Deep learning is ..."},
//	}, nil)
//
// # Providers
//
// Four reranking strategies are available:
//
//   - cross-encoder: scores merged query+document sequences through a
//     classification head
//   - colbert: MaxSim late interaction over per-token embeddings
//   - embedding: bi-encoder cosine similarity
//   - mock: lexical overlap, for tests
//
// # Training Loss
//
// The loss package implements InfoNCE with in-batch, unpaired, and paired
// negatives:
//
//	criterion, err := loss.New(loss.WithTemperature(0.05))
//	value, err := criterion.Compute(queryEmbeddings, positiveEmbeddings)
//
// # Architecture
//
// The library follows a modular architecture:
//
//   - pkg/tokenizer: token encodings, padding, batching
//   - pkg/splitter: overlapping chunk windows for long documents
//   - pkg/reranker: reranking clients and MaxSim scoring
//   - pkg/encoder: inference backend client interfaces
//   - pkg/embedder: embedding model client interfaces
//   - pkg/loss: contrastive training objectives
//
// This design allows easy extension with additional inference backends,
// tokenizers, and scoring strategies.
package retrievals
