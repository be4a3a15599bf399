// Package embedder provides text embedding clients for vector representations.
//
// This package defines the Client interface and provides implementations
// backed by the OpenAI embeddings API and by go-embedeverything for fully
// local embedding, plus a badger-backed caching decorator that avoids
// re-embedding previously seen texts.
//
// # Usage
//
//	// Create an OpenAI embedder
//	client, err := embedder.NewOpenAIClient(apiKey, embedder.Config{
//	    Model: "text-embedding-3-small",
//	})
//
//	// Embed text
//	embeddings, err := client.Embed(ctx, []string{"hello world"})
//
// # Batch Processing
//
// The Client interface supports batch embedding for efficiency:
//   - Embed(): Embed multiple texts in a single request
//   - EmbedSingle(): Convenience method for single text
package embedder
