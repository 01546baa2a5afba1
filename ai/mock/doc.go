// Package mock provides test double implementations of AI service interfaces.
//
// The mocks let engine, gateway and HTTP tests run without a model server.
// Default behavior is deterministic:
//
//   - MockEmbedder: bag-of-words vectors, so texts that share words are similar
//   - MockConceptExtractor: one "keyword" concept per distinct non-stop word
//   - MockGenerator: echoes the prompt it receives
//
// Each mock exposes a Func field for custom behavior and a CallCount method.
//
//	provider := mock.NewMockProvider()
//	provider.GetMockGenerator().GenerateFunc = func(ctx context.Context, system, prompt string) (string, error) {
//	    return "INFO:loaded\nIIUC was founded...", nil
//	}
package mock
