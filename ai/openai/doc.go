// Package openai provides AI service implementations using OpenAI-compatible APIs.
//
// The services are built on langchaingo's openai client and talk to any
// OpenAI-compatible server. The defaults target a local Ollama instance
// serving qwen2.5:7b and nomic-embed-text.
//
// # Usage
//
//	config := ai.NewConfig(ai.WithHost("http://localhost:11434")) // /v1 added automatically
//
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vec, err := provider.Embedder().EmbedText(ctx, "sample text")
//	concepts, err := provider.ConceptExtractor().ExtractConcepts(ctx, "IIUC is in Chittagong")
//	answer, err := provider.Generator().Generate(ctx, "Answer briefly.", "What is IIUC?")
package openai
