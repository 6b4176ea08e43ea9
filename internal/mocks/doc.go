// Package mocks holds test doubles shared across packages.
//
// MockClientStore, MockArtifactStore, MockLLMClient and MockJWTService use
// function fields: set the Fn for the behaviour a test needs and leave the
// rest at their zero-value defaults. TestifyMockRunStore is built on
// testify/mock for tests that assert call expectations.
//
//	client := &mocks.MockLLMClient{
//		CompleteFn: func(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
//			return "def test_root(): pass", nil
//		},
//	}
package mocks
