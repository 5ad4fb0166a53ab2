package alias

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3FramesLab/recon-kg-engine/pkg/llm"
	"github.com/3FramesLab/recon-kg-engine/pkg/models"
)

func TestLearn_HeuristicFallback(t *testing.T) {
	l := New(nil, 0.1, nil)

	aliases, err := l.Learn(context.Background(), &models.Table{Name: "brz_lnd_RBP_GPU"}, "bronze")
	require.NoError(t, err)
	assert.NotEmpty(t, aliases)

	found := false
	for _, a := range aliases {
		if a == "RBP GPU" {
			found = true
		}
	}
	assert.True(t, found, "expected RBP GPU among %v", aliases)
}

func TestLearn_CanonicalNameNeverDuplicated(t *testing.T) {
	l := New(nil, 0.1, nil)

	aliases, err := l.Learn(context.Background(), &models.Table{Name: "orders"}, "catalog")
	require.NoError(t, err)
	for _, a := range aliases {
		assert.NotEqual(t, "orders", a)
	}
}

func TestLearn_LLMPath(t *testing.T) {
	mock := llm.NewMockLLMClient()
	mock.GenerateResponseFunc = func(ctx context.Context, prompt, systemMessage string, temperature float64, thinking bool) (*llm.GenerateResponseResult, error) {
		return &llm.GenerateResponseResult{Content: `{"aliases": ["Orders", "Customer Orders"]}`}, nil
	}

	l := New(mock, 0.1, nil)
	aliases, err := l.Learn(context.Background(), &models.Table{Name: "orders"}, "catalog")
	require.NoError(t, err)
	require.Len(t, aliases, 1)
	assert.Equal(t, "Customer Orders", aliases[0])
}

func TestLearn_LLMErrorPropagates(t *testing.T) {
	mock := llm.NewMockLLMClient()
	mock.GenerateResponseFunc = func(ctx context.Context, prompt, systemMessage string, temperature float64, thinking bool) (*llm.GenerateResponseResult, error) {
		return nil, assert.AnError
	}

	l := New(mock, 0.1, nil)
	_, err := l.Learn(context.Background(), &models.Table{Name: "orders"}, "catalog")
	assert.Error(t, err)
}
