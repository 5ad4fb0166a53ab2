package llm

import (
	"context"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// DefaultRetryBackOff returns a backoff.BackOff tuned for interactive
// LLM-assisted parsing: short initial delay, capped elapsed time so a
// stuck endpoint doesn't block a request indefinitely.
func DefaultRetryBackOff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = backoff.DefaultInitialInterval
	eb.MaxInterval = backoff.DefaultMaxInterval
	eb.MaxElapsedTime = backoff.DefaultMaxElapsedTime
	return backoff.WithContext(eb, ctx)
}

// GenerateWithRetry calls client.GenerateResponse, retrying with
// exponential backoff while ClassifyError reports the failure as
// retryable. A non-retryable error (auth, bad model, malformed request)
// returns immediately without consuming the backoff budget. Used by every
// LLM-assisted component so each gets the same retry behavior around its
// one LLM call per attempt.
func GenerateWithRetry(
	ctx context.Context,
	client LLMClient,
	prompt, systemMessage string,
	temperature float64,
	thinking bool,
	bo backoff.BackOff,
	logger *zap.Logger,
) (*GenerateResponseResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if bo == nil {
		bo = DefaultRetryBackOff(ctx)
	}

	var result *GenerateResponseResult
	operation := func() error {
		r, err := client.GenerateResponse(ctx, prompt, systemMessage, temperature, thinking)
		if err != nil {
			classified := ClassifyError(err)
			if !classified.Retryable {
				return backoff.Permanent(classified)
			}
			return classified
		}
		result = r
		return nil
	}

	err := backoff.Retry(operation, bo)
	if err != nil {
		logger.Warn("LLM call exhausted retries", zap.Error(err))
		return nil, err
	}
	return result, nil
}
