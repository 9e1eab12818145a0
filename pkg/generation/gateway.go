// Package generation wraps the text and image models behind one
// generate-or-fail contract with bounded retries.
package generation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"cockfight/pkg/fighter"
)

// TextCapability produces trash-talk and announcer lines.
type TextCapability interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// ImageCapability produces a scene or portrait from a prompt and the
// reference photos of the fighters involved.
type ImageCapability interface {
	GenerateImage(ctx context.Context, prompt string, refs []fighter.Asset) ([]byte, error)
}

// Policy bounds one kind of generation call.
type Policy struct {
	Attempts int
	Delay    time.Duration
	Backoff  float64
	Timeout  time.Duration
}

func DefaultTextPolicy() Policy {
	return Policy{Attempts: 2, Delay: 2 * time.Second, Backoff: 2, Timeout: 60 * time.Second}
}

func DefaultImagePolicy() Policy {
	return Policy{Attempts: 2, Delay: 3 * time.Second, Backoff: 2, Timeout: 120 * time.Second}
}

func (p Policy) normalized() Policy {
	if p.Attempts < 1 {
		p.Attempts = 1
	}
	if p.Backoff < 1 {
		p.Backoff = 1
	}
	return p
}

// delay before attempt n+1, n starting at 1.
func (p Policy) delay(n int) time.Duration {
	return time.Duration(float64(p.Delay) * math.Pow(p.Backoff, float64(n-1)))
}

var ErrEmptyResult = errors.New("empty result")

// Gateway is safe for concurrent use; it holds no per-call state.
type Gateway struct {
	text        TextCapability
	image       ImageCapability
	textPolicy  Policy
	imagePolicy Policy
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewGateway wires the two capabilities. image may be nil, in which case
// every image request fails with Unknown and callers fall back to text.
func NewGateway(text TextCapability, image ImageCapability, textPolicy, imagePolicy Policy) *Gateway {
	return &Gateway{
		text:        text,
		image:       image,
		textPolicy:  textPolicy.normalized(),
		imagePolicy: imagePolicy.normalized(),
		sleep:       sleepContext,
	}
}

func (g *Gateway) GenerateText(ctx context.Context, prompt string) (string, error) {
	if g.text == nil {
		return "", &GenerationError{Kind: Unknown, Op: "text", Err: errors.New("text capability not configured")}
	}
	var text string
	err := g.run(ctx, "text", g.textPolicy, func(callCtx context.Context) error {
		out, err := g.text.GenerateText(callCtx, prompt)
		if err != nil {
			return err
		}
		out = strings.TrimSpace(out)
		if out == "" {
			return ErrEmptyResult
		}
		text = out
		return nil
	})
	return text, err
}

func (g *Gateway) GenerateImage(ctx context.Context, prompt string, refs []fighter.Asset) ([]byte, error) {
	if g.image == nil {
		return nil, &GenerationError{Kind: Unknown, Op: "image", Err: errors.New("image capability not configured")}
	}
	var image []byte
	err := g.run(ctx, "image", g.imagePolicy, func(callCtx context.Context) error {
		out, err := g.image.GenerateImage(callCtx, prompt, refs)
		if err != nil {
			return err
		}
		if len(out) == 0 {
			return ErrEmptyResult
		}
		image = out
		return nil
	})
	return image, err
}

func (g *Gateway) run(ctx context.Context, op string, policy Policy, call func(context.Context) error) error {
	var lastErr error
	var kind Kind
	attempt := 0

	for attempt < policy.Attempts {
		attempt++
		start := time.Now()

		callCtx, cancel := ctx, context.CancelFunc(func() {})
		if policy.Timeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, policy.Timeout)
		}
		err := call(callCtx)
		cancel()

		if err == nil {
			log.Printf("[Gateway] %s succeeded on attempt %d/%d (took %v)", op, attempt, policy.Attempts, time.Since(start))
			return nil
		}

		lastErr = err
		kind = KindOf(err)
		log.Printf("[Gateway] %s attempt %d/%d failed (%s): %v", op, attempt, policy.Attempts, kind, err)

		if kind != Transient || attempt >= policy.Attempts {
			break
		}
		if ctx.Err() != nil {
			break
		}
		if err := g.sleep(ctx, policy.delay(attempt)); err != nil {
			lastErr = err
			break
		}
	}

	return &GenerationError{Kind: kind, Op: op, Attempts: attempt, Err: unwrapGeneration(lastErr)}
}

// unwrapGeneration strips an inner GenerationError so the outer one does not
// print its kind twice.
func unwrapGeneration(err error) error {
	var genErr *GenerationError
	if errors.As(err, &genErr) && genErr.Op == "" && genErr.Err != nil {
		return genErr.Err
	}
	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("retry wait: %w", ctx.Err())
	case <-t.C:
		return nil
	}
}
