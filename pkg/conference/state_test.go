package conference

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"cockfight/pkg/fighter"
	"cockfight/pkg/generation"
	"cockfight/pkg/pairing"
	"cockfight/pkg/pairing/pairingtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockGenerator for testing
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockGenerator) GenerateImage(ctx context.Context, prompt string, refs []fighter.Asset) ([]byte, error) {
	args := m.Called(ctx, prompt, refs)
	if b := args.Get(0); b != nil {
		return b.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

// fakeGenerator counts calls and fails the ones its hooks pick.
type fakeGenerator struct {
	mu       sync.Mutex
	texts    int
	images   int
	textErr  func(call int) error
	imageErr func(call int) error
	block    chan struct{}
}

func (f *fakeGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts++
	if f.textErr != nil {
		if err := f.textErr(f.texts); err != nil {
			return "", err
		}
	}
	return "line " + string(rune('0'+f.texts)), nil
}

func (f *fakeGenerator) GenerateImage(ctx context.Context, prompt string, refs []fighter.Asset) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.images++
	if f.imageErr != nil {
		if err := f.imageErr(f.images); err != nil {
			return nil, err
		}
	}
	return []byte("png"), nil
}

func examplePair(t *testing.T) pairing.Pair {
	t.Helper()
	p, err := pairing.Draw(pairingtest.Roster(), pairingtest.ExampleOrder)
	require.NoError(t, err)
	pair, ok := p.Pair(0)
	require.True(t, ok)
	return pair
}

func TestAdvance_ExampleRun(t *testing.T) {
	pair := examplePair(t)
	s := NewState(0, pair, func(int) int { return 1 })
	gen := &fakeGenerator{}
	assert.Equal(t, NotStarted, s.Phase())

	var speakers []string
	var rounds []int
	for i := 0; i < SlotCount; i++ {
		slot, err := s.Advance(context.Background(), gen)
		require.NoError(t, err)
		assert.Equal(t, i, slot.Index)
		assert.Equal(t, Generated, slot.Status)
		require.NotNil(t, slot.Artifact)
		assert.False(t, slot.Artifact.UsedFallback)
		speakers = append(speakers, slot.Speaker.Code)
		rounds = append(rounds, slot.Round)
		if i < SlotCount-1 {
			assert.Equal(t, InProgress, s.Phase())
		}
	}

	assert.Equal(t, []string{"petro", "bohdan", "petro", "bohdan", "petro", "bohdan"}, speakers)
	assert.Equal(t, []int{0, 0, 1, 1, 2, 2}, rounds)
	assert.Equal(t, Complete, s.Phase())

	for i := 0; i < 3; i++ {
		_, err := s.Advance(context.Background(), gen)
		assert.ErrorIs(t, err, ErrConferenceComplete)
	}
	assert.Equal(t, SlotCount, gen.texts, "complete conference must not regenerate")

	snap := s.Snapshot()
	assert.Equal(t, Complete, snap.Phase)
	assert.Equal(t, -1, snap.Next())
	require.NotNil(t, snap.Winner)
	assert.Equal(t, "bohdan", snap.Winner.Code)
}

func TestAdvance_ImageFailureFallsBackToText(t *testing.T) {
	gen := &fakeGenerator{imageErr: func(call int) error {
		if call == 2 {
			return &generation.GenerationError{Kind: generation.Refused, Op: "image", Err: errors.New("IMAGE_SAFETY")}
		}
		return nil
	}}
	s := NewState(0, examplePair(t), nil)

	first, err := s.Advance(context.Background(), gen)
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), first.Artifact.Image)

	second, err := s.Advance(context.Background(), gen)
	require.NoError(t, err)
	assert.Equal(t, Generated, second.Status)
	assert.True(t, second.Artifact.UsedFallback)
	assert.Nil(t, second.Artifact.Image)
	assert.NotEmpty(t, second.Artifact.Text)

	third, err := s.Advance(context.Background(), gen)
	require.NoError(t, err)
	assert.Equal(t, 2, third.Index)
	assert.False(t, third.Artifact.UsedFallback)
}

func TestAdvance_TextFailureRetriesSameSlot(t *testing.T) {
	textErr := &generation.GenerationError{Kind: generation.Transient, Op: "text", Attempts: 2, Err: errors.New("503")}
	gen := &fakeGenerator{textErr: func(call int) error {
		if call == 3 {
			return textErr
		}
		return nil
	}}
	s := NewState(1, examplePair(t), nil)

	for i := 0; i < 2; i++ {
		_, err := s.Advance(context.Background(), gen)
		require.NoError(t, err)
	}

	failed, err := s.Advance(context.Background(), gen)
	require.Error(t, err)
	var slotErr *SlotError
	require.True(t, errors.As(err, &slotErr))
	assert.Equal(t, 2, slotErr.Index)
	assert.Equal(t, 1, slotErr.Round)
	assert.Equal(t, generation.Transient, generation.KindOf(err))
	assert.Equal(t, Failed, failed.Status)
	assert.Nil(t, failed.Artifact)
	assert.Equal(t, 2, gen.images, "no image is attempted for a failed slot")

	snap := s.Snapshot()
	assert.Equal(t, InProgress, snap.Phase)
	assert.Equal(t, 2, snap.Next())
	assert.Equal(t, Failed, snap.Slots[2].Status)
	assert.Equal(t, Pending, snap.Slots[3].Status)

	retried, err := s.Advance(context.Background(), gen)
	require.NoError(t, err)
	assert.Equal(t, 2, retried.Index)
	assert.Equal(t, Generated, retried.Status)
	assert.Equal(t, 2, retried.Attempts)
	assert.Nil(t, retried.LastError)

	next, err := s.Advance(context.Background(), gen)
	require.NoError(t, err)
	assert.Equal(t, 3, next.Index)
}

func TestAdvance_PromptsAndReferences(t *testing.T) {
	pair := examplePair(t)
	gen := new(MockGenerator)
	gen.On("GenerateText", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, pair.A.Description) && strings.Contains(p, "Це раунд 1 з 3")
	})).Return("Кукуріку, слабаче!", nil).Once()
	gen.On("GenerateImage", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "Кукуріку, слабаче!")
	}), []fighter.Asset{pair.A.RoosterImage, pair.A.OwnerImage, pair.B.RoosterImage, pair.B.OwnerImage}).
		Return([]byte("scene"), nil).Once()

	s := NewState(0, pair, nil)
	slot, err := s.Advance(context.Background(), gen)
	require.NoError(t, err)
	assert.Equal(t, "Кукуріку, слабаче!", slot.Artifact.Text)
	assert.Equal(t, []byte("scene"), slot.Artifact.Image)
	gen.AssertExpectations(t)
}

func TestAdvance_SerializedPerPair(t *testing.T) {
	gen := &fakeGenerator{}
	s := NewState(0, examplePair(t), nil)

	var wg sync.WaitGroup
	results := make(chan Slot, SlotCount+2)
	errs := make(chan error, SlotCount+2)
	for i := 0; i < SlotCount+2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			slot, err := s.Advance(context.Background(), gen)
			if err != nil {
				errs <- err
				return
			}
			results <- slot
		}()
	}
	wg.Wait()
	close(results)
	close(errs)

	seen := map[int]bool{}
	for slot := range results {
		assert.False(t, seen[slot.Index], "slot %d generated twice", slot.Index)
		seen[slot.Index] = true
	}
	assert.Len(t, seen, SlotCount)
	for err := range errs {
		assert.ErrorIs(t, err, ErrConferenceComplete)
	}
	assert.Equal(t, SlotCount, gen.texts)
}

func TestSnapshot_DoesNotWaitForAdvance(t *testing.T) {
	gen := &fakeGenerator{block: make(chan struct{})}
	s := NewState(0, examplePair(t), nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.Advance(context.Background(), gen)
	}()

	require.Eventually(t, func() bool {
		return s.Snapshot().Slots[0].Attempts == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, Pending, s.Snapshot().Slots[0].Status)

	close(gen.block)
	<-done
	assert.Equal(t, Generated, s.Snapshot().Slots[0].Status)
}
