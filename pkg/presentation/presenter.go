// Package presentation builds the media around the conferences: fighter
// portraits for /fighters and the VS collage plus organiser intro for /draw.
package presentation

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"cockfight/pkg/cache"
	"cockfight/pkg/fighter"
	"cockfight/pkg/generation"
	"cockfight/pkg/media"
	"cockfight/pkg/pairing"
	"cockfight/pkg/prompts"

	"github.com/cespare/xxhash/v2"
)

// Cache is satisfied by *cache.Cache and *cache.Memory.
type Cache interface {
	Key(parts ...string) string
	GetBytes(ctx context.Context, key string) ([]byte, error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Generator is the subset of generation.Gateway presentation needs.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateImage(ctx context.Context, prompt string, refs []fighter.Asset) ([]byte, error)
}

var (
	_ Cache     = (*cache.Cache)(nil)
	_ Cache     = (*cache.Memory)(nil)
	_ Generator = (*generation.Gateway)(nil)
)

type Presenter struct {
	gen         Generator
	cache       Cache
	processor   *media.ImageProcessor
	collage     media.CollageOptions
	portraitTTL time.Duration
}

// New wires a presenter. cache and processor may be nil.
func New(gen Generator, c Cache, processor *media.ImageProcessor, collage media.CollageOptions) *Presenter {
	return &Presenter{
		gen:         gen,
		cache:       c,
		processor:   processor,
		collage:     collage,
		portraitTTL: cache.PortraitTTL,
	}
}

// WithPortraitTTL overrides how long generated portraits stay cached.
func (p *Presenter) WithPortraitTTL(ttl time.Duration) *Presenter {
	if ttl > 0 {
		p.portraitTTL = ttl
	}
	return p
}

// Photo is an image ready for upload.
type Photo struct {
	Name      string
	Data      []byte
	Generated bool
}

// Portrait returns the generated presentation portrait of f, served from the
// cache when possible. When generation fails the rooster photo is returned.
func (p *Presenter) Portrait(ctx context.Context, f *fighter.Fighter) Photo {
	prompt := prompts.Portrait(f)
	key := ""
	if p.cache != nil {
		key = p.cache.Key("portrait", f.Code, portraitHash(f, prompt))
		if data, err := p.cache.GetBytes(ctx, key); err == nil && len(data) > 0 {
			log.Printf("[Presentation] portrait cache hit for %s", f.Code)
			return Photo{Name: portraitName(f, data), Data: data, Generated: true}
		} else if err != nil && !errors.Is(err, cache.ErrMiss) {
			log.Printf("[Presentation] portrait cache read failed for %s: %v", f.Code, err)
		}
	}

	data, err := p.gen.GenerateImage(ctx, prompt, f.References())
	if err != nil {
		log.Printf("[Presentation] portrait for %s failed (%s), using rooster photo: %v", f.Code, generation.KindOf(err), err)
		return Photo{Name: f.RoosterImage.Name, Data: f.RoosterImage.Data}
	}
	data = p.shrink(data)

	if p.cache != nil {
		if err := p.cache.SetBytes(ctx, key, data, p.portraitTTL); err != nil {
			log.Printf("[Presentation] portrait cache write failed for %s: %v", f.Code, err)
		}
	}
	return Photo{Name: portraitName(f, data), Data: data, Generated: true}
}

func portraitName(f *fighter.Fighter, data []byte) string {
	return f.Code + "-portrait" + media.Extension(media.SniffFormat(data))
}

// SceneImage prepares a conference scene for upload.
func (p *Presenter) SceneImage(data []byte) []byte {
	return p.shrink(data)
}

// Versus is the side-by-side collage of the two roosters of a fight.
func (p *Presenter) Versus(id pairing.PairID, pair pairing.Pair) (Photo, error) {
	data, err := media.VersusCollage(pair.A.RoosterImage.Data, pair.B.RoosterImage.Data, p.collage)
	if err != nil {
		return Photo{}, err
	}
	return Photo{Name: "fight-" + strconv.Itoa(id.Number()) + ".jpg", Data: data}, nil
}

// MatchIntro is the organiser's comment on a fight, or a fixed line when
// generation fails.
func (p *Presenter) MatchIntro(ctx context.Context, id pairing.PairID, pair pairing.Pair) string {
	text, err := p.gen.GenerateText(ctx, prompts.MatchIntro(id, pair))
	if err != nil {
		log.Printf("[Presentation] intro for %s failed (%s): %v", id, generation.KindOf(err), err)
		return prompts.MatchIntroFallback(id, pair)
	}
	return text
}

func (p *Presenter) shrink(data []byte) []byte {
	if p.processor == nil {
		return data
	}
	out, _, err := p.processor.Compress(data)
	if err != nil {
		log.Printf("[Presentation] compress failed, sending original: %v", err)
		return data
	}
	return out
}

// portraitHash changes whenever the reference photos or the prompt change.
func portraitHash(f *fighter.Fighter, prompt string) string {
	h := xxhash.New()
	h.Write(f.RoosterImage.Data)
	h.Write(f.OwnerImage.Data)
	h.WriteString(prompt)
	return strconv.FormatUint(h.Sum64(), 16)
}
