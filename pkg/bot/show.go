package bot

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cockfight/pkg/conference"
	"cockfight/pkg/media"
	"cockfight/pkg/pairing"
	"cockfight/pkg/prompts"
	"cockfight/pkg/session"
)

// runFighters posts one portrait per fighter in roster order.
func (h *Handler) runFighters(ctx context.Context, channelID string, sess *session.Session) {
	fighters := sess.Fighters()
	for n, f := range fighters {
		if ctx.Err() != nil {
			return
		}
		h.typing(channelID)
		photo := h.presenter.Portrait(ctx, f)
		h.sendPhoto(channelID, photo.Name, photo.Data, prompts.FighterCaption(f))

		if n < len(fighters)-1 && !h.sleep(ctx, h.opts.BetweenFighters) {
			return
		}
	}
}

// runDrawMedia follows a draw announcement with a VS collage and a match
// intro for every fight.
func (h *Handler) runDrawMedia(ctx context.Context, channelID string, p *pairing.Pairing) {
	for n, pair := range p.Pairs() {
		id := pairing.PairID(n)
		if ctx.Err() != nil {
			return
		}

		header := prompts.FightHeader(id, pair)
		if photo, err := h.presenter.Versus(id, pair); err != nil {
			log.Printf("[Bot] versus collage for %s failed: %v", id, err)
			h.sendText(channelID, header)
		} else {
			h.sendPhoto(channelID, photo.Name, photo.Data, header)
		}

		h.typing(channelID)
		h.sendText(channelID, h.presenter.MatchIntro(ctx, id, pair))

		if n < pairing.PairCount-1 && !h.sleep(ctx, h.opts.BetweenFighters) {
			return
		}
	}
}

// runConference resolves and delivers the remaining slots of one fight. It
// stops at the first failed slot; the next /conference resumes there.
func (h *Handler) runConference(ctx context.Context, channelID string, sess *session.Session, p *pairing.Pairing, id pairing.PairID) {
	for {
		if sess.Pairing() != p {
			log.Printf("[Bot] draw changed under %s in %s, stopping", id, channelID)
			return
		}
		snap, err := sess.Conference(id)
		if err != nil {
			log.Printf("[Bot] conference %s in %s gone: %v", id, channelID, err)
			return
		}
		next := snap.Next()
		if next < 0 {
			h.sendText(channelID, prompts.ConferenceEnd(snap.Pair, snap.Winner))
			return
		}

		if next%2 == 0 {
			h.sendText(channelID, prompts.RoundHeader(next/2))
			if !h.sleep(ctx, h.opts.RoundHeaderDelay) {
				return
			}
		}

		h.typing(channelID)
		slot, err := sess.Advance(ctx, id)
		var slotErr *conference.SlotError
		switch {
		case errors.As(err, &slotErr):
			if ctx.Err() != nil {
				return
			}
			h.sendText(channelID, prompts.RoundFailedText)
			return
		case errors.Is(err, conference.ErrConferenceComplete):
			continue
		case err != nil:
			log.Printf("[Bot] advance %s in %s: %v", id, channelID, err)
			return
		}

		if ctx.Err() != nil || sess.Pairing() != p {
			log.Printf("[Bot] dropping slot %d of %s in %s, show stopped", slot.Index+1, id, channelID)
			return
		}
		h.deliverSlot(channelID, id, slot)

		if slot.Index < conference.SlotCount-1 && !h.sleep(ctx, h.opts.BetweenSpeakers) {
			return
		}
	}
}

func (h *Handler) deliverSlot(channelID string, id pairing.PairID, slot conference.Slot) {
	caption := prompts.SlotCaption(slot.Speaker, slot.Artifact.Text)
	if slot.Artifact.UsedFallback || len(slot.Artifact.Image) == 0 {
		h.sendText(channelID, prompts.Truncate(caption, h.opts.CaptionLimit))
		return
	}
	data := h.presenter.SceneImage(slot.Artifact.Image)
	name := fmt.Sprintf("fight-%d-slot-%d%s", id.Number(), slot.Index+1, media.Extension(media.SniffFormat(data)))
	h.sendPhoto(channelID, name, data, caption)
}
