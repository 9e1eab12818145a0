package bot

import (
	"bytes"
	"context"
	"log"
	"sync"
	"time"

	"cockfight/pkg/media"
	"cockfight/pkg/prompts"
	"cockfight/pkg/session"

	"github.com/bwmarrin/discordgo"
)

// Options are the pacing knobs of the show.
type Options struct {
	RoundHeaderDelay time.Duration
	BetweenSpeakers  time.Duration
	BetweenFighters  time.Duration
	CaptionLimit     int
}

// Handler maps each Discord channel to one session and delivers everything
// the core produces. Long-running commands answer the interaction at once and
// post the rest to the channel from a background goroutine.
type Handler struct {
	session   Session
	store     *session.Store
	presenter Presenter
	opts      Options

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// one background show per channel
	running   map[string]*show
	runningMu sync.Mutex

	sleep func(ctx context.Context, d time.Duration) bool
}

func NewHandler(s Session, store *session.Store, presenter Presenter, opts Options) *Handler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Handler{
		session:   s,
		store:     store,
		presenter: presenter,
		opts:      opts,
		ctx:       ctx,
		cancel:    cancel,
		running:   make(map[string]*show),
		sleep:     sleepContext,
	}
}

// Close stops background shows and waits for them to return.
func (h *Handler) Close() {
	h.cancel()
	h.wg.Wait()
}

// Wait blocks until every background show has finished.
func (h *Handler) Wait() {
	h.wg.Wait()
}

// Ready sets the bot presence once the gateway connection is up.
func (h *Handler) Ready(s *discordgo.Session, r *discordgo.Ready) {
	log.Printf("Logged in as: %v#%v", r.User.Username, r.User.Discriminator)
	err := h.session.UpdateStatusComplex(discordgo.UpdateStatusData{
		Activities: []*discordgo.Activity{{
			Name: "Dana CockFight",
			Type: discordgo.ActivityTypeWatching,
		}},
		Status: "online",
	})
	if err != nil {
		log.Printf("Error updating status: %v", err)
	}
}

type show struct {
	name   string
	cancel context.CancelFunc
}

// startShow marks channelID busy with name and returns the show's context.
// It reports false when another show is already running there.
func (h *Handler) startShow(channelID, name string) (context.Context, bool) {
	h.runningMu.Lock()
	defer h.runningMu.Unlock()
	if _, busy := h.running[channelID]; busy {
		return nil, false
	}
	ctx, cancel := context.WithCancel(h.ctx)
	h.running[channelID] = &show{name: name, cancel: cancel}
	return ctx, true
}

func (h *Handler) finishShow(channelID string) {
	h.runningMu.Lock()
	defer h.runningMu.Unlock()
	if sh, ok := h.running[channelID]; ok {
		sh.cancel()
		delete(h.running, channelID)
	}
}

// stopShow cancels the show running in channelID, if any. The show still
// clears its own entry when it returns.
func (h *Handler) stopShow(channelID string) {
	h.runningMu.Lock()
	defer h.runningMu.Unlock()
	if sh, ok := h.running[channelID]; ok {
		log.Printf("[Bot] stopping %s in %s", sh.name, channelID)
		sh.cancel()
	}
}

// goShow runs fn in the background with the channel marked busy.
func (h *Handler) goShow(channelID, name string, fn func(ctx context.Context)) bool {
	ctx, ok := h.startShow(channelID, name)
	if !ok {
		return false
	}
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		defer h.finishShow(channelID)
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[Bot] %s in %s panicked: %v", name, channelID, r)
			}
		}()
		fn(ctx)
	}()
	return true
}

func (h *Handler) respond(i *discordgo.InteractionCreate, content string, ephemeral bool) {
	data := &discordgo.InteractionResponseData{Content: content}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := h.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		log.Printf("Error responding to interaction: %v", err)
	}
}

func (h *Handler) sendText(channelID, content string) bool {
	if _, err := h.session.ChannelMessageSend(channelID, content); err != nil {
		log.Printf("Error sending message to %s: %v", channelID, err)
		return false
	}
	return true
}

func (h *Handler) sendPhoto(channelID, name string, data []byte, caption string) bool {
	caption = prompts.Truncate(caption, h.opts.CaptionLimit)
	_, err := h.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: caption,
		Files: []*discordgo.File{{
			Name:        name,
			ContentType: media.MIMEType(media.DetectImageFormat(name)),
			Reader:      bytes.NewReader(data),
		}},
	})
	if err != nil {
		log.Printf("Error sending photo to %s: %v", channelID, err)
		return h.sendText(channelID, caption)
	}
	return true
}

func (h *Handler) typing(channelID string) {
	if err := h.session.ChannelTyping(channelID); err != nil {
		log.Printf("Error sending typing to %s: %v", channelID, err)
	}
}

// sleepContext reports false when ctx ended first.
func sleepContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
