package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"cockfight/pkg/conference"
	"cockfight/pkg/prompts"
	"cockfight/pkg/session"

	"github.com/bwmarrin/discordgo"
)

// SlashCommands defines all available slash commands
var SlashCommands = []*discordgo.ApplicationCommand{
	{Name: "start", Description: "Привітання та опис чемпіонату"},
	{Name: "help", Description: "Список команд"},
	{Name: "fighters", Description: "Показати всіх 6 бійців"},
	{Name: "draw", Description: "Провести жеребкування на 3 пари"},
	{Name: "conference", Description: "Прес-конференція наступної пари"},
	{Name: "status", Description: "Стан жеребкування та прес-конференцій"},
	{Name: "reset", Description: "Скинути жеребкування та прес-конференції"},
}

// SlashCommandHandlers maps command names to their handler functions
var SlashCommandHandlers = map[string]func(h *Handler, i *discordgo.InteractionCreate){
	"start":      handleStartCommand,
	"help":       handleHelpCommand,
	"fighters":   handleFightersCommand,
	"draw":       handleDrawCommand,
	"conference": handleConferenceCommand,
	"status":     handleStatusCommand,
	"reset":      handleResetCommand,
}

func handleStartCommand(h *Handler, i *discordgo.InteractionCreate) {
	h.store.GetOrCreate(i.ChannelID)
	h.respond(i, prompts.IntroText, false)
}

func handleHelpCommand(h *Handler, i *discordgo.InteractionCreate) {
	h.respond(i, prompts.HelpText, false)
}

func handleFightersCommand(h *Handler, i *discordgo.InteractionCreate) {
	sess := h.store.GetOrCreate(i.ChannelID)
	started := h.goShow(i.ChannelID, "fighters", func(ctx context.Context) {
		h.runFighters(ctx, i.ChannelID, sess)
	})
	if !started {
		h.respond(i, prompts.ConferenceBusyText, true)
		return
	}
	h.respond(i, prompts.FightersIntroText, false)
}

func handleDrawCommand(h *Handler, i *discordgo.InteractionCreate) {
	sess := h.store.GetOrCreate(i.ChannelID)
	ctx, ok := h.startShow(i.ChannelID, "draw")
	if !ok {
		h.respond(i, prompts.ConferenceBusyText, true)
		return
	}

	p, err := sess.Draw()
	if err != nil {
		h.finishShow(i.ChannelID)
		log.Printf("[Bot] draw failed in %s: %v", i.ChannelID, err)
		h.respond(i, prompts.ErrorText, true)
		return
	}
	h.respond(i, prompts.DrawAnnouncement(p), false)

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		defer h.finishShow(i.ChannelID)
		h.runDrawMedia(ctx, i.ChannelID, p)
	}()
}

func handleConferenceCommand(h *Handler, i *discordgo.InteractionCreate) {
	sess := h.store.GetOrCreate(i.ChannelID)

	id, err := sess.NextPair()
	switch {
	case errors.Is(err, session.ErrPairingNotDrawn):
		h.respond(i, prompts.NoDrawYetText, false)
		return
	case errors.Is(err, session.ErrAllComplete):
		h.respond(i, prompts.AllConferencesDoneText, false)
		return
	case err != nil:
		log.Printf("[Bot] next pair failed in %s: %v", i.ChannelID, err)
		h.respond(i, prompts.ErrorText, true)
		return
	}

	snap, err := sess.Conference(id)
	if err != nil {
		h.respond(i, prompts.NoDrawYetText, false)
		return
	}
	p := sess.Pairing()

	started := h.goShow(i.ChannelID, "conference", func(ctx context.Context) {
		h.runConference(ctx, i.ChannelID, sess, p, id)
	})
	if !started {
		h.respond(i, prompts.ConferenceBusyText, true)
		return
	}

	if snap.Phase == conference.NotStarted {
		h.respond(i, prompts.ConferenceStart(id, snap.Pair), false)
	} else {
		h.respond(i, prompts.ConferenceResume(id, snap.Pair), false)
	}
}

func handleStatusCommand(h *Handler, i *discordgo.InteractionCreate) {
	sess := h.store.GetOrCreate(i.ChannelID)
	snaps, err := sess.Conferences()
	if errors.Is(err, session.ErrPairingNotDrawn) {
		h.respond(i, prompts.NoDrawYetText, true)
		return
	}
	if err != nil {
		h.respond(i, prompts.ErrorText, true)
		return
	}
	h.respond(i, statusText(snaps), true)
}

// handleResetCommand answers before resetting: the reset waits for any
// in-flight advance, which the stopped show abandons as soon as it can.
func handleResetCommand(h *Handler, i *discordgo.InteractionCreate) {
	h.stopShow(i.ChannelID)
	h.respond(i, prompts.ResetText, false)
	if !h.store.Reset(i.ChannelID) {
		h.store.GetOrCreate(i.ChannelID)
	}
}

var phaseLabels = map[conference.Phase]string{
	conference.NotStarted: "ще не почалась",
	conference.InProgress: "триває",
	conference.Complete:   "завершена",
}

func statusText(snaps []conference.Snapshot) string {
	var sb strings.Builder
	sb.WriteString("Стан прес-конференцій:\n")
	for _, snap := range snaps {
		done := 0
		failed := false
		for _, slot := range snap.Slots {
			if slot.Status == conference.Generated {
				done++
			}
			if slot.Status == conference.Failed {
				failed = true
			}
		}
		fmt.Fprintf(&sb, "\n%s\nПрес-конференція %s (%d/%d)", prompts.FightHeader(snap.ID, snap.Pair), phaseLabels[snap.Phase], done, conference.SlotCount)
		if failed {
			sb.WriteString(", є раунд для повтору")
		}
		if snap.Winner != nil {
			fmt.Fprintf(&sb, "\nФаворит Dana: %s", snap.Winner.DisplayName)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// HandleInteraction dispatches one slash command.
func (h *Handler) HandleInteraction(i *discordgo.InteractionCreate) {
	// Only handle application commands (slash commands)
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	commandName := i.ApplicationCommandData().Name

	// Find and execute the appropriate handler
	if handler, ok := SlashCommandHandlers[commandName]; ok {
		handler(h, i)
	} else {
		log.Printf("Unknown slash command: %s", commandName)
	}
}

// InteractionCreate handles all slash command interactions
func (h *Handler) InteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	h.HandleInteraction(i)
}

// RegisterSlashCommands registers all slash commands with Discord
func RegisterSlashCommands(s *discordgo.Session, guildID string) ([]*discordgo.ApplicationCommand, error) {
	log.Println("Registering slash commands...")

	registeredCommands := make([]*discordgo.ApplicationCommand, len(SlashCommands))

	for i, cmd := range SlashCommands {
		// Register globally (guildID = "") or for a specific guild
		registeredCmd, err := s.ApplicationCommandCreate(s.State.User.ID, guildID, cmd)
		if err != nil {
			log.Printf("Cannot create '%s' command: %v", cmd.Name, err)
			return nil, err
		}
		registeredCommands[i] = registeredCmd
		log.Printf("Registered command: %s", cmd.Name)
	}

	return registeredCommands, nil
}

// UnregisterSlashCommands removes all registered slash commands
func UnregisterSlashCommands(s *discordgo.Session, guildID string, commands []*discordgo.ApplicationCommand) error {
	log.Println("Unregistering slash commands...")

	for _, cmd := range commands {
		err := s.ApplicationCommandDelete(s.State.User.ID, guildID, cmd.ID)
		if err != nil {
			log.Printf("Cannot delete '%s' command: %v", cmd.Name, err)
			return err
		}
		log.Printf("Unregistered command: %s", cmd.Name)
	}

	return nil
}
